package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout(cat *Catalog) LayoutInfo {
	return LayoutInfo{
		LayoutVersion:   1,
		ArrayBaseOffset: 24,
		StrideBytes:     8,
		FieldOf: func(v Variable) StorageField {
			if v.Kind == Scalar {
				return StorageField{Storage: "all_variables", ByteOffset: 24 + int64(v.LogicalIndex)*8, ByteLength: 8}
			}
			if v.Kind == Opaque {
				return StorageField{Storage: "message_only"}
			}
			order := []string{"x", "y"}
			switch v.Kind {
			case Vec3:
				order = []string{"x", "y", "z"}
			case Vec4:
				order = []string{"x", "y", "z", "w"}
			case String:
				order = nil
			}
			return StorageField{Storage: "struct_field", StructFieldName: "side_" + v.Name, ByteOffset: 1000, ByteLength: 32, ComponentOrder: order}
		},
	}
}

// TestDescriptorMatchesSchema verifies spec.md §8 property 2: the offsets
// descriptor this package writes conforms to the documented contract
// shape, checked against a committed JSON Schema rather than only by
// field-by-field assertions.
func TestDescriptorMatchesSchema(t *testing.T) {
	cat := Build()
	doc := BuildDescriptor(cat, testLayout(cat))
	require.NoError(t, ValidateDescriptor(doc))
}

func TestDescriptorRejectsMalformedDocument(t *testing.T) {
	bad := []byte(`{"schema":"wrong-schema","schema_version":1}`)
	err := ValidateDescriptor(bad)
	assert.Error(t, err)
}

func TestDescriptorContainsEveryVariantEntry(t *testing.T) {
	cat := Build()
	doc := BuildDescriptor(cat, testLayout(cat))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(doc, &parsed))
	vars := parsed["variables"].([]any)
	assert.Len(t, vars, len(cat.All()))
	assert.Equal(t, float64(cat.NumVariables()), parsed["count"])
}

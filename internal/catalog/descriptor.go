package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*
var schemaFiles embed.FS

func loadSchemaFile(s string) (io.ReadCloser, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	return schemaFiles.Open(u.Host + u.Path)
}

func init() {
	// The loader table is keyed by the parsed URL scheme, which url.Parse
	// lowercases.
	jsonschema.Loaders["embedfs"] = loadSchemaFile
}

// StorageField describes where one variable's value physically lives in
// the shared record, for the sole purpose of the offsets descriptor
// (spec.md §4.1/§6). The catalog package does not know the layout itself
// -- internal/sharedrecord computes this per variable and hands it in,
// keeping the "what a variable is" (catalog) and "where it lives in
// memory" (shared record) concerns separate.
type StorageField struct {
	Storage         string // "all_variables" | "struct_field" | "message_only"
	StructFieldName string
	ByteOffset      int64
	ByteLength      int64
	ComponentOrder  []string
}

// LayoutInfo is the memory-layout context supplied by internal/sharedrecord
// when writing the descriptor file.
type LayoutInfo struct {
	LayoutVersion   uint32
	ArrayBaseOffset int64
	StrideBytes     int64
	FieldOf         func(v Variable) StorageField
}

// descriptorDoc mirrors the JSON shape documented in spec.md §6.
type descriptorDoc struct {
	Schema          string               `json:"schema"`
	SchemaVersion   int                  `json:"schema_version"`
	LayoutVersion   uint32               `json:"layout_version"`
	ArrayBaseOffset int64                `json:"array_base_offset"`
	StrideBytes     int64                `json:"stride_bytes"`
	Count           int                  `json:"count"`
	Variables       []descriptorVariable `json:"variables"`
}

type descriptorVariable struct {
	Name            string   `json:"name"`
	Group           string   `json:"group"`
	LogicalIndex    int      `json:"logical_index"`
	DataType        string   `json:"data_type"`
	Storage         string   `json:"storage"`
	StructFieldName string   `json:"struct_field_name,omitempty"`
	ByteOffset      int64    `json:"byte_offset"`
	ByteLength      int64    `json:"byte_length"`
	ComponentOrder  []string `json:"component_order,omitempty"`
	Unit            string   `json:"unit"`
	MessageID       uint64   `json:"message_id"`
	Access          string   `json:"access"`
	Flag            string   `json:"flag"`
	IsEvent         bool     `json:"is_event"`
	IsToggle        bool     `json:"is_toggle"`
	IsActiveFlag    bool     `json:"is_active_flag"`
	IsValue         bool     `json:"is_value"`
}

const descriptorSchema = "aerofly-bridge-offsets"
const descriptorSchemaVersion = 1

// BuildDescriptor assembles the descriptor document for every catalog
// entry (including wire-identity variants, each of which gets its own
// "variables" row since each carries a distinct message_id).
func BuildDescriptor(c *Catalog, layout LayoutInfo) []byte {
	doc := descriptorDoc{
		Schema:          descriptorSchema,
		SchemaVersion:   descriptorSchemaVersion,
		LayoutVersion:   layout.LayoutVersion,
		ArrayBaseOffset: layout.ArrayBaseOffset,
		StrideBytes:     layout.StrideBytes,
		Count:           c.NumVariables(),
		Variables:       make([]descriptorVariable, 0, len(c.all)),
	}

	for _, v := range c.all {
		sf := layout.FieldOf(v)
		doc.Variables = append(doc.Variables, descriptorVariable{
			Name:            v.Name,
			Group:           v.Group(),
			LogicalIndex:    v.LogicalIndex,
			DataType:        v.Kind.String(),
			Storage:         sf.Storage,
			StructFieldName: sf.StructFieldName,
			ByteOffset:      sf.ByteOffset,
			ByteLength:      sf.ByteLength,
			ComponentOrder:  sf.ComponentOrder,
			Unit:            v.Unit,
			MessageID:       v.MessageID,
			Access:          v.Access.String(),
			Flag:            v.Flag.String(),
			IsEvent:         v.Flag == FlagEvent,
			IsToggle:        v.Flag == FlagToggle,
			IsActiveFlag:    v.Flag == FlagActive,
			IsValue:         v.Flag == FlagValue,
		})
	}

	// MarshalIndent errs only on unsupported types (none here); the
	// descriptor is a fixed, well-typed shape.
	b, _ := json.MarshalIndent(doc, "", "  ")
	return b
}

// ValidateDescriptor checks b (a rendered offsets descriptor document)
// against the committed JSON Schema in schemas/offsets.schema.json, so a
// layout regression that breaks the documented descriptor ↔ record
// contract (spec.md §4.1, §9 "Offsets descriptor") fails a test instead of
// only being caught by an out-of-process reader. Grounded on the
// teacher's pkg/schema.Validate (embedFS loader + jsonschema.Compile).
func ValidateDescriptor(b []byte) error {
	s, err := jsonschema.Compile("embedFS://schemas/offsets.schema.json")
	if err != nil {
		return fmt.Errorf("catalog: compiling offsets schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("catalog: decoding descriptor: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("catalog: descriptor failed schema validation: %w", err)
	}
	return nil
}

// WriteDescriptorFile writes the descriptor atomically: it renders to a
// temporary file in the same directory and renames over the destination,
// so a reader never observes a partially-written descriptor. Treat this
// file as a versioned public artifact (spec.md §9): a layout change must
// bump LayoutVersion.
func WriteDescriptorFile(path string, c *Catalog, layout LayoutInfo) error {
	b := BuildDescriptor(c, layout)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

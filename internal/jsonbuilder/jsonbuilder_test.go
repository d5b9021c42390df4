package jsonbuilder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeroflybridge/bridge/internal/catalog"
	"github.com/aeroflybridge/bridge/internal/dispatch"
	"github.com/aeroflybridge/bridge/internal/sharedrecord"
	"github.com/aeroflybridge/bridge/sdk"
)

func newTestRecord(t *testing.T, cat *catalog.Catalog) *sharedrecord.Record {
	t.Helper()
	layout := sharedrecord.BuildLayout(cat)
	rec, err := sharedrecord.OpenOrCreate("aeroflybridge-jsonbuilder-test", layout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestBuildAltitudeRoundTrip(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	d := dispatch.New(cat, rec)

	v, ok := cat.EntryByName("Aircraft.Altitude")
	require.True(t, ok)

	rec.BeginTick()
	d.Apply([]sdk.Message{{ID: v.MessageID, Type: sdk.TypeFloat64, F64: 1524.0}})
	rec.EndTick()

	b := New(cat, rec, 50.0)
	doc := b.Build()

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(doc, &parsed))

	assert.Equal(t, "aerofly-bridge-telemetry", parsed["schema"])
	assert.Equal(t, float64(1), parsed["schema_version"])
	assert.Equal(t, float64(1), parsed["data_valid"])
	assert.Equal(t, float64(1), parsed["update_counter"])

	vars, ok := parsed["variables"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1524), vars["Aircraft.Altitude"])
	assert.Contains(t, string(doc), `"Aircraft.Altitude":1524.000000`)
}

func TestBuildEndsWithNewline(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	b := New(cat, rec, 50.0)

	doc := b.Build()
	require.NotEmpty(t, doc)
	assert.Equal(t, byte('\n'), doc[len(doc)-1])
}

func TestBuildExpandsVectorComponents(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)

	var vec catalog.Variable
	found := false
	for _, v := range cat.All() {
		if v.Kind == catalog.Vec3 {
			vec = v
			found = true
			break
		}
	}
	require.True(t, found)
	rec.StoreVec3(vec.LogicalIndex, 1, 2, 3)

	b := New(cat, rec, 50.0)
	doc := b.Build()

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(doc, &parsed))
	vars := parsed["variables"].(map[string]any)
	assert.Equal(t, float64(1), vars[vec.Name+".X"])
	assert.Equal(t, float64(2), vars[vec.Name+".Y"])
	assert.Equal(t, float64(3), vars[vec.Name+".Z"])
	_, scalarPresent := vars[vec.Name]
	assert.False(t, scalarPresent, "vector variables must not appear as a bare scalar key")
}

func TestBuildExpandsVec4Components(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)

	var vec catalog.Variable
	found := false
	for _, v := range cat.All() {
		if v.Kind == catalog.Vec4 {
			vec = v
			found = true
			break
		}
	}
	require.True(t, found)
	rec.StoreVec4(vec.LogicalIndex, 1, 2, 3, 4)

	b := New(cat, rec, 50.0)
	doc := b.Build()

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(doc, &parsed))
	vars := parsed["variables"].(map[string]any)
	assert.Equal(t, float64(1), vars[vec.Name+".X"])
	assert.Equal(t, float64(2), vars[vec.Name+".Y"])
	assert.Equal(t, float64(3), vars[vec.Name+".Z"])
	assert.Equal(t, float64(4), vars[vec.Name+".W"])
}

func TestBuildReusesBufferWithoutCorruption(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	b := New(cat, rec, 50.0)

	first := append([]byte(nil), b.Build()...)
	rec.StoreScalar(0, 7)
	second := b.Build()

	assert.NotEqual(t, string(first), string(second))
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(second, &parsed))
}

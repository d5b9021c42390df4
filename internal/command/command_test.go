package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeroflybridge/bridge/internal/catalog"
	"github.com/aeroflybridge/bridge/internal/sharedrecord"
	"github.com/aeroflybridge/bridge/sdk"
)

func newTestRecord(t *testing.T, cat *catalog.Catalog) *sharedrecord.Record {
	t.Helper()
	layout := sharedrecord.BuildLayout(cat)
	rec, err := sharedrecord.OpenOrCreate("aeroflybridge-command-test", layout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestProcessBuildsMessageForWritableVariable(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	p := New(cat, rec)

	v, ok := cat.EntryByName("Controls.Throttle")
	require.True(t, ok)

	out := p.Process([]string{`{"variable":"Controls.Throttle","value":0.5}`})
	require.Len(t, out, 1)
	assert.Equal(t, v.MessageID, out[0].ID)
	assert.Equal(t, sdk.TypeFloat64, out[0].Type)
	assert.Equal(t, 0.5, out[0].F64)
}

func TestProcessIgnoresUnknownVariable(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	p := New(cat, rec)

	out := p.Process([]string{`{"variable":"Nonexistent.Thing","value":1}`})
	assert.Empty(t, out)
}

func TestProcessIgnoresReadOnlyVariable(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	p := New(cat, rec)

	_, ok := cat.EntryByName("Aircraft.Altitude")
	require.True(t, ok)

	out := p.Process([]string{`{"variable":"Aircraft.Altitude","value":100}`})
	assert.Empty(t, out)
}

func TestProcessIgnoresMalformedJSON(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	p := New(cat, rec)

	out := p.Process([]string{`not even close to json`, `{"variable":"Controls.Throttle","value":"not-a-number"}`})
	assert.Empty(t, out)
}

func TestProcessAppliesStepVariableLocally(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	p := New(cat, rec)

	v, ok := cat.EntryByName("Doors.Left")
	require.True(t, ok)
	require.Equal(t, catalog.FlagStep, v.Flag)

	out := p.Process([]string{`{"variable":"Doors.Left","value":0.3}`})
	require.Len(t, out, 1)
	assert.Equal(t, 0.3, rec.Scalar(v.LogicalIndex))

	out = p.Process([]string{`{"variable":"Doors.Left","value":0.9}`})
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, rec.Scalar(v.LogicalIndex))
}

func TestProcessHandlesMultipleCommandsInOneBatch(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	p := New(cat, rec)

	out := p.Process([]string{
		`{"variable":"Controls.Throttle","value":0.25}`,
		`garbage`,
		`{"variable":"Controls.Throttle","value":0.75}`,
	})
	require.Len(t, out, 2)
	assert.Equal(t, 0.25, out[0].F64)
	assert.Equal(t, 0.75, out[1].F64)
}

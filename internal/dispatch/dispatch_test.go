package dispatch

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
	name := "aeroflybridge-dispatch-test"
	rec, err := sharedrecord.OpenOrCreate(name, layout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestDispatcherScalarStore(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	d := New(cat, rec)

	v, ok := cat.EntryByName("Aircraft.Altitude")
	require.True(t, ok)

	d.Apply([]sdk.Message{{ID: v.MessageID, Type: sdk.TypeFloat64, F64: 1234.5}})
	assert.Equal(t, 1234.5, rec.Scalar(v.LogicalIndex))
}

func TestDispatcherStepClampsToUnitRange(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	d := New(cat, rec)

	base, ok := cat.EntryByName("Doors.Left")
	require.True(t, ok)
	require.Equal(t, catalog.FlagStep, base.Flag)

	d.Apply([]sdk.Message{{ID: base.MessageID, Type: sdk.TypeFloat64, F64: 0.6}})
	assert.Equal(t, 0.6, rec.Scalar(base.LogicalIndex))

	d.Apply([]sdk.Message{{ID: base.MessageID, Type: sdk.TypeFloat64, F64: 0.8}})
	assert.Equal(t, 1.0, rec.Scalar(base.LogicalIndex))

	d.Apply([]sdk.Message{{ID: base.MessageID, Type: sdk.TypeFloat64, F64: -5}})
	assert.Equal(t, 0.0, rec.Scalar(base.LogicalIndex))
}

func TestDispatcherUnknownIDIgnored(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	d := New(cat, rec)

	assert.NotPanics(t, func() {
		d.Apply([]sdk.Message{{ID: 0xDEADBEEF, Type: sdk.TypeFloat64, F64: 1}})
	})
}

func TestDispatcherTypeNoneIgnoredEvenForKnownID(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	d := New(cat, rec)

	v, ok := cat.EntryByName("Aircraft.Altitude")
	require.True(t, ok)

	rec.StoreScalar(v.LogicalIndex, 42)
	d.Apply([]sdk.Message{{ID: v.MessageID, Type: sdk.TypeNone}})
	assert.Equal(t, 42.0, rec.Scalar(v.LogicalIndex))
}

func TestDispatcherKindMismatchDoesNotAbortBatch(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	d := New(cat, rec)

	alt, ok := cat.EntryByName("Aircraft.Altitude")
	require.True(t, ok)
	throttle, ok := cat.EntryByName("Controls.Throttle")
	require.True(t, ok)

	batch := []sdk.Message{
		{ID: alt.MessageID, Type: sdk.TypeString, Str: "garbage"}, // mismatched kind
		{ID: throttle.MessageID, Type: sdk.TypeFloat64, F64: 0.75},
	}
	assert.NotPanics(t, func() { d.Apply(batch) })
	assert.Equal(t, 0.75, rec.Scalar(throttle.LogicalIndex))
}

func TestDispatcherVectorStore(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	d := New(cat, rec)

	var vec catalog.Variable
	found := false
	for _, v := range cat.All() {
		if v.Kind == catalog.Vec3 {
			vec = v
			found = true
			break
		}
	}
	require.True(t, found, "catalog must contain at least one Vec3 variable")

	d.Apply([]sdk.Message{{
		ID:     vec.MessageID,
		Type:   sdk.TypeVector3D,
		Vector: sdk.Vector{X: 1, Y: 2, Z: 3},
	}})
	x, y, z := rec.Vec3(vec.LogicalIndex)
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 2.0, y)
	assert.Equal(t, 3.0, z)
}

func TestDispatcherOpaqueMessageIsANoOp(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	d := New(cat, rec)

	v, ok := cat.EntryByName("Simulation.Heartbeat")
	require.True(t, ok)
	require.Equal(t, catalog.Opaque, v.Kind)

	// An opaque variable has a registered handler (so it is not counted
	// as an unknown id) but stores nothing -- applying it must not panic
	// or touch the record.
	before := rec.Scalar(v.LogicalIndex)
	d.Apply([]sdk.Message{{ID: v.MessageID, Type: sdk.TypeFloat64, F64: 42}})
	assert.Equal(t, before, rec.Scalar(v.LogicalIndex))
}

func TestDispatcherStringStoreIsSanitized(t *testing.T) {
	cat := catalog.Build()
	rec := newTestRecord(t, cat)
	d := New(cat, rec)

	var str catalog.Variable
	found := false
	for _, v := range cat.All() {
		if v.Kind == catalog.String {
			str = v
			found = true
			break
		}
	}
	require.True(t, found, "catalog must contain at least one string variable")

	d.Apply([]sdk.Message{{ID: str.MessageID, Type: sdk.TypeString, Str: "hi\x01there\x7f"}})
	assert.Equal(t, "hi there ", rec.String(str.LogicalIndex))
}

func TestSanitizeIsIdempotent(t *testing.T) {
	in := "line1\nline2\x00\x7f"
	once := Sanitize(in)
	twice := Sanitize(once)
	assert.Equal(t, once, twice)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-1))
	assert.Equal(t, 1.0, Clamp01(2))
	assert.Equal(t, 0.5, Clamp01(0.5))
}

func TestApplyStep(t *testing.T) {
	assert.InDelta(t, 0.3, ApplyStep(0.1, 0.2), 1e-9)
	assert.Equal(t, 1.0, ApplyStep(0.9, 0.9))
	assert.Equal(t, 0.0, ApplyStep(0.1, -5))
}

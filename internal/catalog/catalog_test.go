package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCatalogBijection verifies spec.md §8 property 1: for every canonical
// entry e, IndexOf(e.Name) == e.LogicalIndex and Entry(e.LogicalIndex).Name
// == e.Name.
func TestCatalogBijection(t *testing.T) {
	cat := Build()
	require.Greater(t, cat.NumVariables(), 0)

	for i := 0; i < cat.NumVariables(); i++ {
		e, ok := cat.Entry(i)
		require.True(t, ok)

		idx, ok := cat.IndexOf(e.Name)
		require.True(t, ok)
		assert.Equal(t, e.LogicalIndex, idx)

		back, ok := cat.Entry(idx)
		require.True(t, ok)
		assert.Equal(t, e.Name, back.Name)
	}
}

func TestCatalogMessageIDsUniqueAcrossAllEntries(t *testing.T) {
	cat := Build()
	seen := make(map[uint64]string)
	for _, v := range cat.All() {
		if prev, dup := seen[v.MessageID]; dup {
			t.Fatalf("message id %d reused by %q and %q", v.MessageID, prev, v.Name)
		}
		seen[v.MessageID] = v.Name
	}
}

func TestCatalogEntryByMessageIDRoundTrips(t *testing.T) {
	cat := Build()
	for _, v := range cat.All() {
		got, ok := cat.EntryByMessageID(v.MessageID)
		require.True(t, ok)
		assert.Equal(t, v.Name, got.Name)
		assert.Equal(t, v.Flag, got.Flag)
	}
}

func TestCatalogVariantsShareLogicalIndexWithCanonical(t *testing.T) {
	cat := Build()
	canonical, ok := cat.EntryByName("Controls.Throttle")
	require.True(t, ok)

	found := false
	for _, v := range cat.All() {
		if v.Name == "Controls.Throttle" && v.Flag == FlagMove {
			found = true
			assert.Equal(t, canonical.LogicalIndex, v.LogicalIndex)
			assert.NotEqual(t, canonical.MessageID, v.MessageID)
		}
	}
	assert.True(t, found, "expected a FlagMove variant of Controls.Throttle")
}

func TestCatalogOutOfRangeIndexIsSafe(t *testing.T) {
	cat := Build()
	_, ok := cat.Entry(-1)
	assert.False(t, ok)
	_, ok = cat.Entry(cat.NumVariables())
	assert.False(t, ok)
}

func TestCatalogUnknownNameAndMessageID(t *testing.T) {
	cat := Build()
	_, ok := cat.IndexOf("Nonexistent.Variable")
	assert.False(t, ok)
	_, ok = cat.EntryByMessageID(0)
	assert.False(t, ok)
}

func TestCatalogSnapshotCoversEveryLogicalIndex(t *testing.T) {
	cat := Build()
	snap := cat.Snapshot()
	assert.Len(t, snap, cat.NumVariables())

	byIndex := make(map[int]bool, len(snap))
	for _, ni := range snap {
		byIndex[ni.Index] = true
	}
	for i := 0; i < cat.NumVariables(); i++ {
		assert.True(t, byIndex[i], "missing logical index %d in snapshot", i)
	}
}

func TestCatalogHasAnOpaqueEntry(t *testing.T) {
	cat := Build()
	found := false
	for i := 0; i < cat.NumVariables(); i++ {
		v, _ := cat.Entry(i)
		if v.Kind == Opaque {
			found = true
			break
		}
	}
	assert.True(t, found, "expected at least one Opaque-kind catalog entry")
}

func TestGroupDerivesFromDottedPrefix(t *testing.T) {
	v := Variable{Name: "Aircraft.Altitude"}
	assert.Equal(t, "Aircraft", v.Group())

	v2 := Variable{Name: "NoDotName"}
	assert.Equal(t, "NoDotName", v2.Group())
}

func TestKindAndAccessAndFlagStrings(t *testing.T) {
	assert.Equal(t, "double", Scalar.String())
	assert.Equal(t, "vector3d", Vec3.String())
	assert.Equal(t, "read_write", ReadWrite.String())
	assert.Equal(t, "step", FlagStep.String())
	assert.Equal(t, "none", FlagNone.String())
}

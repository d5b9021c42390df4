// Package catalog implements the Variable Catalog (spec.md §4.1): the
// static, immutable-after-construction table mapping every named
// simulator variable to a dense logical index, and the bidirectional
// lookups the rest of the bridge needs to move between names, indices, and
// wire message ids.
package catalog

import (
	"fmt"
	"hash/fnv"
)

// Kind is the data shape of a variable's value.
type Kind uint8

const (
	Scalar Kind = iota
	Vec2
	Vec3
	Vec4
	String
	Opaque
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "double"
	case Vec2:
		return "vector2d"
	case Vec3:
		return "vector3d"
	case Vec4:
		return "vector4d"
	case String:
		return "string"
	case Opaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Access describes which direction(s) a variable flows.
type Access uint8

const (
	Read Access = iota
	Write
	ReadWrite
)

func (a Access) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	case ReadWrite:
		return "read_write"
	default:
		return "unknown"
	}
}

// Flag is the primary semantic annotation on a variable, per spec.md §3.
type Flag uint8

const (
	FlagNone Flag = iota
	FlagValue
	FlagEvent
	FlagToggle
	FlagStep
	FlagOffset
	FlagMove
	FlagActive
)

func (f Flag) String() string {
	switch f {
	case FlagValue:
		return "value"
	case FlagEvent:
		return "event"
	case FlagToggle:
		return "toggle"
	case FlagStep:
		return "step"
	case FlagOffset:
		return "offset"
	case FlagMove:
		return "move"
	case FlagActive:
		return "active"
	default:
		return "none"
	}
}

// Variable is one catalog entry. Immutable once the Catalog is built.
type Variable struct {
	Name         string
	LogicalIndex int
	Kind         Kind
	Unit         string
	Access       Access
	Flag         Flag
	MessageID    uint64

	// wireName is the string actually hashed to produce MessageID. It
	// equals Name except for the handful of variables that expose more
	// than one wire identity under the same catalog Name (e.g. a control
	// with both a direct "value" message and a "move" rate message) --
	// see row.variant in catalog_data.go.
	wireName string
}

// Group returns the dot-prefix group a variable belongs to, e.g.
// "Aircraft.Altitude" -> "Aircraft". Used only for the offsets descriptor.
func (v Variable) Group() string {
	for i := 0; i < len(v.Name); i++ {
		if v.Name[i] == '.' {
			return v.Name[:i]
		}
	}
	return v.Name
}

// Catalog is the immutable, constructed-once variable table.
type Catalog struct {
	// canonical holds one Variable per dense logical index, for O(1)
	// Entry() lookups.
	canonical []Variable
	// all holds every registered row, including non-canonical wire
	// variants, in registration order.
	all         []Variable
	byName      map[string]int
	byMessageID map[uint64]int
}

// row is the compact source-table shape catalog_data.go is written in;
// Build turns rows into fully populated Variables with computed message
// ids and dense logical indices.
type row struct {
	name    string
	kind    Kind
	unit    string
	access  Access
	flag    Flag
	variant string // non-empty only for a second wire identity of `name`
}

func hashName(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Build constructs a Catalog from the static row table in catalog_data.go.
// It panics on a duplicate message id or duplicate (name) within the same
// primary flag -- per spec.md §9 Open Questions, a duplicate registration
// is a build-time error, not a silently-overwritten entry.
func Build() *Catalog {
	rows := definitionRows()
	c := &Catalog{
		canonical:   make([]Variable, 0, len(rows)),
		all:         make([]Variable, 0, len(rows)),
		byName:      make(map[string]int, len(rows)),
		byMessageID: make(map[uint64]int, len(rows)),
	}

	seenNameFlag := make(map[string]bool, len(rows))
	for _, r := range rows {
		wireName := r.name
		if r.variant != "" {
			wireName = r.name + "." + r.variant
		}
		v := Variable{
			Name:      r.name,
			Kind:      r.kind,
			Unit:      r.unit,
			Access:    r.access,
			Flag:      r.flag,
			MessageID: hashName(wireName),
			wireName:  wireName,
		}

		nameFlagKey := fmt.Sprintf("%s\x00%d", v.Name, v.Flag)
		if seenNameFlag[nameFlagKey] {
			panic(fmt.Sprintf("catalog: duplicate variable/flag registration: %s (%s)", v.Name, v.Flag))
		}
		seenNameFlag[nameFlagKey] = true

		if _, dup := c.byMessageID[v.MessageID]; dup {
			panic(fmt.Sprintf("catalog: duplicate message id for wire name %q", wireName))
		}

		// The first entry for a given Name owns the dense logical index
		// and a slot in canonical. Entries that reuse a Name with a
		// different Flag are wire-identity variants reachable only via
		// EntryByMessageID, never via IndexOf/Entry.
		idx, exists := c.byName[v.Name]
		if !exists {
			idx = len(c.canonical)
			c.byName[v.Name] = idx
			v.LogicalIndex = idx
			c.canonical = append(c.canonical, v)
		} else {
			v.LogicalIndex = idx
		}

		c.byMessageID[v.MessageID] = len(c.all)
		c.all = append(c.all, v)
	}
	return c
}

// IndexOf returns the logical index of name, and whether it was found.
func (c *Catalog) IndexOf(name string) (int, bool) {
	idx, ok := c.byName[name]
	return idx, ok
}

// Entry returns the canonical (first-registered) entry for a dense logical
// index, in O(1). Index must be in [0, NumVariables).
func (c *Catalog) Entry(index int) (Variable, bool) {
	if index < 0 || index >= len(c.canonical) {
		return Variable{}, false
	}
	return c.canonical[index], true
}

// EntryByMessageID looks up the (possibly variant) entry registered under a
// given wire message id.
func (c *Catalog) EntryByMessageID(id uint64) (Variable, bool) {
	i, ok := c.byMessageID[id]
	if !ok {
		return Variable{}, false
	}
	return c.all[i], true
}

// EntryByName looks up the canonical entry for a variable name.
func (c *Catalog) EntryByName(name string) (Variable, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return Variable{}, false
	}
	return c.Entry(idx)
}

// All returns every catalog entry, including wire-identity variants, in
// registration order. Callers must not mutate the result.
func (c *Catalog) All() []Variable {
	return c.all
}

// NumVariables is the dense count of distinct logical indices (i.e. the
// length of the shared record's values[] array), not len(All()) -- variant
// entries share a logical index with their canonical entry.
func (c *Catalog) NumVariables() int {
	return len(c.canonical)
}

// Snapshot returns every (name, logical index) pair, one per dense index.
func (c *Catalog) Snapshot() []NameIndex {
	out := make([]NameIndex, 0, len(c.byName))
	for name, idx := range c.byName {
		out = append(out, NameIndex{Name: name, Index: idx})
	}
	return out
}

// NameIndex is one entry of a catalog Snapshot.
type NameIndex struct {
	Name  string
	Index int
}

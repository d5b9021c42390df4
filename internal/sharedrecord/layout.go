// Package sharedrecord implements the Shared Record (spec.md §4.2): the
// fixed-layout structure in a named memory region that mirrors the most
// recently seen value of every catalog variable for same-host, zero-copy
// readers.
//
// The record is laid out by hand at fixed byte offsets (rather than relying
// on a Go struct's in-memory layout) because the offsets descriptor
// (spec.md §6, internal/catalog.WriteDescriptorFile) is a public contract
// read by out-of-process consumers; encoding/binary reads and writes
// directly against the mapped byte slice keep that contract exact and
// platform-independent.
package sharedrecord

import "github.com/aeroflybridge/bridge/internal/catalog"

// LayoutVersion is bumped whenever the byte layout below changes shape.
// Exported in the offsets descriptor so out-of-process readers can refuse
// to trust a region built by an incompatible version (spec.md §9 Open
// Questions: the bridge itself does not enforce this, clients should).
const LayoutVersion = 1

const (
	offTimestampUs    = 0
	offDataValid      = 8
	offUpdateCounter  = 12
	offLayoutVersion  = 16
	headerSize        = 24 // padded to an 8-byte boundary for the values array
	stringFieldLength = 64 // bytes, including the NUL terminator
)

// sideField describes one non-scalar variable's storage within the side
// field region, keyed by logical index.
type sideField struct {
	offset   int64
	length   int64
	kind     catalog.Kind
	fieldTag string // struct_field_name used in the descriptor
}

// Layout is the computed, immutable memory plan for a given catalog: where
// the header ends, where the dense values[] array sits, and where each
// non-scalar variable's side field lives.
type Layout struct {
	ArrayBaseOffset int64
	StrideBytes     int64
	ValuesCount     int
	ValuesSize      int64
	sideFields      map[int]sideField
	TotalSize       int64
}

// BuildLayout computes a deterministic Layout for cat: the values[] array
// immediately follows the header, and side fields for vector/string
// variables are packed in ascending logical-index order immediately after
// the values array.
func BuildLayout(cat *catalog.Catalog) Layout {
	n := cat.NumVariables()
	l := Layout{
		ArrayBaseOffset: headerSize,
		StrideBytes:     8,
		ValuesCount:     n,
		ValuesSize:      int64(n) * 8,
		sideFields:      make(map[int]sideField),
	}

	cursor := l.ArrayBaseOffset + l.ValuesSize
	for i := 0; i < n; i++ {
		v, ok := cat.Entry(i)
		if !ok || v.Kind == catalog.Scalar || v.Kind == catalog.Opaque {
			continue
		}
		var length int64
		switch v.Kind {
		case catalog.Vec2:
			length = 16
		case catalog.Vec3:
			length = 24
		case catalog.Vec4:
			length = 32
		case catalog.String:
			length = stringFieldLength
		}
		l.sideFields[i] = sideField{
			offset:   cursor,
			length:   length,
			kind:     v.Kind,
			fieldTag: "side_" + v.Name,
		}
		cursor += length
	}
	l.TotalSize = cursor
	return l
}

// fieldOf implements catalog.LayoutInfo.FieldOf for the offsets descriptor.
func (l Layout) fieldOf(v catalog.Variable) catalog.StorageField {
	if v.Kind == catalog.Scalar {
		return catalog.StorageField{
			Storage:    "all_variables",
			ByteOffset: l.ArrayBaseOffset + int64(v.LogicalIndex)*l.StrideBytes,
			ByteLength: 8,
		}
	}
	if v.Kind == catalog.Opaque {
		return catalog.StorageField{Storage: "message_only"}
	}
	sf, ok := l.sideFields[v.LogicalIndex]
	if !ok {
		return catalog.StorageField{Storage: "message_only"}
	}
	order := []string{"x", "y"}
	switch sf.kind {
	case catalog.Vec3:
		order = []string{"x", "y", "z"}
	case catalog.Vec4:
		order = []string{"x", "y", "z", "w"}
	case catalog.String:
		order = nil
	}
	return catalog.StorageField{
		Storage:         "struct_field",
		StructFieldName: sf.fieldTag,
		ByteOffset:      sf.offset,
		ByteLength:      sf.length,
		ComponentOrder:  order,
	}
}

// DescriptorLayoutInfo adapts l to catalog.LayoutInfo for
// catalog.WriteDescriptorFile / catalog.BuildDescriptor.
func (l Layout) DescriptorLayoutInfo() catalog.LayoutInfo {
	return catalog.LayoutInfo{
		LayoutVersion:   LayoutVersion,
		ArrayBaseOffset: l.ArrayBaseOffset,
		StrideBytes:     l.StrideBytes,
		FieldOf:         l.fieldOf,
	}
}

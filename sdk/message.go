// Package sdk specifies the host plugin ABI's wire format at its interface
// only: the shape of a single inbound/outbound message and the two
// functions that move one message in or out of a packed byte stream. The
// actual byte-stream layout is owned by the simulator SDK the bridge links
// against; this package is deliberately the out-of-scope boundary named in
// spec.md §1 and §6. Production builds satisfy it against the vendor SDK
// headers; this module ships a self-consistent implementation so the rest
// of the bridge, and all of its tests, have something real to call.
package sdk

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DataType tags the payload carried by a Message. "None" is preserved
// verbatim from the vendor SDK: a handful of catalog entries (notably
// Aircraft.Crashed variants) are observed with this type and must be
// ignored without error rather than treated as a decode failure.
type DataType uint8

const (
	TypeNone DataType = iota
	TypeFloat64
	TypeFloat32
	TypeInt64
	TypeUint64
	TypeUint8
	TypeString
	TypeVector2D
	TypeVector3D
	TypeVector4D
)

// Flag bits carried alongside a message's data type. The bridge does not
// interpret these; they pass through untouched for parity with the ABI.
type Flags uint32

const (
	FlagNone   Flags = 0
	FlagNoSave Flags = 1 << iota
)

// Vector holds up to four float64 components; X/Y/Z/W beyond a message's
// declared arity are zero and unused.
type Vector struct {
	X, Y, Z, W float64
}

// Message is one decoded host ABI message: a 64-bit id (hash of the
// catalog variable name), the declared data type, flag bits, and exactly
// one populated payload field selected by Type.
type Message struct {
	ID     uint64
	Type   DataType
	Flags  Flags
	F64    float64
	F32    float32
	I64    int64
	U64    uint64
	U8     uint8
	Str    string
	Vector Vector
}

var ErrShortBuffer = errors.New("sdk: buffer too short to contain a message")

const maxStringLen = 256

// ParseFrom decodes a single Message from buf starting at *pos, advancing
// *pos past the consumed bytes. It is the inbound half of the ABI boundary
// delegated to by spec.md §6's "SDK helper functions".
//
// Wire layout (fixed, little-endian): id(u64) type(u8) flags(u32)
// payload(variable by type). This module's own layout — production builds
// swap this file for the real vendor SDK binding without touching callers.
func ParseFrom(buf []byte, pos *int) (Message, error) {
	var m Message
	if *pos < 0 || *pos+13 > len(buf) {
		return m, ErrShortBuffer
	}
	m.ID = binary.LittleEndian.Uint64(buf[*pos:])
	*pos += 8
	m.Type = DataType(buf[*pos])
	*pos++
	m.Flags = Flags(binary.LittleEndian.Uint32(buf[*pos:]))
	*pos += 4

	switch m.Type {
	case TypeNone:
		// No payload.
	case TypeFloat64:
		if *pos+8 > len(buf) {
			return m, ErrShortBuffer
		}
		m.F64 = bitsToFloat64(binary.LittleEndian.Uint64(buf[*pos:]))
		*pos += 8
	case TypeFloat32:
		if *pos+4 > len(buf) {
			return m, ErrShortBuffer
		}
		m.F32 = bitsToFloat32(binary.LittleEndian.Uint32(buf[*pos:]))
		*pos += 4
	case TypeInt64:
		if *pos+8 > len(buf) {
			return m, ErrShortBuffer
		}
		m.I64 = int64(binary.LittleEndian.Uint64(buf[*pos:]))
		*pos += 8
	case TypeUint64:
		if *pos+8 > len(buf) {
			return m, ErrShortBuffer
		}
		m.U64 = binary.LittleEndian.Uint64(buf[*pos:])
		*pos += 8
	case TypeUint8:
		if *pos+1 > len(buf) {
			return m, ErrShortBuffer
		}
		m.U8 = buf[*pos]
		*pos++
	case TypeString:
		if *pos+2 > len(buf) {
			return m, ErrShortBuffer
		}
		n := int(binary.LittleEndian.Uint16(buf[*pos:]))
		*pos += 2
		if n > maxStringLen || *pos+n > len(buf) {
			return m, ErrShortBuffer
		}
		m.Str = string(buf[*pos : *pos+n])
		*pos += n
	case TypeVector2D:
		if *pos+16 > len(buf) {
			return m, ErrShortBuffer
		}
		m.Vector.X = bitsToFloat64(binary.LittleEndian.Uint64(buf[*pos:]))
		m.Vector.Y = bitsToFloat64(binary.LittleEndian.Uint64(buf[*pos+8:]))
		*pos += 16
	case TypeVector3D:
		if *pos+24 > len(buf) {
			return m, ErrShortBuffer
		}
		m.Vector.X = bitsToFloat64(binary.LittleEndian.Uint64(buf[*pos:]))
		m.Vector.Y = bitsToFloat64(binary.LittleEndian.Uint64(buf[*pos+8:]))
		m.Vector.Z = bitsToFloat64(binary.LittleEndian.Uint64(buf[*pos+16:]))
		*pos += 24
	case TypeVector4D:
		if *pos+32 > len(buf) {
			return m, ErrShortBuffer
		}
		m.Vector.X = bitsToFloat64(binary.LittleEndian.Uint64(buf[*pos:]))
		m.Vector.Y = bitsToFloat64(binary.LittleEndian.Uint64(buf[*pos+8:]))
		m.Vector.Z = bitsToFloat64(binary.LittleEndian.Uint64(buf[*pos+16:]))
		m.Vector.W = bitsToFloat64(binary.LittleEndian.Uint64(buf[*pos+24:]))
		*pos += 32
	default:
		return m, fmt.Errorf("sdk: unknown data type %d", m.Type)
	}
	return m, nil
}

// AppendTo encodes m onto buf, growing it as needed, increments *count,
// and returns the new slice. This is the outbound half of
// the ABI boundary: the host plugin entry point hands the result back to
// the simulator each tick.
func AppendTo(buf []byte, m Message, count *int) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, m.ID)
	buf = append(buf, byte(m.Type))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(m.Flags))

	switch m.Type {
	case TypeNone:
	case TypeFloat64:
		buf = binary.LittleEndian.AppendUint64(buf, float64ToBits(m.F64))
	case TypeFloat32:
		buf = binary.LittleEndian.AppendUint32(buf, float32ToBits(m.F32))
	case TypeInt64:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(m.I64))
	case TypeUint64:
		buf = binary.LittleEndian.AppendUint64(buf, m.U64)
	case TypeUint8:
		buf = append(buf, m.U8)
	case TypeString:
		s := m.Str
		if len(s) > maxStringLen {
			s = s[:maxStringLen]
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s)))
		buf = append(buf, s...)
	case TypeVector2D:
		buf = binary.LittleEndian.AppendUint64(buf, float64ToBits(m.Vector.X))
		buf = binary.LittleEndian.AppendUint64(buf, float64ToBits(m.Vector.Y))
	case TypeVector3D:
		buf = binary.LittleEndian.AppendUint64(buf, float64ToBits(m.Vector.X))
		buf = binary.LittleEndian.AppendUint64(buf, float64ToBits(m.Vector.Y))
		buf = binary.LittleEndian.AppendUint64(buf, float64ToBits(m.Vector.Z))
	case TypeVector4D:
		buf = binary.LittleEndian.AppendUint64(buf, float64ToBits(m.Vector.X))
		buf = binary.LittleEndian.AppendUint64(buf, float64ToBits(m.Vector.Y))
		buf = binary.LittleEndian.AppendUint64(buf, float64ToBits(m.Vector.Z))
		buf = binary.LittleEndian.AppendUint64(buf, float64ToBits(m.Vector.W))
	}
	*count++
	return buf
}

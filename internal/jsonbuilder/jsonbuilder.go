// Package jsonbuilder implements the JSON Builder (spec.md §4.4): the
// single function that renders a shared record into the broadcast document
// shared verbatim by the TCP and WebSocket transports.
package jsonbuilder

import (
	"strconv"
	"sync"

	"github.com/aeroflybridge/bridge/internal/catalog"
	"github.com/aeroflybridge/bridge/internal/sharedrecord"
)

const (
	schemaName    = "aerofly-bridge-telemetry"
	schemaVersion = 1
)

// Builder renders the current contents of a shared record to JSON. It
// reuses a single growable buffer across calls so a broadcast never
// allocates per variable, per spec.md §4.4's "no allocation per variable"
// Design Note.
type Builder struct {
	cat *catalog.Catalog
	rec *sharedrecord.Record

	broadcastRateHz float64

	mu  sync.Mutex
	buf []byte
}

// New builds a Builder for cat/rec. broadcastRateHz is reported verbatim in
// every document's envelope, derived by the caller from the configured
// broadcast interval (spec.md §4.4 envelope field broadcast_rate_hz).
func New(cat *catalog.Catalog, rec *sharedrecord.Record, broadcastRateHz float64) *Builder {
	return &Builder{cat: cat, rec: rec, broadcastRateHz: broadcastRateHz, buf: make([]byte, 0, 4096)}
}

// Build renders one broadcast document. The returned byte slice is only
// valid until the next call to Build (it aliases the Builder's reused
// buffer); callers that need to retain it must copy.
func (b *Builder) Build() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := b.buf[:0]
	buf = append(buf, '{')

	buf = appendKey(buf, "schema", true)
	buf = appendString(buf, schemaName)
	buf = append(buf, ',')

	buf = appendKey(buf, "schema_version", false)
	buf = strconv.AppendInt(buf, schemaVersion, 10)
	buf = append(buf, ',')

	buf = appendKey(buf, "timestamp", false)
	buf = strconv.AppendUint(buf, b.rec.TimestampUs(), 10)
	buf = append(buf, ',')

	buf = appendKey(buf, "timestamp_unit", false)
	buf = appendString(buf, "microseconds")
	buf = append(buf, ',')

	buf = appendKey(buf, "data_valid", false)
	buf = strconv.AppendUint(buf, uint64(b.rec.DataValid()), 10)
	buf = append(buf, ',')

	buf = appendKey(buf, "update_counter", false)
	buf = strconv.AppendUint(buf, uint64(b.rec.UpdateCounter()), 10)
	buf = append(buf, ',')

	buf = appendKey(buf, "broadcast_rate_hz", false)
	buf = strconv.AppendFloat(buf, b.broadcastRateHz, 'f', -1, 64)
	buf = append(buf, ',')

	buf = appendKey(buf, "variables", false)
	buf = append(buf, '{')
	first := true
	for i := 0; i < b.cat.NumVariables(); i++ {
		v, ok := b.cat.Entry(i)
		if !ok {
			continue
		}
		buf, first = b.appendVariable(buf, v, first)
	}
	buf = append(buf, '}')

	buf = append(buf, '}', '\n')
	b.buf = buf
	return buf
}

func (b *Builder) appendVariable(buf []byte, v catalog.Variable, first bool) ([]byte, bool) {
	switch v.Kind {
	case catalog.Scalar:
		buf = appendComma(buf, first)
		buf = appendKey(buf, v.Name, false)
		buf = appendFloat(buf, b.rec.Scalar(v.LogicalIndex))
		return buf, false
	case catalog.Vec2:
		x, y := b.rec.Vec2(v.LogicalIndex)
		buf = appendComponent(buf, v.Name, "X", x, &first)
		buf = appendComponent(buf, v.Name, "Y", y, &first)
		return buf, first
	case catalog.Vec3:
		x, y, z := b.rec.Vec3(v.LogicalIndex)
		buf = appendComponent(buf, v.Name, "X", x, &first)
		buf = appendComponent(buf, v.Name, "Y", y, &first)
		buf = appendComponent(buf, v.Name, "Z", z, &first)
		return buf, first
	case catalog.Vec4:
		x, y, z, w := b.rec.Vec4(v.LogicalIndex)
		buf = appendComponent(buf, v.Name, "X", x, &first)
		buf = appendComponent(buf, v.Name, "Y", y, &first)
		buf = appendComponent(buf, v.Name, "Z", z, &first)
		buf = appendComponent(buf, v.Name, "W", w, &first)
		return buf, first
	case catalog.String:
		buf = appendComma(buf, first)
		buf = appendKey(buf, v.Name, false)
		buf = appendString(buf, b.rec.String(v.LogicalIndex))
		return buf, false
	default:
		// Opaque (message_only) variables carry no stored value.
		return buf, first
	}
}

func appendComponent(buf []byte, name, axis string, val float64, first *bool) []byte {
	buf = appendComma(buf, *first)
	buf = appendKey(buf, name+"."+axis, false)
	buf = appendFloat(buf, val)
	*first = false
	return buf
}

func appendComma(buf []byte, first bool) []byte {
	if first {
		return buf
	}
	return append(buf, ',')
}

// appendKey writes "key": . omitLeadingComma is unused here; kept for call
// symmetry at the few envelope sites that never need a leading comma.
func appendKey(buf []byte, key string, _ bool) []byte {
	buf = append(buf, '"')
	buf = append(buf, key...)
	buf = append(buf, '"', ':')
	return buf
}

// appendFloat renders v with a fixed six-decimal format, per spec.md §8 S1
// ("Aircraft.Altitude": 1524.000000).
func appendFloat(buf []byte, v float64) []byte {
	return strconv.AppendFloat(buf, v, 'f', 6, 64)
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			buf = append(buf, '\\', c)
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			buf = append(buf, c)
		}
	}
	return append(buf, '"')
}

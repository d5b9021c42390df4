// Package dispatch implements Inbound Dispatch (spec.md §4.3): applying a
// batch of decoded host messages to the shared record.
//
// Per the "Long if-else dispatch chains" note in spec.md §9, handlers are
// kept in a hash map from message id to a closure built once at startup
// from the catalog, rather than as an exhaustive if/else or switch
// cascade. An unknown id is a single map miss.
package dispatch

import (
	"github.com/aeroflybridge/bridge/internal/bridgeerr"
	"github.com/aeroflybridge/bridge/internal/catalog"
	"github.com/aeroflybridge/bridge/internal/metrics"
	"github.com/aeroflybridge/bridge/internal/sharedrecord"
	"github.com/aeroflybridge/bridge/pkg/blog"
	"github.com/aeroflybridge/bridge/sdk"
)

type handlerFunc func(rec *sharedrecord.Record, msg sdk.Message)

// Dispatcher owns the per-id handler table and applies inbound message
// batches to a shared record.
type Dispatcher struct {
	rec      *sharedrecord.Record
	handlers map[uint64]handlerFunc

	warnedUnknownKind map[uint64]bool
}

// New builds a Dispatcher for cat, wiring exactly one handler per
// message id (catalog.Build already rejects duplicate message ids, so a
// second registration here would be an internal bug, not a data error).
func New(cat *catalog.Catalog, rec *sharedrecord.Record) *Dispatcher {
	d := &Dispatcher{
		rec:               rec,
		handlers:          make(map[uint64]handlerFunc, len(cat.All())),
		warnedUnknownKind: make(map[uint64]bool),
	}
	for _, v := range cat.All() {
		v := v
		switch {
		case v.Kind == catalog.Scalar && v.Flag == catalog.FlagStep:
			d.handlers[v.MessageID] = d.stepHandler(v)
		case v.Kind == catalog.Scalar:
			d.handlers[v.MessageID] = d.scalarHandler(v)
		case v.Kind == catalog.Vec2:
			d.handlers[v.MessageID] = d.vec2Handler(v)
		case v.Kind == catalog.Vec3:
			d.handlers[v.MessageID] = d.vec3Handler(v)
		case v.Kind == catalog.Vec4:
			d.handlers[v.MessageID] = d.vec4Handler(v)
		case v.Kind == catalog.String:
			d.handlers[v.MessageID] = d.stringHandler(v)
		default:
			// Opaque: message-only, no record storage.
			d.handlers[v.MessageID] = func(*sharedrecord.Record, sdk.Message) {}
		}
	}
	return d
}

// Apply decodes nothing itself (messages arrive already decoded via
// sdk.ParseFrom upstream); it applies each message to the record in the
// order given, per spec.md §5 "Ordering". A single corrupt or mismatched
// message is skipped without aborting the rest of the batch.
func (d *Dispatcher) Apply(messages []sdk.Message) {
	for _, msg := range messages {
		d.applyOne(msg)
	}
}

func (d *Dispatcher) applyOne(msg sdk.Message) {
	// spec.md §9 Open Questions: "None" typed messages are observed in
	// the wild (e.g. certain Aircraft.Crashed variants) and must be
	// ignored without error, independent of the catalog's declared kind.
	if msg.Type == sdk.TypeNone {
		return
	}

	h, ok := d.handlers[msg.ID]
	if !ok {
		// Unknown id: silently ignored per spec.md §4.3/§7.
		return
	}
	h(d.rec, msg)
	metrics.MessagesDispatched.WithLabelValues(kindLabel(msg.Type)).Inc()
}

func kindLabel(t sdk.DataType) string {
	switch t {
	case sdk.TypeFloat64, sdk.TypeFloat32, sdk.TypeInt64, sdk.TypeUint64, sdk.TypeUint8:
		return "scalar"
	case sdk.TypeString:
		return "string"
	case sdk.TypeVector2D:
		return "vector2d"
	case sdk.TypeVector3D:
		return "vector3d"
	case sdk.TypeVector4D:
		return "vector4d"
	default:
		return "unknown"
	}
}

func numeric(msg sdk.Message) (float64, bool) {
	switch msg.Type {
	case sdk.TypeFloat64:
		return msg.F64, true
	case sdk.TypeFloat32:
		return float64(msg.F32), true
	case sdk.TypeInt64:
		return float64(msg.I64), true
	case sdk.TypeUint64:
		return float64(msg.U64), true
	case sdk.TypeUint8:
		return float64(msg.U8), true
	default:
		return 0, false
	}
}

func (d *Dispatcher) warnKindMismatchOnce(v catalog.Variable, msg sdk.Message) {
	if d.warnedUnknownKind[v.MessageID] {
		return
	}
	d.warnedUnknownKind[v.MessageID] = true
	err := bridgeerr.New(bridgeerr.DecodeError, "dispatch.applyOne",
		nil)
	blog.Warnf("%v: variable %q: declared data type %d does not match catalog kind %s", err, v.Name, msg.Type, v.Kind)
}

func (d *Dispatcher) scalarHandler(v catalog.Variable) handlerFunc {
	return func(rec *sharedrecord.Record, msg sdk.Message) {
		f, ok := numeric(msg)
		if !ok {
			d.warnKindMismatchOnce(v, msg)
			return
		}
		rec.StoreScalar(v.LogicalIndex, f)
	}
}

func (d *Dispatcher) stepHandler(v catalog.Variable) handlerFunc {
	return func(rec *sharedrecord.Record, msg sdk.Message) {
		delta, ok := numeric(msg)
		if !ok {
			d.warnKindMismatchOnce(v, msg)
			return
		}
		current := rec.Scalar(v.LogicalIndex)
		rec.StoreScalar(v.LogicalIndex, ApplyStep(current, delta))
	}
}

func (d *Dispatcher) vec2Handler(v catalog.Variable) handlerFunc {
	return func(rec *sharedrecord.Record, msg sdk.Message) {
		if msg.Type != sdk.TypeVector2D {
			d.warnKindMismatchOnce(v, msg)
			return
		}
		rec.StoreVec2(v.LogicalIndex, msg.Vector.X, msg.Vector.Y)
	}
}

func (d *Dispatcher) vec3Handler(v catalog.Variable) handlerFunc {
	return func(rec *sharedrecord.Record, msg sdk.Message) {
		if msg.Type != sdk.TypeVector3D {
			d.warnKindMismatchOnce(v, msg)
			return
		}
		rec.StoreVec3(v.LogicalIndex, msg.Vector.X, msg.Vector.Y, msg.Vector.Z)
	}
}

func (d *Dispatcher) vec4Handler(v catalog.Variable) handlerFunc {
	return func(rec *sharedrecord.Record, msg sdk.Message) {
		if msg.Type != sdk.TypeVector4D {
			d.warnKindMismatchOnce(v, msg)
			return
		}
		rec.StoreVec4(v.LogicalIndex, msg.Vector.X, msg.Vector.Y, msg.Vector.Z, msg.Vector.W)
	}
}

func (d *Dispatcher) stringHandler(v catalog.Variable) handlerFunc {
	return func(rec *sharedrecord.Record, msg sdk.Message) {
		if msg.Type != sdk.TypeString {
			d.warnKindMismatchOnce(v, msg)
			return
		}
		rec.StoreString(v.LogicalIndex, Sanitize(msg.Str))
	}
}

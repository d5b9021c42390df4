// Package command implements the Command Processor (spec.md §4.7):
// translating client JSON commands into outbound SDK messages, and for
// step-flag variables, applying them to the local shared record so the
// UI-visible state advances without waiting for a host round-trip.
package command

import (
	"strconv"

	"github.com/aeroflybridge/bridge/internal/catalog"
	"github.com/aeroflybridge/bridge/internal/dispatch"
	"github.com/aeroflybridge/bridge/internal/sharedrecord"
	"github.com/aeroflybridge/bridge/pkg/blog"
	"github.com/aeroflybridge/bridge/sdk"
)

// builder produces an outbound sdk.Message for a variable given the
// numeric value parsed out of a command.
type builder func(value float64) sdk.Message

// Processor holds the name -> builder table, populated once at
// construction from catalog entries with write or read_write access.
type Processor struct {
	rec      *sharedrecord.Record
	builders map[string]builder
	steps    map[string]catalog.Variable
}

// New builds a Processor for cat. rec is used only to apply step-flag
// variables locally; it may be nil if local step application is not
// needed (e.g. in tests that only exercise message construction).
func New(cat *catalog.Catalog, rec *sharedrecord.Record) *Processor {
	p := &Processor{
		rec:      rec,
		builders: make(map[string]builder),
		steps:    make(map[string]catalog.Variable),
	}
	// Only canonical entries are visited here (one per distinct Name):
	// cat.All() also yields wire-identity variants such as the FlagMove
	// variant of Controls.Throttle, which share a Name but carry a
	// different MessageID, and would otherwise overwrite the canonical
	// builder for that name depending on registration order.
	for i := 0; i < cat.NumVariables(); i++ {
		v, ok := cat.Entry(i)
		if !ok {
			continue
		}
		if v.Access != catalog.Write && v.Access != catalog.ReadWrite {
			continue
		}
		v := v
		p.builders[v.Name] = func(value float64) sdk.Message {
			return messageFor(v, value)
		}
		if v.Flag == catalog.FlagStep {
			p.steps[v.Name] = v
		}
	}
	return p
}

func messageFor(v catalog.Variable, value float64) sdk.Message {
	switch v.Kind {
	case catalog.Scalar:
		return sdk.Message{ID: v.MessageID, Type: sdk.TypeFloat64, F64: value}
	default:
		// Commands carry a single numeric value (spec.md §4.7). A writable
		// non-scalar variable (e.g. a vector) is still sent, as that one
		// value in a Float64 message; no vector payload is built.
		return sdk.Message{ID: v.MessageID, Type: sdk.TypeFloat64, F64: value}
	}
}

// Process parses each JSON-ish string in commands and returns the
// resulting outbound messages, in input order. A string that fails to
// yield a {variable, value} pair, names an unknown or non-writable
// variable, or carries a non-numeric value contributes no message and is
// logged at debug level, per spec.md §4.7.
func (p *Processor) Process(commands []string) []sdk.Message {
	out := make([]sdk.Message, 0, len(commands))
	for _, raw := range commands {
		name, value, ok := parseCommand(raw)
		if !ok {
			blog.Debugf("command: unparsable command %q", dispatch.Sanitize(raw))
			continue
		}
		build, ok := p.builders[name]
		if !ok {
			blog.Debugf("command: unknown or non-writable variable %q", name)
			continue
		}
		if v, isStep := p.steps[name]; isStep && p.rec != nil {
			current := p.rec.Scalar(v.LogicalIndex)
			p.rec.StoreScalar(v.LogicalIndex, dispatch.ApplyStep(current, value))
		}
		out = append(out, build(value))
	}
	return out
}

// parseCommand locates the first {..} span in raw and extracts the
// "variable" string field and the "value" numeric field by bounded scan,
// per spec.md §4.7's Design Note ("a full JSON parser is acceptable but
// not required since the wire format is tightly constrained").
func parseCommand(raw string) (name string, value float64, ok bool) {
	start := -1
	depth := 0
	end := -1
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start >= 0 {
				end = i
				i = len(raw)
			}
		}
	}
	if start < 0 || end < 0 || end <= start {
		return "", 0, false
	}
	body := raw[start : end+1]

	name, foundName := extractStringField(body, "variable")
	valueStr, foundValue := extractNumberField(body, "value")
	if !foundName || !foundValue {
		return "", 0, false
	}
	v, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return "", 0, false
	}
	return name, v, true
}

// extractStringField finds "key":"..." within body and returns the
// unescaped-enough string content (the wire format never needs full JSON
// string escaping for variable names).
func extractStringField(body, key string) (string, bool) {
	idx := findKey(body, key)
	if idx < 0 {
		return "", false
	}
	i := idx
	for i < len(body) && body[i] != '"' {
		i++
	}
	if i >= len(body) {
		return "", false
	}
	i++ // past opening quote
	start := i
	for i < len(body) && body[i] != '"' {
		i++
	}
	if i >= len(body) {
		return "", false
	}
	return body[start:i], true
}

// extractNumberField finds "key":<number> within body and returns the raw
// numeric substring.
func extractNumberField(body, key string) (string, bool) {
	idx := findKey(body, key)
	if idx < 0 {
		return "", false
	}
	i := idx
	for i < len(body) && body[i] != ':' {
		i++
	}
	if i >= len(body) {
		return "", false
	}
	i++
	for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
		i++
	}
	start := i
	for i < len(body) && isNumberByte(body[i]) {
		i++
	}
	if i == start {
		return "", false
	}
	return body[start:i], true
}

func isNumberByte(c byte) bool {
	return c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' || (c >= '0' && c <= '9')
}

// findKey returns the index immediately after the closing quote of "key"
// within body, or -1 if key is not present as a quoted field name.
func findKey(body, key string) int {
	needle := "\"" + key + "\""
	for i := 0; i+len(needle) <= len(body); i++ {
		if body[i:i+len(needle)] == needle {
			return i + len(needle)
		}
	}
	return -1
}

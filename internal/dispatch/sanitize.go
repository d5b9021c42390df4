package dispatch

// Sanitize replaces every byte outside the printable ASCII range
// [0x20, 0x7E] with a space, per spec.md §3 invariant (iv) and §4.3's
// string handler. It is idempotent: Sanitize(Sanitize(s)) == Sanitize(s),
// since every byte it can produce is already in the printable range.
//
// Truncation to a field's fixed capacity and NUL-termination happen in
// internal/sharedrecord.Record.StoreString, which knows the field length;
// this function only owns the character-level policy so it has exactly
// one implementation.
func Sanitize(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c < 0x20 || c > 0x7E {
			b[i] = ' '
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}

// Clamp01 restricts v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ApplyStep computes the new value of a step-flagged variable given its
// current stored value and an incoming delta, per spec.md §4.3: "compute
// new = clamp(current + delta, 0.0, 1.0)".
func ApplyStep(current, delta float64) float64 {
	return Clamp01(current + delta)
}

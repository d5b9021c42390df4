package sdk

// InterfaceVersion is the constant returned by the host ABI's version
// query entry point. Bumping it is a breaking ABI change; it is unrelated
// to the shared-record layout_version (see internal/sharedrecord).
const InterfaceVersion = 2

// HostInstance is an opaque handle the simulator passes to Init. The
// bridge never dereferences it; it exists only to be threaded through to
// whatever vendor SDK calls a real build makes from within Init.
type HostInstance struct {
	// Opaque; populated by the real vendor SDK in a production build.
	Handle uintptr
}

// TickBatch bundles one call's worth of inbound messages, decoded up
// front, with the simulator-reported delta time. Passing already-decoded
// messages (rather than the raw byte stream) keeps internal/dispatch
// independent of the wire format.
type TickBatch struct {
	DeltaTime float64
	Inbound   []Message
}

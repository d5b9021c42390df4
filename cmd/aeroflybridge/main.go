// Command aeroflybridge builds the plugin shared object the simulator
// host loads. It exposes exactly the four entry points spec.md §6 names
// as the host plugin ABI; all behavior lives in internal/orchestrator,
// this file only marshals between C calling convention and Go.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/aeroflybridge/bridge/internal/bridgeconfig"
	"github.com/aeroflybridge/bridge/internal/bridgeerr"
	"github.com/aeroflybridge/bridge/internal/orchestrator"
	"github.com/aeroflybridge/bridge/pkg/blog"
	"github.com/aeroflybridge/bridge/sdk"
)

// interfaceVersion is the constant the host queries before calling Init,
// to refuse loading a plugin built against an incompatible ABI.
const interfaceVersion = sdk.InterfaceVersion

var (
	mu     sync.Mutex
	bridge *orchestrator.Bridge
)

//export AeroflyBridgeInterfaceVersion
func AeroflyBridgeInterfaceVersion() C.int {
	return C.int(interfaceVersion)
}

// recoverBoundary recovers a panic in progress and logs it as a
// bridgeerr.Internal error. The host plugin ABI has no notion of a Go
// panic; one that crossed it would crash the simulator process, so every
// exported entry point defers this first (spec.md §7). Call sites that
// need to reset out-parameters or a return value do so in their own
// deferred closure instead of through this helper.
func recoverBoundary(op string) {
	if r := recover(); r != nil {
		blog.Error("aeroflybridge: recovered:", bridgeerr.New(bridgeerr.Internal, op, fmt.Errorf("%v", r)))
	}
}

//export AeroflyBridgeInit
func AeroflyBridgeInit(hostInstance unsafe.Pointer) (result C.int) {
	defer func() {
		if r := recover(); r != nil {
			blog.Error("aeroflybridge: recovered:", bridgeerr.New(bridgeerr.Internal, "AeroflyBridgeInit", fmt.Errorf("%v", r)))
			result = 0
		}
	}()
	mu.Lock()
	defer mu.Unlock()

	host := sdk.HostInstance{Handle: uintptr(hostInstance)}
	_ = host // threaded through for parity with the vendor SDK; unused by this build.

	cfg := bridgeconfig.Load()
	b := orchestrator.New(cfg)
	if err := b.Initialize(); err != nil {
		blog.Error("aeroflybridge: init failed:", err)
		return 0
	}
	bridge = b
	return 1
}

// AeroflyBridgeUpdate decodes inboundCount messages from inboundBytes,
// ticks the orchestrator, and encodes the resulting outbound messages into
// outboundBytes (capacity outboundCapacity bytes). It writes the outbound
// byte count and message count back through the two pointers.
//
//export AeroflyBridgeUpdate
func AeroflyBridgeUpdate(
	deltaTime C.double,
	inboundBytes *C.uint8_t,
	inboundSize C.int,
	inboundCount C.int,
	outboundBytes *C.uint8_t,
	outboundSize *C.int,
	outboundCount *C.int,
	outboundCapacity C.int,
) (result C.int) {
	defer func() {
		if r := recover(); r != nil {
			blog.Error("aeroflybridge: recovered:", bridgeerr.New(bridgeerr.Internal, "AeroflyBridgeUpdate", fmt.Errorf("%v", r)))
			*outboundSize = 0
			*outboundCount = 0
			result = 0
		}
	}()
	mu.Lock()
	b := bridge
	mu.Unlock()
	if b == nil {
		*outboundSize = 0
		*outboundCount = 0
		return 0
	}

	inbound := decodeInbound(inboundBytes, int(inboundSize), int(inboundCount))
	outbound := b.Tick(inbound, float64(deltaTime))
	n, written := encodeOutbound(outbound, outboundBytes, int(outboundCapacity))
	*outboundSize = C.int(n)
	*outboundCount = C.int(written)
	return 1
}

//export AeroflyBridgeShutdown
func AeroflyBridgeShutdown() {
	defer recoverBoundary("AeroflyBridgeShutdown")
	mu.Lock()
	b := bridge
	bridge = nil
	mu.Unlock()
	if b == nil {
		return
	}
	if err := b.Shutdown(); err != nil {
		blog.Error("aeroflybridge: shutdown:", err)
	}
}

func decodeInbound(bytesPtr *C.uint8_t, size, count int) []sdk.Message {
	if bytesPtr == nil || size <= 0 || count <= 0 {
		return nil
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(bytesPtr)), size)
	out := make([]sdk.Message, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		m, err := sdk.ParseFrom(buf, &pos)
		if err != nil {
			blog.Warnf("aeroflybridge: inbound message %d/%d: %v", i, count, err)
			break
		}
		out = append(out, m)
	}
	return out
}

func encodeOutbound(messages []sdk.Message, bytesPtr *C.uint8_t, capacity int) (int, int) {
	if bytesPtr == nil || capacity <= 0 || len(messages) == 0 {
		return 0, 0
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(bytesPtr)), capacity)
	buf := make([]byte, 0, capacity)
	count := 0
	for _, m := range messages {
		next := sdk.AppendTo(buf, m, &count)
		if len(next) > capacity {
			count-- // AppendTo counted the message that did not fit
			blog.Warnf("aeroflybridge: outbound buffer full at %d/%d messages", count, len(messages))
			break
		}
		buf = next
	}
	copy(dst, buf)
	return len(buf), count
}

func main() {}

// Package orchestrator implements the Bridge Orchestrator (spec.md §4.8):
// the component the host plugin entry points (cmd/aeroflybridge) and the
// CLI harness (cmd/bridgectl) both drive. It owns every other component's
// lifecycle and is the only place that sequences begin_tick/dispatch/
// end_tick/broadcast/drain-commands, per spec.md §4.8 and §5.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	gocron "github.com/go-co-op/gocron/v2"
	"github.com/google/gops/agent"
	"github.com/google/uuid"

	"github.com/aeroflybridge/bridge/internal/bridgeconfig"
	"github.com/aeroflybridge/bridge/internal/bridgeerr"
	"github.com/aeroflybridge/bridge/internal/catalog"
	"github.com/aeroflybridge/bridge/internal/command"
	"github.com/aeroflybridge/bridge/internal/diagnostics"
	"github.com/aeroflybridge/bridge/internal/dispatch"
	"github.com/aeroflybridge/bridge/internal/jsonbuilder"
	"github.com/aeroflybridge/bridge/internal/metrics"
	"github.com/aeroflybridge/bridge/internal/sharedrecord"
	"github.com/aeroflybridge/bridge/internal/transport/tcp"
	"github.com/aeroflybridge/bridge/internal/transport/ws"
	"github.com/aeroflybridge/bridge/pkg/blog"
	"github.com/aeroflybridge/bridge/sdk"
)

const sharedRegionName = "AeroflyBridgeData"
const descriptorFileName = "AeroflyBridge_offsets.json"
const housekeepingID = "throughput-summary"

// Bridge is the orchestrator. Exactly one instance exists per process;
// cmd/aeroflybridge keeps one behind its plugin entry points, and
// cmd/bridgectl keeps one for its "serve" subcommand.
type Bridge struct {
	cfg bridgeconfig.Config

	cat    *catalog.Catalog
	rec    *sharedrecord.Record
	disp   *dispatch.Dispatcher
	jb     *jsonbuilder.Builder
	cmdp   *command.Processor
	tcpD   *tcp.DataServer
	tcpC   *tcp.CommandServer
	wsSrv  *ws.Server
	diag      *diagnostics.Server
	scheduler gocron.Scheduler

	instanceID string

	mu        sync.Mutex
	cmdQueue  []string
	running   bool
	startedAt time.Time
	ticks     uint64
}

// New constructs a Bridge with the given configuration. It does not touch
// any OS resource; call Initialize to do that.
func New(cfg bridgeconfig.Config) *Bridge {
	return &Bridge{cfg: cfg, instanceID: uuid.NewString()}
}

// Initialize implements spec.md §4.8's initialize(): builds the catalog,
// opens the shared record, starts TCP unconditionally and WebSocket if
// enabled, writes the offsets descriptor, and wires the supplemental
// diagnostics/gops/housekeeping stack. Re-entering while already running
// first performs a clean Shutdown, per the spec's State and Failures
// section.
func (b *Bridge) Initialize() error {
	b.mu.Lock()
	wasRunning := b.running
	b.mu.Unlock()
	if wasRunning {
		if err := b.Shutdown(); err != nil {
			return err
		}
	}

	blog.SetLevel(b.cfg.LogLevel)

	b.cat = catalog.Build()
	layout := sharedrecord.BuildLayout(b.cat)

	rec, err := sharedrecord.OpenOrCreate(sharedRegionName, layout)
	if err != nil {
		return bridgeerr.New(bridgeerr.ResourceUnavailable, "orchestrator.Initialize", err)
	}
	b.rec = rec
	b.disp = dispatch.New(b.cat, b.rec)
	b.cmdp = command.New(b.cat, b.rec)

	interval := time.Duration(b.cfg.BroadcastMS) * time.Millisecond
	b.jb = jsonbuilder.New(b.cat, b.rec, 1000.0/float64(b.cfg.BroadcastMS))

	if descPath, err := b.descriptorPath(); err != nil {
		blog.Warnf("orchestrator: could not determine descriptor path: %v", err)
	} else if err := catalog.WriteDescriptorFile(descPath, b.cat, layout.DescriptorLayoutInfo()); err != nil {
		blog.Warnf("orchestrator: writing offsets descriptor: %v", err)
	}

	tcpDataAddr := fmt.Sprintf(":%d", b.cfg.TCPDataPort)
	tcpD, err := tcp.NewDataServer(tcpDataAddr, interval)
	if err != nil {
		blog.Error("orchestrator: TCP data port failed to start:", err)
	}
	b.tcpD = tcpD

	tcpCmdAddr := fmt.Sprintf(":%d", b.cfg.TCPCmdPort)
	tcpC, err := tcp.NewCommandServer(tcpCmdAddr, b.enqueueCommand)
	if err != nil {
		blog.Error("orchestrator: TCP command port failed to start:", err)
	}
	b.tcpC = tcpC

	if b.cfg.WSEnable {
		wsAddr := fmt.Sprintf(":%d", b.cfg.WSPort)
		wsSrv, err := ws.New(wsAddr, interval, func(payload []byte) { b.enqueueCommand(string(payload)) })
		if err != nil {
			blog.Warn("orchestrator: WebSocket transport failed to start:", err)
		}
		b.wsSrv = wsSrv
	}

	if b.cfg.DiagEnable {
		diagAddr := fmt.Sprintf(":%d", b.cfg.DiagPort)
		b.diag = diagnostics.Start(diagAddr, b.health)
	}

	if b.cfg.GopsEnable {
		if err := agent.Listen(agent.Options{}); err != nil {
			blog.Warn("orchestrator: gops agent failed to start:", err)
		}
	}

	b.startHousekeeping()

	b.mu.Lock()
	b.running = true
	b.startedAt = time.Now()
	b.ticks = 0
	b.mu.Unlock()

	blog.Infof("orchestrator: initialized instance=%s tcp_data=%d tcp_cmd=%d ws=%v", b.instanceID, b.cfg.TCPDataPort, b.cfg.TCPCmdPort, b.cfg.WSEnable)
	return nil
}

func (b *Bridge) descriptorPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return descriptorFileName, nil
	}
	return filepath.Join(filepath.Dir(exe), descriptorFileName), nil
}

func (b *Bridge) enqueueCommand(raw string) {
	b.mu.Lock()
	b.cmdQueue = append(b.cmdQueue, raw)
	b.mu.Unlock()
}

func (b *Bridge) drainCommands() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.cmdQueue) == 0 {
		return nil
	}
	out := b.cmdQueue
	b.cmdQueue = nil
	return out
}

// startHousekeeping schedules the periodic throughput-summary job
// (SPEC_FULL.md Domain Stack: gocron) that logs the tick count, tick rate,
// and TCP/WebSocket client counts every 30 seconds. A scheduler construction failure is
// logged and otherwise harmless: housekeeping is observability, not a
// correctness requirement.
func (b *Bridge) startHousekeeping() {
	s, err := gocron.NewScheduler()
	if err != nil {
		blog.Warnf("orchestrator: housekeeping scheduler unavailable: %v", err)
		return
	}
	_, err = s.NewJob(
		gocron.DurationJob(30*time.Second),
		gocron.NewTask(b.logThroughputSummary),
		gocron.WithName(housekeepingID),
	)
	if err != nil {
		blog.Warnf("orchestrator: housekeeping job registration failed: %v", err)
		return
	}
	s.Start()
	b.scheduler = s
}

func (b *Bridge) logThroughputSummary() {
	b.mu.Lock()
	ticks := b.ticks
	elapsed := time.Since(b.startedAt).Seconds()
	b.mu.Unlock()

	tcpClients, wsClients := 0, 0
	if b.tcpD != nil {
		tcpClients = b.tcpD.ClientCount()
	}
	if b.wsSrv != nil {
		wsClients = b.wsSrv.ClientCount()
	}
	rate := 0.0
	if elapsed > 0 {
		rate = float64(ticks) / elapsed
	}
	blog.Infof("housekeeping: ticks=%d ticks_per_sec=%.1f tcp_clients=%d ws_clients=%d", ticks, rate, tcpClients, wsClients)
}

// Tick implements spec.md §4.8's tick(): dispatch inbound, publish the
// record, broadcast to both transports, drain and process commands, and
// return the resulting outbound messages.
func (b *Bridge) Tick(inbound []sdk.Message, deltaTime float64) []sdk.Message {
	_ = deltaTime // reserved for future rate-dependent handlers; unused today.

	b.rec.BeginTick()
	b.disp.Apply(inbound)
	b.rec.EndTick()

	doc := b.jb.Build()
	if b.tcpD != nil {
		before := b.tcpD.ClientCount()
		b.tcpD.Broadcast(doc)
		metrics.BroadcastsSent.WithLabelValues("tcp").Inc()
		metrics.ClientsConnected.WithLabelValues("tcp").Set(float64(before))
	}
	if b.wsSrv != nil {
		before := b.wsSrv.ClientCount()
		b.wsSrv.Broadcast(doc)
		metrics.BroadcastsSent.WithLabelValues("ws").Inc()
		metrics.ClientsConnected.WithLabelValues("ws").Set(float64(before))
	}

	commands := b.drainCommands()
	outbound := b.cmdp.Process(commands)
	metrics.CommandsProcessed.Add(float64(len(outbound)))
	metrics.CommandsRejected.Add(float64(len(commands) - len(outbound)))

	metrics.TicksProcessed.Inc()
	b.mu.Lock()
	b.ticks++
	b.mu.Unlock()

	return outbound
}

func (b *Bridge) health() (bool, string) {
	b.mu.Lock()
	running := b.running
	ticks := b.ticks
	b.mu.Unlock()
	if !running {
		return false, "not running"
	}
	return true, fmt.Sprintf("running ticks=%d", ticks)
}

// Shutdown implements spec.md §4.8's shutdown(): stops WebSocket then TCP,
// unmaps the record, and releases all handles. Safe to call more than
// once.
func (b *Bridge) Shutdown() error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	b.mu.Unlock()

	if b.scheduler != nil {
		_ = b.scheduler.Shutdown()
		b.scheduler = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if b.diag != nil {
		_ = b.diag.Shutdown(ctx)
		b.diag = nil
	}

	if b.wsSrv != nil {
		_ = b.wsSrv.Close()
		b.wsSrv = nil
	}
	if b.tcpC != nil {
		_ = b.tcpC.Close()
		b.tcpC = nil
	}
	if b.tcpD != nil {
		_ = b.tcpD.Close()
		b.tcpD = nil
	}

	var err error
	if b.rec != nil {
		err = b.rec.Close()
		b.rec = nil
	}
	blog.Infof("orchestrator: shutdown instance=%s ticks=%d", b.instanceID, b.ticks)
	return err
}

// Catalog exposes the built catalog, e.g. for cmd/bridgectl's "descriptor"
// subcommand which needs one without a running transport stack.
func (b *Bridge) Catalog() *catalog.Catalog { return b.cat }

// Record exposes the shared record for tooling and tests.
func (b *Bridge) Record() *sharedrecord.Record { return b.rec }

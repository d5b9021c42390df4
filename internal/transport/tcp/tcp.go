// Package tcp implements the TCP Transport (spec.md §4.5): a broadcast
// data port and a one-shot command port, both bound at startup with a
// 1-second accept-readiness timeout so shutdown stays responsive.
package tcp

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aeroflybridge/bridge/internal/bridgeerr"
	"github.com/aeroflybridge/bridge/pkg/blog"
)

const acceptPollInterval = time.Second

// sendBufferSize bounds how many broadcast payloads queue up for a single
// slow client before Broadcast starts dropping for it instead of blocking
// the caller (spec.md §5: the sim thread never blocks on network I/O).
const sendBufferSize = 32

// dataWriteDeadline bounds a single client write inside the per-client
// writer goroutine.
const dataWriteDeadline = 200 * time.Millisecond

// dataClient is one connected broadcast client. Writes happen only on its
// own writePump goroutine, fed through send; Broadcast never touches the
// connection directly.
type dataClient struct {
	conn net.Conn
	send chan []byte
	done chan struct{}
}

// DataServer accepts broadcast clients and fans out JSON documents built
// by the caller, throttled to at most one send per configured interval.
//
// Broadcast only ever snapshots the client set under s.mu and hands each
// payload to a per-client buffered channel; the actual socket write
// happens later, off the caller's goroutine, on that client's writePump.
// Grounded on the snapshot-then-dispatch / per-client writer pattern in
// the retrieved websocket hub example (internal-websocket-hub.go).
type DataServer struct {
	ln       net.Listener
	limiter  *rate.Limiter
	mu       sync.Mutex
	clients  map[net.Conn]*dataClient
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewDataServer binds addr (host:port) and starts accepting clients in the
// background. interval is clamped to the spec's 5ms floor before
// building the broadcast rate limiter.
func NewDataServer(addr string, interval time.Duration) (*DataServer, error) {
	if interval < 5*time.Millisecond {
		interval = 5 * time.Millisecond
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.ResourceUnavailable, "tcp.NewDataServer", err)
	}
	s := &DataServer{
		ln:      ln,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		clients: make(map[net.Conn]*dataClient),
		stopCh:  make(chan struct{}),
	}
	go s.acceptLoop()
	return s, nil
}

func (s *DataServer) acceptLoop() {
	for {
		if tl, ok := s.ln.(*net.TCPListener); ok {
			_ = tl.SetDeadline(time.Now().Add(acceptPollInterval))
		}
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			blog.Warnf("tcp: data accept: %v", err)
			continue
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
			_ = tc.SetKeepAlive(true)
			_ = tc.SetKeepAlivePeriod(30 * time.Second)
		}
		dc := &dataClient{conn: conn, send: make(chan []byte, sendBufferSize), done: make(chan struct{})}
		s.mu.Lock()
		s.clients[conn] = dc
		s.mu.Unlock()
		go s.writePump(dc)
		blog.Debugf("tcp: data client connected remote=%s", conn.RemoteAddr())
	}
}

// writePump is the only goroutine that ever writes to dc.conn. It drains
// dc.send until the channel is closed (server shutdown) or a write fails,
// in which case it evicts the client itself.
func (s *DataServer) writePump(dc *dataClient) {
	for {
		select {
		case payload, ok := <-dc.send:
			if !ok {
				return
			}
			_ = dc.conn.SetWriteDeadline(time.Now().Add(dataWriteDeadline))
			if _, err := dc.conn.Write(payload); err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					// Would-block/transient: keep the client, try again next tick.
					continue
				}
				s.evict(dc, err)
				return
			}
		case <-dc.done:
			return
		}
	}
}

// evict removes dc from the client set and closes its connection. Safe to
// call from writePump or from Close.
func (s *DataServer) evict(dc *dataClient, err error) {
	s.mu.Lock()
	delete(s.clients, dc.conn)
	s.mu.Unlock()
	_ = dc.conn.Close()
	if err != nil {
		blog.Debugf("tcp: data client evicted remote=%s: %v", dc.conn.RemoteAddr(), err)
	}
}

// snapshotClients copies the current client set under s.mu and returns it,
// so Broadcast never holds the lock while touching a socket.
func (s *DataServer) snapshotClients() []*dataClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*dataClient, 0, len(s.clients))
	for _, dc := range s.clients {
		out = append(out, dc)
	}
	return out
}

// Broadcast sends payload to every connected client if the configured
// interval has elapsed since the last broadcast; otherwise it is a no-op.
// The send itself happens on each client's own writePump goroutine: this
// call only snapshots the client set and enqueues, so it never blocks on
// network I/O (spec.md §5). A client whose send buffer is full is too
// slow to keep up and the payload is dropped for it rather than blocking
// everyone else; a client whose write actually fails is evicted without
// affecting the others (spec.md §4.5).
func (s *DataServer) Broadcast(payload []byte) {
	if !s.limiter.Allow() {
		return
	}
	for _, dc := range s.snapshotClients() {
		select {
		case dc.send <- payload:
		default:
			blog.Debugf("tcp: data client send buffer full remote=%s, dropping broadcast", dc.conn.RemoteAddr())
		}
	}
}

// ClientCount reports the number of currently connected broadcast clients.
func (s *DataServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close stops accepting new clients and closes all connections.
func (s *DataServer) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	err := s.ln.Close()
	s.mu.Lock()
	clients := make([]*dataClient, 0, len(s.clients))
	for c, dc := range s.clients {
		clients = append(clients, dc)
		delete(s.clients, c)
	}
	s.mu.Unlock()
	for _, dc := range clients {
		close(dc.done)
		_ = dc.conn.Close()
	}
	return err
}

const maxCommandBytes = 4096

// CommandServer accepts command connections, serving each on its own
// goroutine: it reads a single JSON object from it and hands the raw text
// to handle. The connection is
// closed after one read per spec.md §4.5/§6.
type CommandServer struct {
	ln       net.Listener
	handle   func(raw string)
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewCommandServer binds addr and starts accepting commands in the
// background, forwarding each connection's body to handle.
func NewCommandServer(addr string, handle func(raw string)) (*CommandServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.ResourceUnavailable, "tcp.NewCommandServer", err)
	}
	s := &CommandServer{ln: ln, handle: handle, stopCh: make(chan struct{})}
	go s.acceptLoop()
	return s, nil
}

func (s *CommandServer) acceptLoop() {
	for {
		if tl, ok := s.ln.(*net.TCPListener); ok {
			_ = tl.SetDeadline(time.Now().Add(acceptPollInterval))
		}
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			blog.Warnf("tcp: command accept: %v", err)
			continue
		}
		go s.serveOne(conn)
	}
}

func (s *CommandServer) serveOne(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 0, maxCommandBytes)
	chunk := make([]byte, 512)
	for len(buf) < maxCommandBytes {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	if len(buf) == 0 {
		return
	}
	s.handle(string(buf))
}

// Close stops accepting new command connections.
func (s *CommandServer) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	return s.ln.Close()
}

// Addr reports the bound listener address, mostly useful for tests that
// bind to ":0".
func (s *DataServer) Addr() string { return s.ln.Addr().String() }

// Addr reports the bound listener address.
func (s *CommandServer) Addr() string { return s.ln.Addr().String() }

// Package ws implements the self-contained WebSocket server (spec.md
// §4.6): a hand-rolled RFC 6455 implementation bound directly to a TCP
// listener (no external websocket library), sharing the TCP transport's
// broadcast throttling and JSON payload.
//
// Grounded on the backend-ws.go handshake/frame approach from the
// retrieved flight-tracker example, trimmed to the subset the bridge
// needs: no permessage-deflate, no fragmentation, text frames only.
package ws

import (
	"bufio"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aeroflybridge/bridge/internal/bridgeerr"
	"github.com/aeroflybridge/bridge/pkg/blog"
)

const wsGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
const acceptPollInterval = time.Second
const headerReadDeadline = 2 * time.Second
const writeDeadline = 200 * time.Millisecond

// sendBufferSize bounds how many broadcast payloads queue up for a single
// slow client before Broadcast starts dropping for it instead of blocking
// the caller (spec.md §5: the sim thread never blocks on network I/O).
const sendBufferSize = 32

// AcceptKey computes the Sec-WebSocket-Accept value for a given
// Sec-WebSocket-Key, per RFC 6455 §1.3.
func AcceptKey(key string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, key+wsGUID)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// conn wraps one accepted WebSocket connection. Text frame writes only
// ever happen on its own writePump goroutine, fed through send; Broadcast
// never touches the socket directly (spec.md §5).
type conn struct {
	c        net.Conn
	rw       *bufio.ReadWriter
	mu       sync.Mutex
	send     chan []byte
	done     chan struct{}
	doneOnce sync.Once
}

// closeDone signals writePump to stop. Safe to call more than once, and
// from either the read side (serve) or the write side (writePump/evict).
func (w *conn) closeDone() {
	w.doneOnce.Do(func() { close(w.done) })
}

func (w *conn) writeText(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(writeDeadline))
	header := []byte{0x81} // FIN=1, opcode=1 (text)
	l := len(payload)
	switch {
	case l <= 125:
		header = append(header, byte(l))
	case l < 65536:
		header = append(header, 126, byte(l>>8), byte(l))
	default:
		header = append(header, 127, 0, 0, 0, 0, byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
	}
	if _, err := w.rw.Write(header); err != nil {
		return err
	}
	if _, err := w.rw.Write(payload); err != nil {
		return err
	}
	return w.rw.Flush()
}

// writePump is the only goroutine that ever writes text frames to w. It
// drains w.send until the channel is closed (server shutdown) or a write
// fails, in which case it evicts itself from srv.
func (w *conn) writePump(srv *Server) {
	for {
		select {
		case payload, ok := <-w.send:
			if !ok {
				return
			}
			if err := w.writeText(payload); err != nil {
				srv.evict(w, err)
				return
			}
		case <-w.done:
			return
		}
	}
}

// readFrame reads one unfragmented frame and returns its opcode and
// unmasked payload. Client frames must be masked per RFC 6455 §5.1; an
// unmasked client frame is a protocol error.
func (w *conn) readFrame() (byte, []byte, error) {
	h := make([]byte, 2)
	if _, err := io.ReadFull(w.rw, h); err != nil {
		return 0, nil, err
	}
	fin := h[0]&0x80 != 0
	opcode := h[0] & 0x0F
	masked := h[1]&0x80 != 0
	if !masked {
		return 0, nil, errors.New("ws: client frame not masked")
	}
	length := int(h[1] & 0x7F)
	switch length {
	case 126:
		b := make([]byte, 2)
		if _, err := io.ReadFull(w.rw, b); err != nil {
			return 0, nil, err
		}
		length = int(b[0])<<8 | int(b[1])
	case 127:
		b := make([]byte, 8)
		if _, err := io.ReadFull(w.rw, b); err != nil {
			return 0, nil, err
		}
		length = int(b[4])<<24 | int(b[5])<<16 | int(b[6])<<8 | int(b[7])
	}
	key := make([]byte, 4)
	if _, err := io.ReadFull(w.rw, key); err != nil {
		return 0, nil, err
	}
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(w.rw, payload); err != nil {
			return 0, nil, err
		}
		for i := range payload {
			payload[i] ^= key[i%4]
		}
	}
	if !fin {
		return 0, nil, errors.New("ws: fragmented frames not supported")
	}
	return opcode, payload, nil
}

func (w *conn) writePong(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(writeDeadline))
	if len(payload) > 125 {
		payload = payload[:125]
	}
	if _, err := w.rw.Write([]byte{0x8A, byte(len(payload))}); err != nil {
		return err
	}
	if _, err := w.rw.Write(payload); err != nil {
		return err
	}
	return w.rw.Flush()
}

func (w *conn) close() error { return w.c.Close() }

// handshake parses the HTTP/1.1 upgrade request line-by-line off raw and
// writes the 101 response. It implements only what spec.md §4.6 needs: no
// general HTTP request routing, just the upgrade handshake.
func handshake(raw net.Conn) (*conn, error) {
	_ = raw.SetReadDeadline(time.Now().Add(headerReadDeadline))
	rw := bufio.NewReadWriter(bufio.NewReader(raw), bufio.NewWriter(raw))

	requestLine, err := rw.ReadString('\n')
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.ProtocolError, "ws.handshake", err)
	}
	if !strings.HasPrefix(requestLine, "GET ") {
		return nil, bridgeerr.New(bridgeerr.ProtocolError, "ws.handshake", fmt.Errorf("unexpected request line %q", requestLine))
	}

	tp := textproto.NewReader(rw.Reader)
	header, err := tp.ReadMIMEHeader()
	if err != nil && err != io.EOF {
		return nil, bridgeerr.New(bridgeerr.ProtocolError, "ws.handshake", err)
	}

	if !strings.EqualFold(header.Get("Upgrade"), "websocket") {
		return nil, bridgeerr.New(bridgeerr.ProtocolError, "ws.handshake", errors.New("missing Upgrade: websocket"))
	}
	if !headerContainsToken(header.Get("Connection"), "upgrade") {
		return nil, bridgeerr.New(bridgeerr.ProtocolError, "ws.handshake", errors.New("missing Connection: Upgrade"))
	}
	key := header.Get("Sec-Websocket-Key")
	if key == "" {
		return nil, bridgeerr.New(bridgeerr.ProtocolError, "ws.handshake", errors.New("missing Sec-WebSocket-Key"))
	}

	accept := AcceptKey(key)
	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + accept + "\r\n\r\n"
	if _, err := rw.WriteString(resp); err != nil {
		return nil, err
	}
	if err := rw.Flush(); err != nil {
		return nil, err
	}
	_ = raw.SetReadDeadline(time.Time{})
	return &conn{c: raw, rw: rw, send: make(chan []byte, sendBufferSize), done: make(chan struct{})}, nil
}

func headerContainsToken(headerVal, token string) bool {
	token = strings.ToLower(token)
	for _, v := range strings.Split(headerVal, ",") {
		if strings.EqualFold(strings.TrimSpace(v), token) {
			return true
		}
	}
	return false
}

// Server accepts WebSocket upgrades on a TCP listener and broadcasts JSON
// text frames to every connected client, throttled identically to the TCP
// data port.
type Server struct {
	ln       net.Listener
	limiter  *rate.Limiter
	onText   func(payload []byte)
	mu       sync.Mutex
	clients  map[*conn]struct{}
	stopOnce sync.Once
	stopCh   chan struct{}
}

// New binds addr and starts accepting WebSocket clients. onText is invoked
// for every text frame received from any client (the command intake
// queue); it must not block.
func New(addr string, interval time.Duration, onText func(payload []byte)) (*Server, error) {
	if interval < 5*time.Millisecond {
		interval = 5 * time.Millisecond
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.ResourceUnavailable, "ws.New", err)
	}
	s := &Server{
		ln:      ln,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		onText:  onText,
		clients: make(map[*conn]struct{}),
		stopCh:  make(chan struct{}),
	}
	go s.acceptLoop()
	return s, nil
}

func (s *Server) acceptLoop() {
	for {
		if tl, ok := s.ln.(*net.TCPListener); ok {
			_ = tl.SetDeadline(time.Now().Add(acceptPollInterval))
		}
		raw, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			blog.Warnf("ws: accept: %v", err)
			continue
		}
		go s.serve(raw)
	}
}

func (s *Server) serve(raw net.Conn) {
	c, err := handshake(raw)
	if err != nil {
		blog.Debugf("ws: handshake failed remote=%s: %v", raw.RemoteAddr(), err)
		_ = raw.Close()
		return
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	blog.Debugf("ws: client connected remote=%s", raw.RemoteAddr())
	go c.writePump(s)

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.closeDone()
		_ = c.close()
	}()

	for {
		opcode, payload, err := c.readFrame()
		if err != nil {
			return
		}
		switch opcode {
		case 0x1: // text
			if s.onText != nil {
				s.onText(payload)
			}
		case 0x9: // ping
			_ = c.writePong(payload)
		case 0xA: // pong
		case 0x8: // close
			return
		}
	}
}

// snapshotClients copies the current client set under s.mu and returns it,
// so Broadcast never holds the lock while touching a socket.
func (s *Server) snapshotClients() []*conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*conn, 0, len(s.clients))
	for c := range s.clients {
		out = append(out, c)
	}
	return out
}

// evict removes c from the client set and closes its connection. Safe to
// call from a client's writePump.
func (s *Server) evict(c *conn, err error) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	_ = c.close()
	if err != nil {
		blog.Debugf("ws: client evicted remote=%s: %v", c.c.RemoteAddr(), err)
	}
}

// Broadcast sends payload as a text frame to every connected client,
// throttled to at most one send per configured interval. The write itself
// happens on each client's own writePump goroutine: this call only
// snapshots the client set and enqueues, so it never blocks on network
// I/O (spec.md §5). A client whose send buffer is full is too slow to
// keep up and the payload is dropped for it; a client whose write
// actually fails is evicted without affecting the others.
func (s *Server) Broadcast(payload []byte) {
	if !s.limiter.Allow() {
		return
	}
	for _, c := range s.snapshotClients() {
		select {
		case c.send <- payload:
		default:
			blog.Debugf("ws: client send buffer full remote=%s, dropping broadcast", c.c.RemoteAddr())
		}
	}
}

// ClientCount reports the number of currently connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Addr reports the bound listener address.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Close stops accepting new clients and closes all connections.
func (s *Server) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	err := s.ln.Close()
	clients := s.snapshotClients()
	s.mu.Lock()
	for _, c := range clients {
		delete(s.clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		c.closeDone()
		_ = c.close()
	}
	return err
}

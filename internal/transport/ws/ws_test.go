package ws

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptKeyMatchesCanonicalRFCExample(t *testing.T) {
	// spec.md §8 S4: the RFC 6455 example key/accept pair.
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", AcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func dialAndUpgrade(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	req := "GET / HTTP/1.1\r\n" +
		"Host: localhost\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"
	_, err = conn.Write([]byte(req))
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	r := bufio.NewReader(conn)
	status, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, status, "101")

	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == "\r\n" {
			break
		}
	}
	return conn
}

func TestHandshakeUpgradesAndBroadcasts(t *testing.T) {
	s, err := New("127.0.0.1:0", 5*time.Millisecond, nil)
	require.NoError(t, err)
	defer s.Close()

	conn := dialAndUpgrade(t, s.Addr())
	defer conn.Close()

	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	s.Broadcast([]byte(`{"a":1}`))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	header := make([]byte, 2)
	_, err = conn.Read(header)
	require.NoError(t, err)
	assert.Equal(t, byte(0x81), header[0]) // FIN + text opcode
	length := int(header[1] & 0x7F)
	payload := make([]byte, length)
	_, err = conn.Read(payload)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(payload))
}

func maskFrame(payload []byte) []byte {
	key := []byte{0x12, 0x34, 0x56, 0x78}
	out := []byte{0x81, 0x80 | byte(len(payload))}
	out = append(out, key...)
	for i, b := range payload {
		out = append(out, b^key[i%4])
	}
	return out
}

func TestServerReceivesMaskedClientTextFrame(t *testing.T) {
	received := make(chan string, 1)
	s, err := New("127.0.0.1:0", 5*time.Millisecond, func(payload []byte) {
		received <- string(payload)
	})
	require.NoError(t, err)
	defer s.Close()

	conn := dialAndUpgrade(t, s.Addr())
	defer conn.Close()

	_, err = conn.Write(maskFrame([]byte(`{"variable":"Controls.Throttle","value":1}`)))
	require.NoError(t, err)

	select {
	case payload := <-received:
		assert.True(t, strings.Contains(payload, "Controls.Throttle"))
	case <-time.After(time.Second):
		t.Fatal("server never delivered the client text frame")
	}
}

func TestUnmaskedClientFrameIsRejected(t *testing.T) {
	s, err := New("127.0.0.1:0", 5*time.Millisecond, nil)
	require.NoError(t, err)
	defer s.Close()

	conn := dialAndUpgrade(t, s.Addr())
	defer conn.Close()

	unmasked := []byte{0x81, 0x05, 'h', 'e', 'l', 'l', 'o'}
	_, err = conn.Write(unmasked)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

package orchestrator

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeroflybridge/bridge/internal/bridgeconfig"
	"github.com/aeroflybridge/bridge/sdk"
)

func testConfig() bridgeconfig.Config {
	return bridgeconfig.Config{
		WSEnable:    true,
		WSPort:      0,
		BroadcastMS: 5,
		TCPDataPort: 0,
		TCPCmdPort:  0,
		LogLevel:    "critical",
		DiagEnable:  false,
		DiagPort:    0,
	}
}

func TestInitializeTickShutdownLifecycle(t *testing.T) {
	b := New(testConfig())
	require.NoError(t, b.Initialize())
	defer b.Shutdown()

	altitude, ok := b.Catalog().EntryByName("Aircraft.Altitude")
	require.True(t, ok)

	out := b.Tick([]sdk.Message{{ID: altitude.MessageID, Type: sdk.TypeFloat64, F64: 1524.0}}, 0.016)
	assert.Empty(t, out, "no pending commands yields no outbound messages")
	assert.Equal(t, 1524.0, b.Record().Scalar(altitude.LogicalIndex))
}

func TestTickBroadcastsAltitudeOverTCP(t *testing.T) {
	b := New(testConfig())
	require.NoError(t, b.Initialize())
	defer b.Shutdown()

	conn, err := net.Dial("tcp", b.tcpD.Addr())
	require.NoError(t, err)
	defer conn.Close()

	altitude, ok := b.Catalog().EntryByName("Aircraft.Altitude")
	require.True(t, ok)

	require.Eventually(t, func() bool { return b.tcpD.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	b.Tick([]sdk.Message{{ID: altitude.MessageID, Type: sdk.TypeFloat64, F64: 1524.0}}, 0.016)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &doc))
	vars := doc["variables"].(map[string]any)
	assert.Equal(t, 1524.0, vars["Aircraft.Altitude"])
}

func TestShutdownIsIdempotent(t *testing.T) {
	b := New(testConfig())
	require.NoError(t, b.Initialize())
	require.NoError(t, b.Shutdown())
	assert.NoError(t, b.Shutdown())
}

func TestReinitializeWhileRunningShutsDownFirst(t *testing.T) {
	b := New(testConfig())
	require.NoError(t, b.Initialize())
	defer b.Shutdown()
	require.NoError(t, b.Initialize())
}

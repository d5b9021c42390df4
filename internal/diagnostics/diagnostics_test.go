package diagnostics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthzReflectsHealthFunc(t *testing.T) {
	healthy := true
	s := Start("127.0.0.1:0", func() (bool, string) {
		if healthy {
			return true, "ok"
		}
		return false, "degraded"
	})
	require.NotNil(t, s)
	defer s.Shutdown(context.Background())

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ok")

	healthy = false
	resp, err = http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s := Start("127.0.0.1:0", func() (bool, string) { return true, "ok" })
	require.NotNil(t, s)
	defer s.Shutdown(context.Background())

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "# HELP")
}

func TestBindFailureIsNonFatal(t *testing.T) {
	blocker := Start("127.0.0.1:0", func() (bool, string) { return true, "ok" })
	require.NotNil(t, blocker)
	defer blocker.Shutdown(context.Background())

	time.Sleep(20 * time.Millisecond)
	again := Start(blocker.Addr(), func() (bool, string) { return true, "ok" })
	assert.Nil(t, again)
}

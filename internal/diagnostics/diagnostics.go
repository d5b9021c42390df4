// Package diagnostics exposes the bridge's operational HTTP surface:
// /healthz and /metrics, bound to BRIDGE_DIAG_PORT. It is deliberately
// small and separate from the data-plane transports (internal/transport)
// since it carries no telemetry itself -- only operability signals, in
// the same spirit as the teacher's own gorilla/mux + gorilla/handlers
// routing for its REST API.
package diagnostics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aeroflybridge/bridge/pkg/blog"
)

// HealthFunc reports whether the bridge is currently healthy and a short
// status string to embed in the response body.
type HealthFunc func() (healthy bool, status string)

// Server is the diagnostics HTTP listener. A bind failure is never fatal:
// Start logs the failure and returns nil so the caller (the orchestrator)
// continues with the rest of the bridge running.
type Server struct {
	srv  *http.Server
	addr string
}

// Start binds addr and begins serving in the background. health is called
// on every /healthz request.
func Start(addr string, health HealthFunc) *Server {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ok, status := health()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		fmt.Fprintln(w, status)
	})
	r.Handle("/metrics", promhttp.Handler())

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handlers.CombinedLoggingHandler(blog.InfoWriter, r),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		blog.Warnf("diagnostics: bind %s failed, continuing without diagnostics: %v", addr, err)
		return nil
	}

	s := &Server{srv: httpSrv, addr: ln.Addr().String()}
	go func() {
		if err := httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			blog.Warnf("diagnostics: serve: %v", err)
		}
	}()
	return s
}

// Addr reports the bound listener address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Shutdown gracefully stops the diagnostics server, if it was started.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

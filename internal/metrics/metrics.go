// Package metrics defines the bridge's Prometheus instrumentation,
// exposed over internal/diagnostics's /metrics endpoint. This is pure
// SPEC_FULL.md enrichment: spec.md names no metrics of its own, but the
// teacher instruments every subsystem with client_golang, and the pack's
// prometheus/client_golang dependency deserves a home (SPEC_FULL.md
// Domain Stack).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aeroflybridge",
		Name:      "ticks_processed_total",
		Help:      "Number of simulation ticks processed by the orchestrator.",
	})

	MessagesDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aeroflybridge",
		Name:      "messages_dispatched_total",
		Help:      "Inbound messages with a registered handler, by the message's declared data type.",
	}, []string{"kind"})

	// BroadcastsSent counts Broadcast calls, one per tick per running
	// transport, including calls the transport's rate limiter then skips.
	BroadcastsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aeroflybridge",
		Name:      "broadcasts_sent_total",
		Help:      "Broadcast calls made by the orchestrator, by transport, including rate-limited ones.",
	}, []string{"transport"})

	// BroadcastsThrottled is registered but nothing in this module
	// increments it, so it always reads zero.
	BroadcastsThrottled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aeroflybridge",
		Name:      "broadcasts_throttled_total",
		Help:      "Ticks where a broadcast was skipped due to the rate limiter, by transport.",
	}, []string{"transport"})

	ClientsConnected = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "aeroflybridge",
		Name:      "clients_connected",
		Help:      "Currently connected clients, by transport.",
	}, []string{"transport"})

	CommandsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aeroflybridge",
		Name:      "commands_processed_total",
		Help:      "Client commands successfully translated into outbound messages.",
	})

	CommandsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aeroflybridge",
		Name:      "commands_rejected_total",
		Help:      "Client commands dropped: unparsable, unknown variable, or non-numeric value.",
	})
)

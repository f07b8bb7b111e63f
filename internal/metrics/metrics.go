// Package metrics defines the Prometheus collectors for the server.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/vikoba/internal/notify"
)

const namespace = "vikoba"

// Metrics holds every collector. It also implements notify.Notifier so the
// engine's events can be counted.
type Metrics struct {
	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	Events        *prometheus.CounterVec
	PaidOut       prometheus.Counter
	ForcedPayouts prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RPCRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_events_total",
			Help:      "Committed payout group events by type.",
		}, []string{"type"}),
		PaidOut: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paid_out_minor_units_total",
			Help:      "Sum of payout amounts in minor currency units.",
		}),
		ForcedPayouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forced_payouts_total",
			Help:      "Payouts processed with missing contributions.",
		}),
	}
}

// Notify counts an engine event.
func (m *Metrics) Notify(_ context.Context, event notify.Event) error {
	m.Events.WithLabelValues(string(event.Type)).Inc()
	if event.Type == notify.EventPayoutProcessed {
		m.PaidOut.Add(float64(event.Amount))
		if event.Forced {
			m.ForcedPayouts.Inc()
		}
	}
	return nil
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the firewall
type Metrics struct {
	// Pipeline metrics
	RequestsInspected *prometheus.CounterVec
	ViolationsTotal   *prometheus.CounterVec
	BansTotal         prometheus.Counter

	// Shared store metrics
	StoreDegraded prometheus.Counter
	StoreUp       prometheus.Gauge
}

// New creates a new Metrics instance registered on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new Metrics instance with a custom registry
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		RequestsInspected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "firewall_requests_inspected_total",
				Help: "Requests screened by the inspection pipeline, by decision",
			},
			[]string{"decision"},
		),
		ViolationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "firewall_violations_total",
				Help: "Detected violations by kind",
			},
			[]string{"kind"},
		),
		BansTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "firewall_bans_total",
				Help: "Client bans issued by escalation",
			},
		),
		StoreDegraded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "firewall_store_degraded_total",
				Help: "Protection checks that failed open because the shared store was unavailable",
			},
		),
		StoreUp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "firewall_store_up",
				Help: "Whether a live shared store connection is currently held",
			},
		),
	}
}

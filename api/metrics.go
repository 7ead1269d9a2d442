package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cleanquote/core/pricing"
	"cleanquote/internal/errors"
)

// Metrics collects quote and configuration metrics on its own registry.
// It observes the engine (engine.QuoteObserver) and the store (a
// pricing.PublishHook).
type Metrics struct {
	registry *prometheus.Registry

	quotes        *prometheus.CounterVec
	quoteDuration *prometheus.HistogramVec
	configWrites  *prometheus.CounterVec
	configVersion prometheus.Gauge
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cleanquote_quotes_total",
			Help: "Quotes computed, by service category and outcome.",
		}, []string{"category", "outcome"}),
		quoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cleanquote_quote_duration_seconds",
			Help:    "Time to price a quote.",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01},
		}, []string{"category"}),
		configWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cleanquote_config_writes_total",
			Help: "Pricing configuration writes, by section and outcome.",
		}, []string{"section", "outcome"}),
		configVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cleanquote_config_version",
			Help: "Version of the currently published pricing snapshot.",
		}),
	}
	m.registry.MustRegister(
		m.quotes,
		m.quoteDuration,
		m.configWrites,
		m.configVersion,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveQuote implements engine.QuoteObserver
func (m *Metrics) ObserveQuote(category, outcome string, elapsed time.Duration) {
	m.quotes.WithLabelValues(category, outcome).Inc()
	m.quoteDuration.WithLabelValues(category).Observe(elapsed.Seconds())
}

// ObservePublish is a pricing.PublishHook
func (m *Metrics) ObservePublish(snap *pricing.Snapshot, sections []pricing.Section) {
	m.configVersion.Set(float64(snap.Version()))
	for _, section := range sections {
		m.configWrites.WithLabelValues(string(section), "ok").Inc()
	}
}

// ObserveRejectedWrite counts a write that was not published
func (m *Metrics) ObserveRejectedWrite(section string, err error) {
	m.configWrites.WithLabelValues(section, strings.ToLower(string(errors.TypeOf(err)))).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

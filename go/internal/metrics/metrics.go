package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome of a publish attempt
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped" // no reachable node
	OutcomeDropped Outcome = "dropped" // queue full
	OutcomeFailed  Outcome = "failed"
)

// Collector defines the interface for collecting sync metrics
type Collector interface {
	RecordPublish(channel string, outcome Outcome, duration time.Duration)
	RecordReceive(channel string)
	RecordHaptic(eventType string, fired bool)
	RecordQueueDepth(depth int)
}

// NoOp is a no-op implementation for when metrics aren't needed
type NoOp struct{}

func (NoOp) RecordPublish(channel string, outcome Outcome, duration time.Duration) {}
func (NoOp) RecordReceive(channel string)                                          {}
func (NoOp) RecordHaptic(eventType string, fired bool)                             {}
func (NoOp) RecordQueueDepth(depth int)                                            {}

// Prometheus implements Collector using Prometheus
type Prometheus struct {
	registry        *prometheus.Registry
	publishCounter  *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec
	receiveCounter  *prometheus.CounterVec
	hapticCounter   *prometheus.CounterVec
	queueDepth      prometheus.Gauge
}

// NewPrometheus registers the sync metrics on a fresh registry.
func NewPrometheus(namespace string) *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		publishCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Records handed to the publisher, by channel and outcome.",
		}, []string{"channel", "outcome"}),
		publishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Time spent checking nodes and putting a record.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
		receiveCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_received_total",
			Help:      "Records applied by the subscriber, by channel.",
		}, []string{"channel"}),
		hapticCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "haptics_total",
			Help:      "Haptic dispatches by event type and whether a waveform played.",
		}, []string{"event_type", "fired"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publish_queue_depth",
			Help:      "Jobs waiting in the publish queue.",
		}),
	}
	m.registry.MustRegister(m.publishCounter, m.publishDuration, m.receiveCounter, m.hapticCounter, m.queueDepth)
	return m
}

func (m *Prometheus) RecordPublish(channel string, outcome Outcome, duration time.Duration) {
	m.publishCounter.WithLabelValues(channel, string(outcome)).Inc()
	if outcome == OutcomeSent || outcome == OutcomeFailed {
		m.publishDuration.WithLabelValues(channel).Observe(duration.Seconds())
	}
}

func (m *Prometheus) RecordReceive(channel string) {
	m.receiveCounter.WithLabelValues(channel).Inc()
}

func (m *Prometheus) RecordHaptic(eventType string, fired bool) {
	label := "false"
	if fired {
		label = "true"
	}
	m.hapticCounter.WithLabelValues(eventType, label).Inc()
}

func (m *Prometheus) RecordQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

// Handler serves the registry in the Prometheus text format.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Prometheus) Registry() *prometheus.Registry {
	return m.registry
}

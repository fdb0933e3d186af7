package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts status updates into a prometheus registry and forwards them
// to the next sink.
type Metrics struct {
	next     Sink
	registry *prometheus.Registry

	total    prometheus.Gauge
	current  prometheus.Gauge
	started  prometheus.Counter
	finished *prometheus.CounterVec
	runs     prometheus.Counter
}

// NewMetrics wraps next. A nil next only records metrics.
func NewMetrics(next Sink) *Metrics {
	m := &Metrics{
		next:     next,
		registry: prometheus.NewRegistry(),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cuke_bridge",
			Name:      "units_total",
			Help:      "Number of test units the suite reports.",
		}),
		current: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cuke_bridge",
			Name:      "unit_current",
			Help:      "Sequence number of the last started unit.",
		}),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cuke_bridge",
			Name:      "units_started_total",
			Help:      "Test units started.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cuke_bridge",
			Name:      "units_finished_total",
			Help:      "Test units finished, by result.",
		}, []string{"result"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cuke_bridge",
			Name:      "runs_finished_total",
			Help:      "Runs that reached their final status.",
		}),
	}
	m.registry.MustRegister(m.total, m.current, m.started, m.finished, m.runs)
	for _, c := range []Code{CodeOK, CodeError, CodeFailure} {
		m.finished.WithLabelValues(c.String())
	}
	return m
}

// Registry returns the registry holding the run metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SendStatus records and forwards a unit update.
func (m *Metrics) SendStatus(code Code, status Status) error {
	if n, ok := status.Int(KeyNumTotal); ok {
		m.total.Set(float64(n))
	}
	if code == CodeStart {
		m.started.Inc()
		if n, ok := status.Int(KeyCurrent); ok {
			m.current.Set(float64(n))
		}
	} else {
		m.finished.WithLabelValues(code.String()).Inc()
	}
	if m.next == nil {
		return nil
	}
	return m.next.SendStatus(code, status)
}

// Finish records and forwards the final result.
func (m *Metrics) Finish(resultCode int, results Status) error {
	if n, ok := results.Int(KeyNumTotal); ok {
		m.total.Set(float64(n))
	}
	m.runs.Inc()
	if m.next == nil {
		return nil
	}
	return m.next.Finish(resultCode, results)
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

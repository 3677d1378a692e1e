// Package metrics exposes prometheus instrumentation for the trend engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-trend/internal/types"
)

// Metrics holds all Prometheus metrics for the trend engine.
type Metrics struct {
	StepsTotal      prometheus.Counter
	StepErrorsTotal prometheus.Counter
	StepDuration    prometheus.Histogram

	// Verdicts per step, labels: direction
	VerdictsTotal *prometheus.CounterVec
	// Selections made by the ranker, labels: direction
	SelectionsTotal *prometheus.CounterVec
	// Allocation actions, labels: kind
	ActionsTotal *prometheus.CounterVec

	ReadyInstruments prometheus.Gauge
	UniverseSize     prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trend_steps_total",
			Help: "Total steps processed",
		}),
		StepErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trend_step_errors_total",
			Help: "Steps that aborted with an error",
		}),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trend_step_duration_seconds",
			Help:    "Latency of one step including update, ranking and planning",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		VerdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trend_verdicts_total",
			Help: "Per instrument verdicts of ready instruments (by direction)",
		}, []string{"direction"}),
		SelectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trend_selections_total",
			Help: "Instruments selected by the ranker (by direction)",
		}, []string{"direction"}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trend_actions_total",
			Help: "Allocation actions emitted (by kind)",
		}, []string{"kind"}),
		ReadyInstruments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trend_ready_instruments",
			Help: "Instruments ready in the last step",
		}),
		UniverseSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trend_universe_size",
			Help: "Instruments tracked by the universe",
		}),
	}

	reg.MustRegister(
		m.StepsTotal,
		m.StepErrorsTotal,
		m.StepDuration,
		m.VerdictsTotal,
		m.SelectionsTotal,
		m.ActionsTotal,
		m.ReadyInstruments,
		m.UniverseSize,
	)

	return m
}

// ObserveStep records a completed step.
func (m *Metrics) ObserveStep(result types.StepResult, universeSize int, elapsed time.Duration) {
	m.StepsTotal.Inc()
	m.StepDuration.Observe(elapsed.Seconds())
	m.UniverseSize.Set(float64(universeSize))

	ready := 0

	for symbol, isReady := range result.Ready {
		if !isReady {
			continue
		}

		ready++

		m.VerdictsTotal.WithLabelValues(string(result.Directions[symbol])).Inc()
	}

	m.ReadyInstruments.Set(float64(ready))

	for _, selection := range result.Selected {
		m.SelectionsTotal.WithLabelValues(string(selection.Direction)).Inc()
	}

	for _, action := range result.Actions {
		m.ActionsTotal.WithLabelValues(string(action.Kind)).Inc()
	}
}

// ObserveError records a step that failed.
func (m *Metrics) ObserveError() {
	m.StepErrorsTotal.Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

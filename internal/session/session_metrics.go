package session

import (
	"github.com/fmueller/voxsearch/internal/dispatch"
	"github.com/fmueller/voxsearch/internal/keyword"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for listening sessions.
type Metrics struct {
	TranscriptsTotal *prometheus.CounterVec
	OutcomesTotal    *prometheus.CounterVec
	DecisionsTotal   *prometheus.CounterVec
	RestartsTotal    prometheus.Counter
}

// NewMetrics registers and returns session metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TranscriptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxsearch_transcripts_total",
			Help: "Transcript events received, by kind.",
		}, []string{"kind"}),
		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxsearch_extractions_total",
			Help: "Keyword extractions by outcome and transcript kind.",
		}, []string{"outcome", "kind"}),
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxsearch_dispatch_decisions_total",
			Help: "Dispatcher decisions for extracted keywords.",
		}, []string{"decision"}),
		RestartsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voxsearch_session_restarts_total",
			Help: "Listening session restarts.",
		}),
	}

	reg.MustRegister(m.TranscriptsTotal, m.OutcomesTotal, m.DecisionsTotal, m.RestartsTotal)
	return m
}

// Hooks returns session Hooks that increment the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnTranscript: func(final bool) {
			m.TranscriptsTotal.WithLabelValues(kind(final)).Inc()
		},
		OnOutcome: func(outcome keyword.Outcome, final bool) {
			m.OutcomesTotal.WithLabelValues(string(outcome), kind(final)).Inc()
		},
		OnDecision: func(decision dispatch.Decision) {
			m.DecisionsTotal.WithLabelValues(decision.String()).Inc()
		},
		OnRestart: func() {
			m.RestartsTotal.Inc()
		},
	}
}

func kind(final bool) string {
	if final {
		return "final"
	}
	return "interim"
}

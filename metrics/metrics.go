// Package metrics exposes Prometheus counters for research sessions.
//
// A nil *Recorder is valid and records nothing, so components take one
// optionally.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "researchgraph"
	subsystem = "research"
)

// Recorder holds the counters for the research loop and the deduplicator.
type Recorder struct {
	searches          *prometheus.CounterVec
	budgetExhausted   prometheus.Counter
	sourcesFormatted  prometheus.Counter
	sourcesDropped    prometheus.Counter
	rawContentMissing prometheus.Counter
}

// NewRecorder creates the counters and registers them with reg. A nil reg
// leaves them unregistered, which is convenient in tests.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "searches_total",
			Help:      "Total number of search collaborator invocations",
		}, []string{"backend"}),
		budgetExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "budget_exhausted_total",
			Help:      "Total number of searches refused because the loop budget was spent",
		}),
		sourcesFormatted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sources_formatted_total",
			Help:      "Total number of unique sources rendered",
		}),
		sourcesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sources_dropped_total",
			Help:      "Total number of sources dropped as duplicate URLs",
		}),
		rawContentMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "raw_content_missing_total",
			Help:      "Total number of sources rendered without raw content",
		}),
	}

	if reg == nil {
		return r, nil
	}
	for _, c := range []prometheus.Collector{
		r.searches,
		r.budgetExhausted,
		r.sourcesFormatted,
		r.sourcesDropped,
		r.rawContentMissing,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RecordSearch counts one collaborator call on backend.
func (r *Recorder) RecordSearch(backend string) {
	if r == nil {
		return
	}
	r.searches.WithLabelValues(backend).Inc()
}

// RecordBudgetExhausted counts one refused search.
func (r *Recorder) RecordBudgetExhausted() {
	if r == nil {
		return
	}
	r.budgetExhausted.Inc()
}

// RecordFormat counts the outcome of one deduplication pass.
func (r *Recorder) RecordFormat(formatted, dropped, missingRaw int) {
	if r == nil {
		return
	}
	r.sourcesFormatted.Add(float64(formatted))
	r.sourcesDropped.Add(float64(dropped))
	r.rawContentMissing.Add(float64(missingRaw))
}

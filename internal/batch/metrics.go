package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts coordinator activity.
type Metrics struct {
	// results counts resolved colours by provenance
	results *prometheus.CounterVec

	// remoteCalls counts remote batch calls by outcome
	remoteCalls *prometheus.CounterVec

	// batchSize tracks how many uncached colours each remote call carried
	batchSize prometheus.Histogram
}

// NewMetrics registers the coordinator metrics with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "swatchbook_batch_results_total",
			Help: "Colours resolved by the batch coordinator, by provenance",
		}, []string{"provenance"}),
		remoteCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "swatchbook_remote_calls_total",
			Help: "Remote recipe batch calls, by outcome",
		}, []string{"outcome"}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "swatchbook_remote_batch_size",
			Help:    "Number of colours carried by each remote batch call",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		}),
	}
}

// Remote call outcomes.
const (
	outcomeSuccess = "success"
	outcomePartial = "partial"
	outcomeFailure = "failure"
)

func (m *Metrics) observeResult(p string) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(p).Inc()
}

func (m *Metrics) observeRemote(outcome string, size int) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(outcome).Inc()
	m.batchSize.Observe(float64(size))
}

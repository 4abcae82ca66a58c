package accessor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh outcomes.
const (
	refreshPublished = "published"
	refreshStale     = "stale"
	refreshClosed    = "closed"
)

// Metrics counts accessor refreshes.
type Metrics struct {
	refreshes *prometheus.CounterVec
}

// NewMetrics registers the accessor metrics with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		refreshes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "swatchbook_accessor_refreshes_total",
			Help: "Colour set refreshes by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "campus_session"

const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	RefreshSkipped = "skipped"
)

// Metrics holds the client-side collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	refreshes    *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	requests     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Token refresh attempts by outcome.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by resource and outcome.",
		}, []string{"resource", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Outgoing HTTP requests by result kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.refreshes, m.cacheLookups, m.requests)
	}
	return m
}

func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLookup(resource, outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(resource, outcome).Inc()
}

func (m *Metrics) ObserveRequest(kind string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(kind).Inc()
}

func (m *Metrics) Refreshes() *prometheus.CounterVec    { return m.refreshes }
func (m *Metrics) CacheLookups() *prometheus.CounterVec { return m.cacheLookups }
func (m *Metrics) Requests() *prometheus.CounterVec     { return m.requests }

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRefresh(RefreshSuccess)
	m.ObserveRefresh(RefreshFailure)
	m.ObserveRefresh(RefreshSuccess)
	m.ObserveLookup("profile", "hit")
	m.ObserveRequest("server")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Refreshes().WithLabelValues(RefreshSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Refreshes().WithLabelValues(RefreshFailure)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups().WithLabelValues("profile", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests().WithLabelValues("server")))

	count, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRefresh(RefreshSkipped)
		m.ObserveLookup("courses", "miss")
		m.ObserveRequest("success")
	})
}

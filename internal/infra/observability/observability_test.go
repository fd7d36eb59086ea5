package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.UnlocksTotal.WithLabelValues("interview").Inc()
	m.TokensDebited.Add(5)
	m.SelectionsTotal.Inc()
	m.ModerationsTotal.WithLabelValues("post", "approved").Inc()

	if got := testutil.ToFloat64(m.UnlocksTotal.WithLabelValues("interview")); got != 1 {
		t.Errorf("unlocks counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TokensDebited); got != 5 {
		t.Errorf("tokens debited = %v, want 5", got)
	}

	// Two instances on separate registries must not collide.
	m2 := NewMetrics(prometheus.NewRegistry())
	if got := testutil.ToFloat64(m2.SelectionsTotal); got != 0 {
		t.Errorf("fresh registry counter = %v, want 0", got)
	}
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}

func TestStoreOps(t *testing.T) {
	c := StoreOps.WithLabelValues("get", ResultNotFound)
	before := value(t, c)
	c.Inc()
	assert.Equal(t, before+1, value(t, c))
}

func TestRulesCount(t *testing.T) {
	RulesCount.WithLabelValues("filter").Set(4)
	assert.Equal(t, float64(4), value(t, RulesCount.WithLabelValues("filter")))
}

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpstream(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveUpstream("obtainKrakenToken", "ok", 120*time.Millisecond)
	m.ObserveUpstream("halfHourlyReadings", "ok", time.Second)
	m.ObserveUpstream("halfHourlyReadings", "upstream_error", time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequestsTotal.WithLabelValues("halfHourlyReadings", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequestsTotal.WithLabelValues("halfHourlyReadings", "upstream_error")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.upstreamRequestsTotal))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveUpstream("viewer", "ok", time.Second)
	m.ObserveReport(1, decimal.NewFromInt(1), decimal.NewFromInt(1), time.Now())
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveReport(144, decimal.RequireFromString("30.5"), decimal.RequireFromString("10.1666"), time.Unix(1704844800, 0))

	path := filepath.Join(t.TempDir(), "octousage.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "octousage_readings_fetched 144")
	assert.Contains(t, string(data), "octousage_total_usage_kwh 30.5")
	assert.Contains(t, string(data), "# TYPE octousage_last_run_timestamp_seconds gauge")
}

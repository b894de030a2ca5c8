// Package metrics records upstream API calls and report figures for a single
// run, and can dump them in the Prometheus text format for node-exporter's
// textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Metrics owns a private registry so runs never touch the global default
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequestsTotal   *prometheus.CounterVec
	upstreamDurationSeconds *prometheus.HistogramVec
	readingsFetched         prometheus.Gauge
	totalUsageKWh           prometheus.Gauge
	dailyAverageKWh         prometheus.Gauge
	lastRunTimestamp        prometheus.Gauge
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "octousage_upstream_requests_total",
				Help: "Total number of GraphQL requests made to the supplier API.",
			},
			[]string{"operation", "outcome"},
		),
		upstreamDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "octousage_upstream_request_duration_seconds",
				Help:    "Supplier GraphQL request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		readingsFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "octousage_readings_fetched",
			Help: "Half-hourly readings returned by the last run.",
		}),
		totalUsageKWh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "octousage_total_usage_kwh",
			Help: "Total electricity usage over the last reported range.",
		}),
		dailyAverageKWh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "octousage_daily_average_kwh",
			Help: "Mean daily electricity usage over the last reported range.",
		}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "octousage_last_run_timestamp_seconds",
			Help: "Unix time the last report was produced.",
		}),
	}

	m.registry.MustRegister(
		m.upstreamRequestsTotal,
		m.upstreamDurationSeconds,
		m.readingsFetched,
		m.totalUsageKWh,
		m.dailyAverageKWh,
		m.lastRunTimestamp,
	)
	return m
}

// ObserveUpstream records one GraphQL call. Outcome is "ok" or a short error class.
func (m *Metrics) ObserveUpstream(operation, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.upstreamDurationSeconds.WithLabelValues(operation).Observe(dur.Seconds())
}

// ObserveReport records the figures of a finished report
func (m *Metrics) ObserveReport(readings int, total, dailyAvg decimal.Decimal, at time.Time) {
	if m == nil {
		return
	}
	m.readingsFetched.Set(float64(readings))
	m.totalUsageKWh.Set(total.InexactFloat64())
	m.dailyAverageKWh.Set(dailyAvg.InexactFloat64())
	m.lastRunTimestamp.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile atomically writes all metrics to path
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

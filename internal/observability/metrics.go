package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	activeSessions      prometheus.Gauge
	sessionLoadDuration prometheus.Histogram
	sessionSaveDuration prometheus.Histogram
	catalogListDuration prometheus.Histogram
	corruptRecordsTotal prometheus.Counter

	aggregationDuration *prometheus.HistogramVec
	insightSessions     prometheus.Gauge
	insightTokens       prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "catalog_sessions_active",
				Help: "Number of sessions currently present in the catalog.",
			}),
			sessionLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "session_load_duration_seconds",
				Help:    "Duration of session log reads in seconds.",
				Buckets: prometheus.DefBuckets,
			}),
			sessionSaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "session_save_duration_seconds",
				Help:    "Duration of session appends in seconds.",
				Buckets: prometheus.DefBuckets,
			}),
			catalogListDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "catalog_list_duration_seconds",
				Help:    "Duration of catalog listings in seconds.",
				Buckets: prometheus.DefBuckets,
			}),
			corruptRecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "catalog_corrupt_records_total",
				Help: "Total number of corrupt session records encountered.",
			}),
			aggregationDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "aggregation_duration_seconds",
					Help:    "Duration of catalog aggregation passes in seconds.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"kind"},
			),
			insightSessions: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "insight_described_sessions",
				Help: "Described sessions counted by the last insights pass.",
			}),
			insightTokens: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "insight_accumulated_tokens",
				Help: "Token total computed by the last insights pass.",
			}),
		}

		prometheus.MustRegister(
			m.activeSessions,
			m.sessionLoadDuration,
			m.sessionSaveDuration,
			m.catalogListDuration,
			m.corruptRecordsTotal,
			m.aggregationDuration,
			m.insightSessions,
			m.insightTokens,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func SetActiveSessions(count int) {
	m := getMetrics()
	m.activeSessions.Set(float64(count))
}

func RecordSessionLoad(duration time.Duration) {
	m := getMetrics()
	m.sessionLoadDuration.Observe(duration.Seconds())
}

func RecordSessionSave(duration time.Duration) {
	m := getMetrics()
	m.sessionSaveDuration.Observe(duration.Seconds())
}

func RecordCatalogList(duration time.Duration) {
	m := getMetrics()
	m.catalogListDuration.Observe(duration.Seconds())
}

func RecordCorruptRecord() {
	m := getMetrics()
	m.corruptRecordsTotal.Inc()
}

func RecordAggregation(kind string, duration time.Duration) {
	m := getMetrics()
	m.aggregationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// PublishInsightTotals exposes headline insight numbers as gauges so the
// metrics endpoint reflects the last refresh.
func PublishInsightTotals(totalSessions int, totalTokens int64) {
	m := getMetrics()
	m.insightSessions.Set(float64(totalSessions))
	m.insightTokens.Set(float64(totalTokens))
}

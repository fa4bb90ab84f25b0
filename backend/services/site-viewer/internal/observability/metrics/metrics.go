package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "site_viewer_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	refreshTotal   *prometheus.CounterVec
	refreshLatency *prometheus.HistogramVec

	fetchTotal   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec

	rowsDropped *prometheus.CounterVec
	sites       *prometheus.GaugeVec
	wsClients   prometheus.Gauge
)

// Init registers collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		refreshTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "refresh_total",
				Help: "Total battery status refreshes by result",
			},
			[]string{"result"},
		)
		refreshLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "refresh_latency_seconds",
				Help:    "Refresh latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		fetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "fetch_total",
				Help: "Total upstream dataset fetches by dataset and result",
			},
			[]string{"dataset", "result"},
		)
		fetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "fetch_latency_seconds",
				Help:    "Upstream dataset fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"dataset"},
		)
		rowsDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_dropped_total",
				Help: "Rows excluded from the map by reason",
			},
			[]string{"reason"},
		)
		sites = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "sites",
				Help: "Classified rows in the current snapshot by colour category",
			},
			[]string{"category"},
		)
		wsClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ws_clients",
				Help: "Connected live update clients",
			},
		)

		prometheus.MustRegister(
			refreshTotal,
			refreshLatency,
			fetchTotal,
			fetchLatency,
			rowsDropped,
			sites,
			wsClients,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRefresh records refresh duration and result.
func ObserveRefresh(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if refreshTotal != nil {
		refreshTotal.WithLabelValues(result).Inc()
	}
	if refreshLatency != nil {
		refreshLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveFetch records one upstream call.
func ObserveFetch(dataset, result string, duration time.Duration) {
	if dataset == "" {
		dataset = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if fetchTotal != nil {
		fetchTotal.WithLabelValues(dataset, result).Inc()
	}
	if fetchLatency != nil {
		fetchLatency.WithLabelValues(dataset).Observe(duration.Seconds())
	}
}

// AddRowsDropped increments the dropped row counter.
func AddRowsDropped(reason string, count int) {
	if count <= 0 {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	if rowsDropped != nil {
		rowsDropped.WithLabelValues(reason).Add(float64(count))
	}
}

// SetSites replaces the per-category gauge values.
func SetSites(counts map[string]int) {
	if sites == nil {
		return
	}
	for category, count := range counts {
		sites.WithLabelValues(category).Set(float64(count))
	}
}

// SetWSClients sets the number of connected live clients.
func SetWSClients(count int) {
	if wsClients != nil {
		wsClients.Set(float64(count))
	}
}

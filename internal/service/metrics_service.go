package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/damnjuhl/calcalc/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the sync engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	syncRuns        prometheus.Counter
	syncDuration    prometheus.Histogram
	eventsImported  prometheus.Counter
	eventsExported  prometheus.Counter
	eventsUpdated   prometheus.Counter
	syncItemErrors  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	syncRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_runs_total",
		Help: "Total number of completed sync passes",
	})

	syncDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sync_duration_seconds",
		Help:    "Duration of sync passes",
		Buckets: prometheus.DefBuckets,
	})

	eventsImported := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_events_imported_total",
		Help: "Events imported from the remote calendar",
	})

	eventsExported := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_events_exported_total",
		Help: "Events exported to the remote calendar",
	})

	eventsUpdated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_events_updated_total",
		Help: "Remote events updated from explicit export requests",
	})

	syncItemErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_item_errors_total",
		Help: "Per-item failures recorded during sync passes",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, syncRuns, syncDuration,
		eventsImported, eventsExported, eventsUpdated, syncItemErrors, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		syncRuns:        syncRuns,
		syncDuration:    syncDuration,
		eventsImported:  eventsImported,
		eventsExported:  eventsExported,
		eventsUpdated:   eventsUpdated,
		syncItemErrors:  syncItemErrors,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveSyncRun records the outcome of a completed sync pass.
func (m *MetricsService) ObserveSyncRun(result *models.SyncResult, duration time.Duration) {
	if m == nil || result == nil {
		return
	}
	m.syncRuns.Inc()
	m.syncDuration.Observe(duration.Seconds())
	m.eventsImported.Add(float64(result.Imported))
	m.eventsExported.Add(float64(result.Exported))
	m.eventsUpdated.Add(float64(result.Updated))
	m.syncItemErrors.Add(float64(len(result.Errors)))
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/assetflow/assetflow/internal/domain/models"
)

const namespace = "assetflow"

// Metrics holds the Prometheus collectors of the service. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ImportsTotal   *prometheus.CounterVec
	ImportDuration *prometheus.HistogramVec
	ImportRows     *prometheus.CounterVec
	RowsDeleted    *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Finished imports by source and result.",
		}, []string{"source", "result"}),
		ImportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Wall time of one import.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"source"}),
		ImportRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Reconciled records by stage and outcome.",
		}, []string{"stage", "outcome"}),
		RowsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_deleted_rows_total",
			Help:      "Rows removed by import batch deletions, by entity.",
		}, []string{"entity"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ImportsTotal,
		m.ImportDuration,
		m.ImportRows,
		m.RowsDeleted,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordImport counts one finished import. report is nil when the sheet could
// not be processed at all.
func (m *Metrics) RecordImport(source models.ImportSource, report *models.ImportReport, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.ImportsTotal.WithLabelValues(string(source), result).Inc()
	m.ImportDuration.WithLabelValues(string(source)).Observe(duration.Seconds())
	if report == nil {
		return
	}
	m.recordStage("assets", report.Assets)
	m.recordStage("movements", report.Movements)
	m.recordStage("costings", report.Costings)
}

func (m *Metrics) recordStage(stage string, result models.StageResult) {
	counts := map[models.Outcome]int{}
	for _, d := range result.Details {
		counts[d.Outcome]++
	}
	for outcome, n := range counts {
		m.ImportRows.WithLabelValues(stage, string(outcome)).Add(float64(n))
	}
}

func (m *Metrics) RecordDeletion(summary *models.DeletionSummary) {
	if m == nil || summary == nil {
		return
	}
	m.RowsDeleted.WithLabelValues("costings").Add(float64(summary.Costings))
	m.RowsDeleted.WithLabelValues("movements").Add(float64(summary.Movements))
	m.RowsDeleted.WithLabelValues("assets").Add(float64(summary.Assets))
	m.RowsDeleted.WithLabelValues("vendors").Add(float64(summary.Vendors))
}

// Middleware records every request except scrapes of the metrics endpoint.
func Middleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

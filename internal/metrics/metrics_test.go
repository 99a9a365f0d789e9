package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetflow/assetflow/internal/domain/models"
)

func TestRecordImport(t *testing.T) {
	m := New()
	report := &models.ImportReport{}
	report.Assets.Record(models.RowResult{Row: 2, Outcome: models.OutcomeCreated})
	report.Assets.Record(models.RowResult{Row: 3, Outcome: models.OutcomeCreated})
	report.Movements.Record(models.RowResult{Row: 2, Outcome: models.OutcomeDuplicate})

	m.RecordImport(models.SourceUpload, report, nil, time.Second)
	m.RecordImport(models.SourceGoogleSheet, nil, errors.New("empty"), time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportsTotal.WithLabelValues("upload", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportsTotal.WithLabelValues("google_sheet", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ImportRows.WithLabelValues("assets", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportRows.WithLabelValues("movements", "skipped_duplicate")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordImport(models.SourceUpload, &models.ImportReport{}, nil, time.Second)
		m.RecordDeletion(&models.DeletionSummary{Assets: 1})
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	engine := gin.New()
	engine.Use(Middleware(m))
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/ping", "200")))

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "assetflow_http_requests_total")
}

package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/assetflow/assetflow/internal/metrics"
	"github.com/assetflow/assetflow/internal/repository/relational"
	"github.com/assetflow/assetflow/internal/repository/relational/relationaltest"
	"github.com/assetflow/assetflow/internal/server/handlers"
	"github.com/assetflow/assetflow/internal/service/batches"
	"github.com/assetflow/assetflow/internal/service/importer"
	"github.com/assetflow/assetflow/internal/service/ingest"
	"github.com/assetflow/assetflow/internal/service/review"
	"github.com/assetflow/assetflow/internal/spreadsheet"
)

func newTestEngine(t *testing.T) *gin.Engine {
	db := relationaltest.Open(t)
	r := relational.NewRepositories()
	pipeline := importer.NewPipeline(db, importer.Repositories{
		Vendors: r.Vendors, Assets: r.Assets, Movements: r.Movements, Costings: r.Costings,
	}, nil, 50, nil)
	lifecycle := batches.NewService(db, batches.Repositories{
		Vendors: r.Vendors, Assets: r.Assets, Movements: r.Movements, Costings: r.Costings, Batches: r.Batches,
	}, nil)
	m := metrics.New()
	imports := ingest.NewService(pipeline, lifecycle, ingest.Options{MaxUploadBytes: 1 << 20, Metrics: m}, nil)

	return New(Handlers{
		Imports: handlers.NewImportHandler(imports, lifecycle, nil, nil),
		Review:  handlers.NewReviewHandler(review.NewService(db, r.Costings, r.Movements, nil), nil),
	}, m, 1<<20, nil)
}

func workbook(t *testing.T) []byte {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(spreadsheet.TemplateHeaders))
	for i, h := range spreadsheet.TemplateHeaders {
		header[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	require.NoError(t, f.SetCellValue(sheet, "C2", "A1"))
	require.NoError(t, f.SetCellValue(sheet, "F2", "Mumbai"))
	require.NoError(t, f.SetCellValue(sheet, "N2", 100))
	require.NoError(t, f.SetCellValue(sheet, "Z2", "Acme"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func upload(t *testing.T, engine *gin.Engine, filename string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func do(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	engine := newTestEngine(t)

	rec := do(engine, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(engine, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "assetflow_http_requests_total")
}

func TestImportLifecycleOverHTTP(t *testing.T) {
	engine := newTestEngine(t)

	rec := upload(t, engine, "march.xlsx", workbook(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Batch struct {
			ID            uint64 `json:"id"`
			AssetsCreated int    `json:"assets_created"`
		} `json:"batch"`
		Report struct {
			Assets struct {
				Created int `json:"created"`
			} `json:"assets"`
		} `json:"report"`
		Vendors []struct {
			Name     string `json:"name"`
			RowCount int    `json:"row_count"`
		} `json:"vendors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 1, created.Report.Assets.Created)
	assert.Equal(t, 1, created.Batch.AssetsCreated)
	require.Len(t, created.Vendors, 1)
	assert.Equal(t, "Acme", created.Vendors[0].Name)

	rec = do(engine, http.MethodGet, "/api/imports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"original_filename":"march.xlsx"`)

	rec = do(engine, http.MethodGet, "/api/imports/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(engine, http.MethodGet, "/api/imports/1/report", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(engine, http.MethodPost, "/api/costings/1/approve", `{"by":"finance"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"APPROVED"`)

	rec = do(engine, http.MethodPost, "/api/costings/1/reject", `{"by":"finance"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(engine, http.MethodPost, "/api/costings/1/reject", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(engine, http.MethodPatch, "/api/movements/1/status", `{"status":"lost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(engine, http.MethodPatch, "/api/movements/1/status", `{"status":"DELIVERED"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"actual_delivery"`)

	rec = do(engine, http.MethodDelete, "/api/imports/1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"costings":1,"movements":1,"assets":1,"vendors":1,"vendors_detached":0,"total":4}`, rec.Body.String())

	rec = do(engine, http.MethodGet, "/api/imports/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportErrorsOverHTTP(t *testing.T) {
	engine := newTestEngine(t)

	rec := upload(t, engine, "march.csv", []byte("a,b"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = upload(t, engine, "broken.xlsx", []byte("not a workbook"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(engine, http.MethodPost, "/api/imports", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(engine, http.MethodPost, "/api/imports/google-sheet", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(engine, http.MethodGet, "/api/imports/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(engine, http.MethodDelete, "/api/imports/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(engine, http.MethodGet, "/api/imports?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateDownload(t *testing.T) {
	engine := newTestEngine(t)

	rec := do(engine, http.MethodGet, "/api/imports/template", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "import_template.xlsx")

	grid, err := spreadsheet.DecodeXLSX(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 0, grid.LastRow())
	assert.Equal(t, "ATM BNA ID", grid.Cell(0, 2).Text)
}

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/assetflow/assetflow/internal/domain/models"
	"github.com/assetflow/assetflow/internal/service/ingest"
	"github.com/assetflow/assetflow/internal/spreadsheet"
)

const defaultListLimit = 50

// Importer runs and rolls back imports.
type Importer interface {
	ImportUpload(ctx context.Context, up ingest.Upload) (*ingest.Result, error)
	ImportGoogleSheet(ctx context.Context) (*ingest.Result, error)
	Delete(ctx context.Context, id uint64) (*models.DeletionSummary, error)
}

// BatchReader looks up recorded import batches.
type BatchReader interface {
	List(ctx context.Context, limit int) ([]models.ImportBatch, error)
	Get(ctx context.Context, id uint64) (*models.ImportBatch, error)
}

// ReportFinder loads archived per-row import reports.
type ReportFinder interface {
	FindImportReport(ctx context.Context, batchID uint64) (*models.ImportReport, error)
}

// ImportHandler exposes imports over HTTP.
type ImportHandler struct {
	importer Importer
	batches  BatchReader
	reports  ReportFinder
	logger   *zap.Logger
}

// NewImportHandler builds the handler. reports may be nil when no archive is
// configured.
func NewImportHandler(importer Importer, batches BatchReader, reports ReportFinder, logger *zap.Logger) *ImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHandler{importer: importer, batches: batches, reports: reports, logger: logger}
}

type importResponse struct {
	Batch   *models.ImportBatch  `json:"batch"`
	Report  *models.ImportReport `json:"report"`
	Vendors []models.VendorRows  `json:"vendors"`
}

func newImportResponse(res *ingest.Result) importResponse {
	return importResponse{Batch: res.Batch, Report: res.Report, Vendors: res.Report.Vendors}
}

// Upload imports the workbook sent as the multipart field "file".
func (h *ImportHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	res, err := h.importer.ImportUpload(c.Request.Context(), ingest.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, newImportResponse(res))
}

// ImportGoogleSheet pulls the configured sheet range.
func (h *ImportHandler) ImportGoogleSheet(c *gin.Context) {
	res, err := h.importer.ImportGoogleSheet(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, newImportResponse(res))
}

func (h *ImportHandler) List(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	list, err := h.batches.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": list})
}

func (h *ImportHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	batch, err := h.batches.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// Report returns the archived per-row report of a batch.
func (h *ImportHandler) Report(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if h.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report archive is not configured"})
		return
	}
	report, err := h.reports.FindImportReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Delete rolls back everything the batch created.
func (h *ImportHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	summary, err := h.importer.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Template downloads an empty workbook with the expected header row.
func (h *ImportHandler) Template(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="import_template.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := spreadsheet.WriteTemplate(c.Writer); err != nil {
		h.logger.Error("failed writing template", zap.Error(err))
	}
}

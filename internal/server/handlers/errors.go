package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/assetflow/assetflow/internal/domain/models"
	"github.com/assetflow/assetflow/internal/service/batches"
	"github.com/assetflow/assetflow/internal/service/ingest"
	"github.com/assetflow/assetflow/internal/service/review"
	"github.com/assetflow/assetflow/internal/spreadsheet"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ingest.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, spreadsheet.ErrUnreadableWorkbook), errors.Is(err, spreadsheet.ErrEmptySheet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingest.ErrImportInProgress), errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrSheetsDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, batches.ErrBatchNotFound), errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, review.ErrReviewerRequired), errors.Is(err, models.ErrUnknownStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

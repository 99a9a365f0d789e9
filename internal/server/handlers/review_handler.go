package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/assetflow/assetflow/internal/domain/models"
)

// Reviewer applies manual decisions to costings and movements.
type Reviewer interface {
	ApproveCosting(ctx context.Context, id uint64, reviewer string) (*models.Costing, error)
	RejectCosting(ctx context.Context, id uint64, reviewer string) (*models.Costing, error)
	UpdateMovementStatus(ctx context.Context, id uint64, status string) (*models.Movement, error)
}

// ReviewHandler exposes costing review and movement tracking.
type ReviewHandler struct {
	svc    Reviewer
	logger *zap.Logger
}

func NewReviewHandler(svc Reviewer, logger *zap.Logger) *ReviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewHandler{svc: svc, logger: logger}
}

type reviewRequest struct {
	By string `json:"by" binding:"required"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *ReviewHandler) ApproveCosting(c *gin.Context) {
	h.reviewCosting(c, h.svc.ApproveCosting)
}

func (h *ReviewHandler) RejectCosting(c *gin.Context) {
	h.reviewCosting(c, h.svc.RejectCosting)
}

func (h *ReviewHandler) reviewCosting(c *gin.Context, decide func(context.Context, uint64, string) (*models.Costing, error)) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"by\": \"<reviewer>\"}"})
		return
	}

	costing, err := decide(c.Request.Context(), id, req.By)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, costing)
}

func (h *ReviewHandler) UpdateMovementStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"status\": \"<status>\"}"})
		return
	}

	movement, err := h.svc.UpdateMovementStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movement)
}

package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assetflow/assetflow/internal/domain/models"
)

// ErrReviewerRequired is returned when a costing decision names nobody.
var ErrReviewerRequired = errors.New("reviewer is required")

// Service applies manual decisions to imported costings and movements.
type Service struct {
	db        *gorm.DB
	costings  models.CostingRepository
	movements models.MovementRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(db *gorm.DB, costings models.CostingRepository, movements models.MovementRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, costings: costings, movements: movements, logger: logger, now: time.Now}
}

// ApproveCosting approves a pending costing.
func (s *Service) ApproveCosting(ctx context.Context, id uint64, reviewer string) (*models.Costing, error) {
	return s.reviewCosting(ctx, id, reviewer, (*models.Costing).Approve)
}

// RejectCosting rejects a pending costing.
func (s *Service) RejectCosting(ctx context.Context, id uint64, reviewer string) (*models.Costing, error) {
	return s.reviewCosting(ctx, id, reviewer, (*models.Costing).Reject)
}

func (s *Service) reviewCosting(ctx context.Context, id uint64, reviewer string, decide func(*models.Costing, string, time.Time) error) (*models.Costing, error) {
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" {
		return nil, ErrReviewerRequired
	}

	var costing *models.Costing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.costings.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := decide(found, reviewer, s.now()); err != nil {
			return err
		}
		costing = found
		return s.costings.Save(ctx, tx, found)
	})
	if err != nil {
		return nil, fmt.Errorf("review costing %d: %w", id, err)
	}

	s.logger.Info("costing reviewed",
		zap.Uint64("costing_id", id),
		zap.String("status", string(costing.Status)),
		zap.String("reviewer", reviewer),
	)
	return costing, nil
}

// UpdateMovementStatus moves a movement to the named status.
func (s *Service) UpdateMovementStatus(ctx context.Context, id uint64, rawStatus string) (*models.Movement, error) {
	status, err := models.ParseMovementStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	var movement *models.Movement
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.movements.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := found.Transition(status, s.now()); err != nil {
			return err
		}
		movement = found
		return s.movements.Save(ctx, tx, found)
	})
	if err != nil {
		return nil, fmt.Errorf("update movement %d: %w", id, err)
	}

	s.logger.Info("movement status changed",
		zap.Uint64("movement_id", id),
		zap.String("tracking_number", movement.TrackingNumber),
		zap.String("status", string(movement.Status)),
	)
	return movement, nil
}

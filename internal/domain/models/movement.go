package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementStatus tracks a movement through transit.
type MovementStatus string

const (
	MovementPending   MovementStatus = "PENDING"
	MovementInTransit MovementStatus = "IN_TRANSIT"
	MovementDelivered MovementStatus = "DELIVERED"
	MovementCancelled MovementStatus = "CANCELLED"
)

// ErrInvalidTransition is returned when a status change is not allowed from
// the current state.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnknownStatus is returned for status names outside the enum.
var ErrUnknownStatus = errors.New("unknown movement status")

// ParseMovementStatus accepts the enum name case-insensitively, with dashes
// allowed in place of underscores.
func ParseMovementStatus(raw string) (MovementStatus, error) {
	status := MovementStatus(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), "-", "_"))
	switch status {
	case MovementPending, MovementInTransit, MovementDelivered, MovementCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownStatus, raw)
	}
}

// Movement records an asset being shipped between two locations. At most one
// non-cancelled movement exists per asset.
type Movement struct {
	ID               uint64         `gorm:"primaryKey" json:"id"`
	TrackingNumber   string         `gorm:"size:32;not null;uniqueIndex" json:"tracking_number"`
	AssetID          uint64         `gorm:"not null;index" json:"asset_id"`
	Asset            *Asset         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ImportBatchID    *uint64        `gorm:"index" json:"import_batch_id,omitempty"`
	ImportBatch      *ImportBatch   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	MovementType     string         `gorm:"size:128;not null" json:"movement_type"`
	FromLocation     string         `gorm:"size:255;not null" json:"from_location"`
	ToLocation       string         `gorm:"size:255;not null" json:"to_location"`
	Status           MovementStatus `gorm:"size:16;not null" json:"status"`
	InitiatedBy      string         `gorm:"size:128" json:"initiated_by"`
	InitiatedDate    time.Time      `json:"initiated_date"`
	ExpectedDelivery *time.Time     `json:"expected_delivery,omitempty"`
	ActualDelivery   *time.Time     `json:"actual_delivery,omitempty"`
	DocketNo         string         `gorm:"size:128" json:"docket_no,omitempty"`
	BusinessGroup    string         `gorm:"size:128" json:"business_group,omitempty"`
	ModeOfBill       string         `gorm:"size:128" json:"mode_of_bill,omitempty"`
	Notes            string         `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewTrackingNumber returns a code of the form TRK-1A2B3C4D.
func NewTrackingNumber() string {
	return "TRK-" + strings.ToUpper(uuid.NewString()[:8])
}

// BeforeCreate assigns a tracking number when none was set.
func (m *Movement) BeforeCreate(*gorm.DB) error {
	if m.TrackingNumber == "" {
		m.TrackingNumber = NewTrackingNumber()
	}
	return nil
}

// Transition moves the movement to status. Delivered and cancelled movements
// are final. Delivery stamps ActualDelivery with on.
func (m *Movement) Transition(status MovementStatus, on time.Time) error {
	if m.Status == MovementDelivered || m.Status == MovementCancelled {
		return fmt.Errorf("%w: movement %s is %s", ErrInvalidTransition, m.TrackingNumber, m.Status)
	}
	m.Status = status
	if status == MovementDelivered {
		day := truncateDay(on)
		m.ActualDelivery = &day
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

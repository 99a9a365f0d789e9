package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CostingStatus is the review state of a costing.
type CostingStatus string

const (
	CostingPending  CostingStatus = "PENDING"
	CostingApproved CostingStatus = "APPROVED"
	CostingRejected CostingStatus = "REJECTED"
)

var hundred = decimal.NewFromInt(100)

// Costing is the cost sheet raised for a newly registered asset. It is seeded
// once from the asset and reviewed independently afterwards.
type Costing struct {
	ID              uint64          `gorm:"primaryKey" json:"id"`
	AssetID         uint64          `gorm:"not null;index" json:"asset_id"`
	Asset           *Asset          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	VendorID        uint64          `gorm:"not null;index" json:"vendor_id"`
	Vendor          *Vendor         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	BaseCost        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"base_cost"`
	MaintenanceCost decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"maintenance_cost"`
	OperationalCost decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"operational_cost"`
	Margin          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"margin"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_cost"`
	Status          CostingStatus   `gorm:"size:16;not null" json:"status"`
	SubmittedBy     string          `gorm:"size:128" json:"submitted_by"`
	SubmittedDate   time.Time       `json:"submitted_date"`
	ApprovedBy      string          `gorm:"size:128" json:"approved_by,omitempty"`
	ApprovedDate    *time.Time      `json:"approved_date,omitempty"`
	Notes           string          `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Recalculate sets TotalCost to the cost subtotal plus the margin percentage.
func (c *Costing) Recalculate() {
	subtotal := c.BaseCost.Add(c.MaintenanceCost).Add(c.OperationalCost)
	c.TotalCost = subtotal.Add(subtotal.Mul(c.Margin).Div(hundred)).Round(2)
}

// BeforeSave keeps TotalCost consistent with its inputs.
func (c *Costing) BeforeSave(*gorm.DB) error {
	c.Recalculate()
	return nil
}

// Approve marks a pending costing as approved by reviewer.
func (c *Costing) Approve(reviewer string, on time.Time) error {
	return c.review(CostingApproved, reviewer, on)
}

// Reject marks a pending costing as rejected. The reviewer is kept in
// ApprovedBy.
func (c *Costing) Reject(reviewer string, on time.Time) error {
	return c.review(CostingRejected, reviewer, on)
}

func (c *Costing) review(status CostingStatus, reviewer string, on time.Time) error {
	if c.Status != CostingPending {
		return fmt.Errorf("%w: costing %d is %s", ErrInvalidTransition, c.ID, c.Status)
	}
	day := truncateDay(on)
	c.Status = status
	c.ApprovedBy = reviewer
	c.ApprovedDate = &day
	return nil
}

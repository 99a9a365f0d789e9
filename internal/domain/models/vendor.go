package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendorStatus is the commercial state of a vendor.
type VendorStatus string

const (
	VendorActive    VendorStatus = "ACTIVE"
	VendorInactive  VendorStatus = "INACTIVE"
	VendorSuspended VendorStatus = "SUSPENDED"
)

// Vendor is a logistics or service provider that assets are allocated to.
// AssetsAllocated and TotalCost are derived from the vendor's assets and are
// only ever written by a recomputation.
type Vendor struct {
	ID              uint64          `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:255;not null;index" json:"name"`
	Email           *string         `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Phone           string          `gorm:"size:64;not null;default:''" json:"phone"`
	Status          VendorStatus    `gorm:"size:16;not null" json:"status"`
	Address         string          `gorm:"size:500" json:"address,omitempty"`
	ContactPerson   string          `gorm:"size:255" json:"contact_person,omitempty"`
	TaxID           string          `gorm:"size:64" json:"tax_id,omitempty"`
	AssetsAllocated int             `gorm:"not null;default:0" json:"assets_allocated"`
	ActiveSites     int             `gorm:"not null;default:0" json:"active_sites"`
	FreightCategory string          `gorm:"size:128" json:"freight_category,omitempty"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_cost"`
	Rating          decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`
	JoinedDate      *time.Time      `json:"joined_date,omitempty"`
	ContractStart   *time.Time      `json:"contract_start,omitempty"`
	ContractEnd     *time.Time      `json:"contract_end,omitempty"`
	Notes           string          `gorm:"size:1000" json:"notes,omitempty"`
	ImportBatchID   *uint64         `gorm:"index" json:"import_batch_id,omitempty"`
	ImportBatch     *ImportBatch    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

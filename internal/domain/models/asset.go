package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a physical ATM/BNA unit identified by its serial number.
type Asset struct {
	ID                 uint64          `gorm:"primaryKey" json:"id"`
	Name               string          `gorm:"size:255;not null" json:"name"`
	SerialNumber       string          `gorm:"size:128;not null;uniqueIndex" json:"serial_number"`
	AssetStatus        string          `gorm:"size:128" json:"asset_status,omitempty"`
	Status             string          `gorm:"size:32;not null;default:ACTIVE" json:"status"`
	Location           string          `gorm:"size:255;not null" json:"location"`
	Branch             string          `gorm:"size:255" json:"branch,omitempty"`
	VendorID           *uint64         `gorm:"index" json:"vendor_id,omitempty"`
	Vendor             *Vendor         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ImportBatchID      *uint64         `gorm:"index" json:"import_batch_id,omitempty"`
	ImportBatch        *ImportBatch    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Value              decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"value"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_amount"`
	Hold               decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"hold"`
	Deduction          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"deduction"`
	FinalAmount        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"final_amount"`
	VendorCost         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"vendor_cost"`
	InstallationDate   *time.Time      `json:"installation_date,omitempty"`
	LastMaintenance    *time.Time      `json:"last_maintenance_date,omitempty"`
	NextMaintenance    *time.Time      `json:"next_maintenance_date,omitempty"`
	BillingMonth       string          `gorm:"size:32" json:"billing_month,omitempty"`
	BillingStatus      string          `gorm:"size:64" json:"billing_status,omitempty"`
	PickupDate         *time.Time      `json:"pickup_date,omitempty"`
	DeliveryDate       *time.Time      `json:"delivery_date,omitempty"`
	AmountReceived     string          `gorm:"size:64" json:"amount_received,omitempty"`
	NoticeGenerated    bool            `gorm:"not null;default:false" json:"notice_generated"`
	Manufacturer       string          `gorm:"size:128" json:"manufacturer,omitempty"`
	Model              string          `gorm:"size:128" json:"model,omitempty"`
	CashCapacity       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"cash_capacity"`
	CurrentCashBalance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"current_cash_balance"`
	TransactionCount   int             `gorm:"not null;default:0" json:"transaction_count"`
	Notes              string          `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// AssetValue picks the figure an asset is valued at: the total cost when
// positive, otherwise the per-unit vendor cost when positive, otherwise zero.
func AssetValue(total, perUnit decimal.Decimal) decimal.Decimal {
	switch {
	case total.IsPositive():
		return total
	case perUnit.IsPositive():
		return perUnit
	default:
		return decimal.Zero
	}
}

package models

import "time"

// ImportSource says where a batch's rows came from.
type ImportSource string

const (
	SourceUpload      ImportSource = "upload"
	SourceGoogleSheet ImportSource = "google_sheet"
)

// ImportBatch is one ingested spreadsheet. Vendors, assets and movements it
// produced point back at it so the whole import can be rolled back.
type ImportBatch struct {
	ID               uint64       `gorm:"primaryKey" json:"id"`
	OriginalFilename string       `gorm:"size:255;not null" json:"original_filename"`
	StoredFilename   string       `gorm:"size:320;not null;uniqueIndex" json:"stored_filename"`
	FilePath         string       `gorm:"size:500" json:"file_path,omitempty"`
	FileSize         int64        `json:"file_size"`
	ContentType      string       `gorm:"size:128" json:"content_type,omitempty"`
	Source           ImportSource `gorm:"size:32;not null" json:"source"`
	TotalRows        int          `gorm:"not null;default:0" json:"total_rows"`
	UniqueVendors    int          `gorm:"not null;default:0" json:"unique_vendors"`
	VendorsCreated   int          `gorm:"not null;default:0" json:"vendors_created"`
	AssetsCreated    int          `gorm:"not null;default:0" json:"assets_created"`
	MovementsCreated int          `gorm:"not null;default:0" json:"movements_created"`
	Notes            string       `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	ProcessedAt      *time.Time   `json:"processed_at,omitempty"`
}

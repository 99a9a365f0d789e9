package models

import "time"

// Outcome is what happened to one record in one reconciliation stage.
type Outcome string

const (
	OutcomeCreated      Outcome = "created"
	OutcomeUpdated      Outcome = "updated"
	OutcomeDuplicate    Outcome = "skipped_duplicate"
	OutcomeMissingField Outcome = "skipped_missing_field"
	OutcomeError        Outcome = "error"
)

// Skipped reports whether the outcome left the store untouched on purpose.
func (o Outcome) Skipped() bool {
	return o == OutcomeDuplicate || o == OutcomeMissingField
}

// RowResult is the detail entry for one record.
type RowResult struct {
	Row     int     `json:"row" bson:"row"`
	Key     string  `json:"key" bson:"key"`
	Outcome Outcome `json:"outcome" bson:"outcome"`
	Message string  `json:"message,omitempty" bson:"message,omitempty"`
}

// StageResult tallies one entity stage of an import.
type StageResult struct {
	TotalProcessed int         `json:"total_processed" bson:"total_processed"`
	Created        int         `json:"created" bson:"created"`
	Updated        int         `json:"updated" bson:"updated"`
	Skipped        int         `json:"skipped" bson:"skipped"`
	Errors         int         `json:"errors" bson:"errors"`
	Details        []RowResult `json:"details" bson:"details"`
}

// Record counts r and appends it to the detail list. TotalProcessed is
// maintained by the caller since batched inserts are reported after the fact.
func (s *StageResult) Record(r RowResult) {
	switch {
	case r.Outcome == OutcomeCreated:
		s.Created++
	case r.Outcome == OutcomeUpdated:
		s.Updated++
	case r.Outcome.Skipped():
		s.Skipped++
	case r.Outcome == OutcomeError:
		s.Errors++
	}
	s.Details = append(s.Details, r)
}

// ImportReport is the full outcome of running one sheet through the pipeline.
type ImportReport struct {
	BatchID        uint64       `json:"batch_id" bson:"batch_id"`
	Filename       string       `json:"filename" bson:"filename"`
	Source         ImportSource `json:"source" bson:"source"`
	RowsSeen       int          `json:"rows_seen" bson:"rows_seen"`
	UniqueVendors  int          `json:"unique_vendors" bson:"unique_vendors"`
	VendorsCreated int          `json:"vendors_created" bson:"vendors_created"`
	Warnings       []string     `json:"warnings" bson:"warnings"`
	Vendors        []VendorRows `json:"vendors" bson:"vendors"`
	Assets         StageResult  `json:"assets" bson:"assets"`
	Movements      StageResult  `json:"movements" bson:"movements"`
	Costings       StageResult  `json:"costings" bson:"costings"`
	StartedAt      time.Time    `json:"started_at" bson:"started_at"`
	FinishedAt     time.Time    `json:"finished_at" bson:"finished_at"`
}

// DeletionSummary counts what a batch deletion removed.
type DeletionSummary struct {
	Costings        int64 `json:"costings"`
	Movements       int64 `json:"movements"`
	Assets          int64 `json:"assets"`
	Vendors         int64 `json:"vendors"`
	VendorsDetached int64 `json:"vendors_detached"`
	Total           int64 `json:"total"`
}

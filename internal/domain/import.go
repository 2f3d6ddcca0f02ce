package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportResult is the user-facing summary of one import batch.
type ImportResult struct {
	UniqueOrders     int      `json:"unique_orders"`
	InsertedOrders   int      `json:"inserted_orders"`
	DuplicateOrders  int      `json:"duplicate_orders"`
	ItemDuplicates   int      `json:"item_duplicates"`
	IgnoredFiles     int      `json:"ignored_files"`
	IgnoredFileNames []string `json:"ignored_file_names,omitempty"`
	IgnoredRows      int      `json:"ignored_rows"`
	LineItems        int      `json:"line_items"`
	Variants         int      `json:"variants"`
}

type ImportKind string

const (
	ImportKindOrders   ImportKind = "orders"
	ImportKindShipping ImportKind = "shipping"
)

type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// ImportRun is the audit record of one import batch.
type ImportRun struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	TenantID        uuid.UUID    `json:"user_id" db:"user_id"`
	Kind            ImportKind   `json:"kind" db:"kind"`
	Status          ImportStatus `json:"status" db:"status"`
	FileNames       []string     `json:"file_names" db:"-"`
	UniqueOrders    int          `json:"unique_orders" db:"unique_orders"`
	InsertedOrders  int          `json:"inserted_orders" db:"inserted_orders"`
	DuplicateOrders int          `json:"duplicate_orders" db:"duplicate_orders"`
	ItemDuplicates  int          `json:"item_duplicates" db:"item_duplicates"`
	IgnoredFiles    int          `json:"ignored_files" db:"ignored_files"`
	IgnoredRows     int          `json:"ignored_rows" db:"ignored_rows"`
	ErrorMessage    string       `json:"error_message,omitempty" db:"error_message"`
	StartedAt       time.Time    `json:"started_at" db:"started_at"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
}

// Apply copies batch counters onto the run.
func (r *ImportRun) Apply(res *ImportResult) {
	if res == nil {
		return
	}
	r.UniqueOrders = res.UniqueOrders
	r.InsertedOrders = res.InsertedOrders
	r.DuplicateOrders = res.DuplicateOrders
	r.ItemDuplicates = res.ItemDuplicates
	r.IgnoredFiles = res.IgnoredFiles
	r.IgnoredRows = res.IgnoredRows
}

// UploadedFile represents an uploaded file for processing
type UploadedFile struct {
	Filename string
	Data     []byte
}

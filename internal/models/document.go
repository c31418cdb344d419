package models

import "time"

// FileMetadata is one row of legal_files.
type FileMetadata struct {
	FileID      int64     `json:"file_id" db:"file_id"`
	FileURL     string    `json:"file_url" db:"file_url"`
	FileSummary string    `json:"file_summary" db:"file_summary"`
	CaseType    string    `json:"case_type" db:"case_type"`
	FileDate    string    `json:"date" db:"file_date"`
	FileName    string    `json:"file_name" db:"file_name"`
	StoragePath string    `json:"-" db:"storage_path"`
	Status      string    `json:"status" db:"status"`
	Error       string    `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

const (
	DocStatusPending    = "pending"
	DocStatusProcessing = "processing"
	DocStatusReady      = "ready"
	DocStatusFailed     = "failed"
)

// UnknownValue is stored when an upload omits caseType or date.
const UnknownValue = "unknown"

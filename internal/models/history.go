package models

import (
	"time"

	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportStatusGenerating ReportStatus = "generating"
	ReportStatusSuccess    ReportStatus = "success"
	ReportStatusFailed     ReportStatus = "failed"
)

// ReportHistoryEntry is the audit record for one execution attempt. It is
// created with status generating, finalized exactly once to success or
// failed, and never deleted.
type ReportHistoryEntry struct {
	gorm.Model
	RunID          string       `json:"run_id" gorm:"uniqueIndex;not null"`
	ScheduleID     uint         `json:"schedule_id" gorm:"index;not null"`
	FarmID         uint         `json:"farm_id" gorm:"index"`
	ReportType     ReportType   `json:"report_type"`
	Status         ReportStatus `json:"status" gorm:"not null"`
	GeneratedAt    *time.Time   `json:"generated_at"`
	SentAt         *time.Time   `json:"sent_at"`
	RecipientCount int          `json:"recipient_count"`
	FileSizeBytes  int64        `json:"file_size_bytes"`
	ErrorMessage   string       `json:"error_message,omitempty"`
}

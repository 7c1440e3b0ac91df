package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportAnalyticsSnapshot holds rolling per-schedule delivery statistics.
// It is created lazily on the first execution and updated in place with
// incremental formulas; it is never rebuilt from history entries.
//
// Invariant: TotalGenerated == TotalSent + TotalFailed at all times.
type ReportAnalyticsSnapshot struct {
	gorm.Model
	ScheduleID              uint       `json:"schedule_id" gorm:"uniqueIndex;not null"`
	FarmID                  uint       `json:"farm_id" gorm:"index"`
	ReportType              ReportType `json:"report_type"`
	TotalGenerated          int64      `json:"total_generated"`
	TotalSent               int64      `json:"total_sent"`
	TotalFailed             int64      `json:"total_failed"`
	SuccessRatePercent      float64    `json:"success_rate_percent"`
	AverageGenerationTimeMs float64    `json:"average_generation_time_ms"`
	AverageFileSizeBytes    float64    `json:"average_file_size_bytes"`
	LastGeneratedAt         *time.Time `json:"last_generated_at"`
	LastFailedAt            *time.Time `json:"last_failed_at"`
	LastFailureReason       string     `json:"last_failure_reason,omitempty"`
}

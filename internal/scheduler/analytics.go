package scheduler

import (
	"time"

	"farmpulse/internal/models"
)

// Outcome summarizes one finished execution attempt for the analytics
// aggregator.
type Outcome struct {
	Success         bool
	ExecutionTimeMs int64
	FileSizeBytes   int64
	ErrorMessage    string
}

// ApplyOutcome folds one execution outcome into a snapshot and returns the
// updated snapshot. When prev is nil the snapshot is seeded from this single
// execution. History is never replayed.
//
// AverageGenerationTimeMs includes failed attempts, since generation
// overhead is incurred even when delivery fails later. AverageFileSizeBytes
// is weighted by TotalSent and updated only on success, so failed attempts
// never dilute it.
func ApplyOutcome(prev *models.ReportAnalyticsSnapshot, sched *models.ReportSchedule, o Outcome, now time.Time) *models.ReportAnalyticsSnapshot {
	if prev == nil {
		snap := &models.ReportAnalyticsSnapshot{
			ScheduleID:              sched.ID,
			FarmID:                  sched.FarmID,
			ReportType:              sched.ReportType,
			TotalGenerated:          1,
			AverageGenerationTimeMs: float64(o.ExecutionTimeMs),
			LastGeneratedAt:         &now,
		}
		if o.Success {
			snap.TotalSent = 1
			snap.SuccessRatePercent = 100
			snap.AverageFileSizeBytes = float64(o.FileSizeBytes)
		} else {
			snap.TotalFailed = 1
			snap.LastFailedAt = &now
			snap.LastFailureReason = o.ErrorMessage
		}
		return snap
	}

	snap := *prev
	snap.TotalGenerated++
	if o.Success {
		snap.TotalSent++
		snap.AverageFileSizeBytes = (snap.AverageFileSizeBytes*float64(snap.TotalSent-1) + float64(o.FileSizeBytes)) / float64(snap.TotalSent)
	} else {
		snap.TotalFailed++
		snap.LastFailedAt = &now
		snap.LastFailureReason = o.ErrorMessage
	}
	snap.SuccessRatePercent = float64(snap.TotalSent) / float64(snap.TotalGenerated) * 100
	snap.AverageGenerationTimeMs = (snap.AverageGenerationTimeMs*float64(snap.TotalGenerated-1) + float64(o.ExecutionTimeMs)) / float64(snap.TotalGenerated)
	snap.LastGeneratedAt = &now
	return &snap
}

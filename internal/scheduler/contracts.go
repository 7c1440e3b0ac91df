package scheduler

import (
	"context"
	"time"

	"farmpulse/internal/models"
)

// ScheduleStore reads schedules and advances their timing fields. The
// scheduler is the only writer of last_run/next_run.
type ScheduleStore interface {
	Get(ctx context.Context, id uint) (*models.ReportSchedule, error)
	// ListDue returns active schedules whose next_run is at or before now.
	ListDue(ctx context.Context, now time.Time) ([]models.ReportSchedule, error)
	AdvanceRun(ctx context.Context, id uint, lastRun, nextRun time.Time) error
}

// HistoryStore appends and finalizes audit records. Finalize must be called
// at most once per entry; terminal entries are immutable.
type HistoryStore interface {
	Create(ctx context.Context, entry *models.ReportHistoryEntry) error
	Finalize(ctx context.Context, entry *models.ReportHistoryEntry) error
}

// AnalyticsStore persists rolling per-schedule statistics. Get returns
// ErrSnapshotNotFound before the schedule's first execution.
type AnalyticsStore interface {
	Get(ctx context.Context, scheduleID uint) (*models.ReportAnalyticsSnapshot, error)
	Save(ctx context.Context, snap *models.ReportAnalyticsSnapshot) error
}

// Generator renders a report artifact for a farm over a reporting window.
type Generator interface {
	Generate(ctx context.Context, farmID uint, reportType models.ReportType, windowStart, windowEnd time.Time) ([]byte, error)
}

// Deliverer sends a generated artifact to the schedule's recipients.
type Deliverer interface {
	SendWithAttachment(ctx context.Context, recipients []string, subject, body string, attachment []byte, filename string) error
}

// FailureAlerter receives a notification after a failed execution, once the
// analytics snapshot has been updated. Advisory only; errors are logged and
// never affect scheduling.
type FailureAlerter interface {
	ExecutionFailed(sched *models.ReportSchedule, snap *models.ReportAnalyticsSnapshot)
}

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

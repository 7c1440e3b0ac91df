package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"farmpulse/internal/models"
)

// Result is the outcome of one pipeline execution, returned to the tick
// loop and to manual-trigger callers.
type Result struct {
	ScheduleID      uint   `json:"schedule_id"`
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Err             error  `json:"-"`
}

// Pipeline runs a single report job end to end: history entry, generation,
// delivery, schedule advancement and analytics. All collaborator failures
// are contained; Execute never panics and never returns an error that should
// stop the surrounding tick.
type Pipeline struct {
	Schedules ScheduleStore
	History   HistoryStore
	Analytics AnalyticsStore
	Generator Generator
	Deliverer Deliverer
	Alerter   FailureAlerter // optional
	Clock     Clock
	// JobTimeout bounds the generation and delivery calls together. It
	// should be shorter than the scheduler tick interval.
	JobTimeout time.Duration
	Log        zerolog.Logger
}

// Execute runs the schedule with the given id. A missing schedule yields a
// failed result without any history entry. On success the schedule's
// last_run/next_run are advanced relative to the actual completion time; on
// any failure they are left untouched, so the schedule stays due and is
// retried on every subsequent tick until it succeeds.
func (p *Pipeline) Execute(ctx context.Context, scheduleID uint) (res Result) {
	clock := p.Clock
	if clock == nil {
		clock = SystemClock()
	}
	start := clock.Now()

	defer func() {
		if r := recover(); r != nil {
			res = Result{
				ScheduleID:      scheduleID,
				Message:         fmt.Sprintf("report execution panicked: %v", r),
				ExecutionTimeMs: clock.Now().Sub(start).Milliseconds(),
				Err:             fmt.Errorf("panic: %v", r),
			}
			p.Log.Error().Uint("schedule_id", scheduleID).Interface("panic", r).Msg("report execution panicked")
		}
	}()

	sched, err := p.Schedules.Get(ctx, scheduleID)
	if err != nil {
		msg := fmt.Sprintf("schedule %d could not be loaded", scheduleID)
		if errors.Is(err, ErrScheduleNotFound) {
			msg = fmt.Sprintf("schedule %d not found", scheduleID)
		}
		return Result{
			ScheduleID:      scheduleID,
			Message:         msg,
			ExecutionTimeMs: clock.Now().Sub(start).Milliseconds(),
			Err:             err,
		}
	}

	// A broken custom expression fails the run before any external call;
	// it would otherwise only surface after a successful delivery, when the
	// next run time cannot be computed.
	if sched.Frequency == models.FrequencyCustom {
		if _, err := NextRun(sched.Frequency, sched.CronExpr, start); err != nil {
			return p.fail(ctx, clock, sched, nil, start, err)
		}
	}

	entry := &models.ReportHistoryEntry{
		RunID:      uuid.NewString(),
		ScheduleID: sched.ID,
		FarmID:     sched.FarmID,
		ReportType: sched.ReportType,
		Status:     models.ReportStatusGenerating,
	}
	if err := p.History.Create(ctx, entry); err != nil {
		return p.fail(ctx, clock, sched, nil, start, fmt.Errorf("create history entry: %w", err))
	}

	// Reporting window: trailing calendar month up to now. The generation
	// service interprets it; the scheduler does not.
	windowEnd := start
	windowStart := windowEnd.AddDate(0, -1, 0)

	jobCtx := ctx
	if p.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, p.JobTimeout)
		defer cancel()
	}

	artifact, err := p.Generator.Generate(jobCtx, sched.FarmID, sched.ReportType, windowStart, windowEnd)
	if err != nil {
		return p.fail(ctx, clock, sched, entry, start, fmt.Errorf("generate report: %w", err))
	}

	filename := fmt.Sprintf("%s-report-%s.xlsx", sched.ReportType, windowEnd.Format("2006-01-02"))
	subject := fmt.Sprintf("FarmPulse %s report: %s", sched.ReportType, sched.Name)
	body := fmt.Sprintf("Attached is the %s report for the period %s to %s.",
		sched.ReportType,
		windowStart.Format("2006-01-02"),
		windowEnd.Format("2006-01-02"))

	if err := p.Deliverer.SendWithAttachment(jobCtx, sched.Recipients, subject, body, artifact, filename); err != nil {
		return p.fail(ctx, clock, sched, entry, start, fmt.Errorf("deliver report: %w", err))
	}

	done := clock.Now()
	elapsed := done.Sub(start).Milliseconds()

	entry.Status = models.ReportStatusSuccess
	entry.GeneratedAt = &done
	entry.SentAt = &done
	entry.RecipientCount = len(sched.Recipients)
	entry.FileSizeBytes = int64(len(artifact))
	if err := p.History.Finalize(ctx, entry); err != nil {
		// The report went out; keep going so timing and analytics stay
		// consistent, but surface the write failure.
		p.Log.Error().Err(err).Uint("schedule_id", sched.ID).Str("run_id", entry.RunID).Msg("failed to finalize history entry")
	}

	next, err := NextRun(sched.Frequency, sched.CronExpr, done)
	if err != nil {
		return Result{
			ScheduleID:      sched.ID,
			Message:         fmt.Sprintf("report sent but next run could not be computed: %v", err),
			ExecutionTimeMs: elapsed,
			Err:             err,
		}
	}
	if err := p.Schedules.AdvanceRun(ctx, sched.ID, done, next); err != nil {
		return Result{
			ScheduleID:      sched.ID,
			Message:         fmt.Sprintf("report sent but schedule could not be advanced: %v", err),
			ExecutionTimeMs: elapsed,
			Err:             err,
		}
	}

	p.updateAnalytics(ctx, sched, Outcome{
		Success:         true,
		ExecutionTimeMs: elapsed,
		FileSizeBytes:   int64(len(artifact)),
	}, done)

	p.Log.Info().
		Uint("schedule_id", sched.ID).
		Str("run_id", entry.RunID).
		Int("recipients", len(sched.Recipients)).
		Int("bytes", len(artifact)).
		Int64("elapsed_ms", elapsed).
		Time("next_run", next).
		Msg("report delivered")

	return Result{
		ScheduleID:      sched.ID,
		Success:         true,
		Message:         fmt.Sprintf("report sent to %d recipient(s)", len(sched.Recipients)),
		ExecutionTimeMs: elapsed,
	}
}

// fail finalizes the history entry (when one was created), records the
// failure in analytics and leaves the schedule's timing fields untouched so
// it remains due.
func (p *Pipeline) fail(ctx context.Context, clock Clock, sched *models.ReportSchedule, entry *models.ReportHistoryEntry, start time.Time, cause error) Result {
	done := clock.Now()
	elapsed := done.Sub(start).Milliseconds()

	if entry != nil {
		entry.Status = models.ReportStatusFailed
		entry.GeneratedAt = &done
		entry.ErrorMessage = cause.Error()
		if err := p.History.Finalize(ctx, entry); err != nil {
			p.Log.Error().Err(err).Uint("schedule_id", sched.ID).Str("run_id", entry.RunID).Msg("failed to finalize history entry")
		}
	}

	snap := p.updateAnalytics(ctx, sched, Outcome{
		ExecutionTimeMs: elapsed,
		ErrorMessage:    cause.Error(),
	}, done)

	if p.Alerter != nil && snap != nil {
		p.Alerter.ExecutionFailed(sched, snap)
	}

	p.Log.Warn().
		Err(cause).
		Uint("schedule_id", sched.ID).
		Int64("elapsed_ms", elapsed).
		Msg("report execution failed, schedule remains due")

	return Result{
		ScheduleID:      sched.ID,
		Message:         fmt.Sprintf("report execution failed: %v", cause),
		ExecutionTimeMs: elapsed,
		Err:             cause,
	}
}

func (p *Pipeline) updateAnalytics(ctx context.Context, sched *models.ReportSchedule, o Outcome, now time.Time) *models.ReportAnalyticsSnapshot {
	prev, err := p.Analytics.Get(ctx, sched.ID)
	if err != nil && !errors.Is(err, ErrSnapshotNotFound) {
		p.Log.Error().Err(err).Uint("schedule_id", sched.ID).Msg("failed to load analytics snapshot")
		return nil
	}
	snap := ApplyOutcome(prev, sched, o, now)
	if err := p.Analytics.Save(ctx, snap); err != nil {
		p.Log.Error().Err(err).Uint("schedule_id", sched.ID).Msg("failed to save analytics snapshot")
		return nil
	}
	return snap
}

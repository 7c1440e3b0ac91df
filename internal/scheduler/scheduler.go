package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"farmpulse/internal/models"
)

const (
	defaultInterval = 60 * time.Second
	defaultWorkers  = 4
)

// Status is the scheduler's operational state.
type Status struct {
	Running     bool `json:"running"`
	ActiveTasks int  `json:"active_tasks"`
}

// Scheduler drives all report jobs from a single fixed-interval ticker. It
// is an owned component: construct one in main and pass the handle around,
// there is no package-level instance.
type Scheduler struct {
	pipeline  *Pipeline
	schedules ScheduleStore
	clock     Clock
	interval  time.Duration
	workers   int64
	log       zerolog.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}

	active atomic.Int64

	// inflight guards against the same schedule being executed twice when a
	// slow tick overlaps the next one.
	inflightMu sync.Mutex
	inflight   map[uint]struct{}
}

// New creates a scheduler. interval <= 0 falls back to 60s, workers <= 0 to 4.
func New(pipeline *Pipeline, schedules ScheduleStore, interval time.Duration, workers int, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	clock := pipeline.Clock
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{
		pipeline:  pipeline,
		schedules: schedules,
		clock:     clock,
		interval:  interval,
		workers:   int64(workers),
		log:       log,
		inflight:  make(map[uint]struct{}),
	}
}

// Start launches the ticker goroutine. Idempotent: a second call while
// running is a no-op and never creates a second timer.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	go s.run(s.stop)
	s.log.Info().Dur("interval", s.interval).Int64("workers", s.workers).Msg("report scheduler started")
}

// Stop cancels the ticker. Idempotent. Jobs already in flight run to
// completion; no new tick starts.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	s.log.Info().Msg("report scheduler stopped")
}

// Status reports whether the ticker is running and how many jobs are
// currently executing.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	return Status{
		Running:     running,
		ActiveTasks: int(s.active.Load()),
	}
}

// RunNow executes a single schedule outside the tick cycle, for manual
// triggering. It honors the in-flight guard and returns ErrAlreadyRunning
// when the schedule is being executed by a tick.
func (s *Scheduler) RunNow(ctx context.Context, scheduleID uint) (Result, error) {
	if !s.claim(scheduleID) {
		return Result{}, ErrAlreadyRunning
	}
	defer s.release(scheduleID)

	s.active.Add(1)
	defer s.active.Add(-1)
	return s.pipeline.Execute(ctx, scheduleID), nil
}

func (s *Scheduler) run(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First tick immediately so a restart does not delay already-due jobs
	// by a full interval.
	s.Tick(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Tick(context.Background())
		case <-stop:
			return
		}
	}
}

// Tick selects due schedules and fans the pipeline out over a bounded
// worker pool. A selector failure abandons the whole tick; nothing is
// touched and the next tick retries. Per-job failures and panics are
// contained so one broken job never blocks its siblings.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now()
	due, err := s.schedules.ListDue(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("due-schedule query failed, abandoning tick")
		return
	}
	if len(due) == 0 {
		return
	}
	s.log.Debug().Int("due", len(due)).Msg("tick")

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	for _, sched := range due {
		if !sched.IsActive {
			continue
		}
		if !s.claim(sched.ID) {
			s.log.Warn().Uint("schedule_id", sched.ID).Msg("schedule still in flight from a previous tick, skipping")
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			s.release(sched.ID)
			s.log.Error().Err(err).Msg("worker pool acquire failed, abandoning rest of tick")
			break
		}

		wg.Add(1)
		go func(sched models.ReportSchedule) {
			defer wg.Done()
			defer sem.Release(1)
			defer s.release(sched.ID)

			s.active.Add(1)
			defer s.active.Add(-1)

			res := s.pipeline.Execute(ctx, sched.ID)
			if !res.Success {
				s.log.Warn().Uint("schedule_id", sched.ID).Str("message", res.Message).Msg("job failed")
			}
		}(sched)
	}
	wg.Wait()
}

func (s *Scheduler) claim(id uint) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, ok := s.inflight[id]; ok {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *Scheduler) release(id uint) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, id)
}

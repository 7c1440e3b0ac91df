package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmpulse/internal/models"
)

func newTestScheduler(f *pipelineFixture) *Scheduler {
	return New(f.pipeline, f.schedules, time.Minute, 2, zerolog.Nop())
}

func TestStartIsIdempotent(t *testing.T) {
	clock := &fakeClock{times: []time.Time{time.Now()}}
	f := newPipelineFixture(clock)
	s := newTestScheduler(f)

	s.Start()
	s.Start()
	assert.True(t, s.Status().Running)

	s.Stop()
	s.Stop()
	assert.False(t, s.Status().Running)

	// Restartable after a stop.
	s.Start()
	assert.True(t, s.Status().Running)
	s.Stop()
}

func TestTickSkipsInactiveSchedules(t *testing.T) {
	now := time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{times: []time.Time{now}}

	active := testSchedule(1)
	active.NextRun = now.Add(-time.Hour)
	inactive := testSchedule(2)
	inactive.IsActive = false
	inactive.NextRun = now.Add(-24 * time.Hour) // long overdue but disabled

	f := newPipelineFixture(clock, active, inactive)
	s := newTestScheduler(f)

	s.Tick(context.Background())

	require.Equal(t, 1, f.deliverer.count())
	assert.Equal(t, []uint{42}, f.generator.calls)
	assert.Nil(t, f.schedules.schedules[2].LastRun, "inactive schedule must never run")
}

func TestTickNotDueSchedulesUntouched(t *testing.T) {
	now := time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{times: []time.Time{now}}

	future := testSchedule(1)
	future.NextRun = now.Add(time.Hour)

	f := newPipelineFixture(clock, future)
	s := newTestScheduler(f)

	s.Tick(context.Background())
	assert.Equal(t, 0, f.deliverer.count())
	assert.Empty(t, f.history.all())
}

func TestTickIsolatesFailuresBetweenJobs(t *testing.T) {
	now := time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{times: []time.Time{now}}

	broken := testSchedule(1)
	broken.FarmID = 10
	broken.NextRun = now.Add(-time.Hour)
	healthy := testSchedule(2)
	healthy.FarmID = 20
	healthy.NextRun = now.Add(-time.Hour)

	f := newPipelineFixture(clock, broken, healthy)
	f.generator.failFor = map[uint]error{10: errors.New("renderer crashed")}
	s := newTestScheduler(f)

	s.Tick(context.Background())

	// The healthy job ran and was recorded despite its sibling failing.
	require.Equal(t, 1, f.deliverer.count())
	assert.Nil(t, f.schedules.schedules[1].LastRun)
	assert.NotNil(t, f.schedules.schedules[2].LastRun)

	var succeeded, failed int
	for _, e := range f.history.all() {
		switch e.Status {
		case models.ReportStatusSuccess:
			succeeded++
		case models.ReportStatusFailed:
			failed++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
}

func TestTickAbandonedOnSelectorError(t *testing.T) {
	now := time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{times: []time.Time{now}}

	sched := testSchedule(1)
	sched.NextRun = now.Add(-time.Hour)
	f := newPipelineFixture(clock, sched)
	f.schedules.listErr = errors.New("connection reset")
	s := newTestScheduler(f)

	s.Tick(context.Background())
	assert.Equal(t, 0, f.deliverer.count())
	assert.Empty(t, f.history.all(), "no job may be touched when the due query fails")

	// The next tick retries the query and processes the backlog.
	f.schedules.listErr = nil
	clock.times = []time.Time{now.Add(time.Minute), now.Add(time.Minute)}
	s.Tick(context.Background())
	assert.Equal(t, 1, f.deliverer.count())
}

func TestListDueIsIdempotentWithoutExecution(t *testing.T) {
	now := time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)
	sched := testSchedule(1)
	sched.NextRun = now.Add(-time.Hour)
	store := newFakeScheduleStore(sched)

	first, err := store.ListDue(context.Background(), now)
	require.NoError(t, err)
	second, err := store.ListDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunNowRejectsConcurrentExecution(t *testing.T) {
	clock := &fakeClock{times: []time.Time{time.Now()}}
	sched := testSchedule(1)
	f := newPipelineFixture(clock, sched)
	s := newTestScheduler(f)

	require.True(t, s.claim(1))
	_, err := s.RunNow(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	s.release(1)

	res, err := s.RunNow(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestRunNowReportsFailedResultWithoutError(t *testing.T) {
	clock := &fakeClock{times: []time.Time{time.Now()}}
	sched := testSchedule(1)
	f := newPipelineFixture(clock, sched)
	f.generator.err = errors.New("boom")
	s := newTestScheduler(f)

	res, err := s.RunNow(context.Background(), 1)
	require.NoError(t, err, "a job failure is a result, not a scheduler error")
	assert.False(t, res.Success)
}

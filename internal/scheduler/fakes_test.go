package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"farmpulse/internal/models"
)

func gormModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

// fakeClock returns queued times in order, repeating the last one.
type fakeClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.times) == 0 {
		return time.Time{}
	}
	now := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return now
}

type fakeScheduleStore struct {
	mu        sync.Mutex
	schedules map[uint]*models.ReportSchedule
	listErr   error
	advErr    error
	listCalls int
}

func newFakeScheduleStore(scheds ...*models.ReportSchedule) *fakeScheduleStore {
	s := &fakeScheduleStore{schedules: make(map[uint]*models.ReportSchedule)}
	for _, sched := range scheds {
		s.schedules[sched.ID] = sched
	}
	return s
}

func (s *fakeScheduleStore) Get(_ context.Context, id uint) (*models.ReportSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sched, ok := s.schedules[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrScheduleNotFound, id)
	}
	dup := *sched
	return &dup, nil
}

func (s *fakeScheduleStore) ListDue(_ context.Context, now time.Time) ([]models.ReportSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	var due []models.ReportSchedule
	for _, sched := range s.schedules {
		if sched.IsActive && !sched.NextRun.After(now) {
			due = append(due, *sched)
		}
	}
	return due, nil
}

func (s *fakeScheduleStore) AdvanceRun(_ context.Context, id uint, lastRun, nextRun time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.advErr != nil {
		return s.advErr
	}
	sched, ok := s.schedules[id]
	if !ok {
		return ErrScheduleNotFound
	}
	lr := lastRun
	sched.LastRun = &lr
	sched.NextRun = nextRun
	return nil
}

type fakeHistoryStore struct {
	mu        sync.Mutex
	entries   []*models.ReportHistoryEntry
	createErr error
	nextID    uint
}

func (h *fakeHistoryStore) Create(_ context.Context, entry *models.ReportHistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.createErr != nil {
		return h.createErr
	}
	h.nextID++
	entry.ID = h.nextID
	dup := *entry
	h.entries = append(h.entries, &dup)
	return nil
}

func (h *fakeHistoryStore) Finalize(_ context.Context, entry *models.ReportHistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.entries {
		if e.ID != entry.ID {
			continue
		}
		if e.Status != models.ReportStatusGenerating {
			return fmt.Errorf("history entry %d is not in generating state", e.ID)
		}
		dup := *entry
		h.entries[i] = &dup
		return nil
	}
	return errors.New("history entry not found")
}

func (h *fakeHistoryStore) all() []*models.ReportHistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*models.ReportHistoryEntry, len(h.entries))
	for i, e := range h.entries {
		dup := *e
		out[i] = &dup
	}
	return out
}

type fakeAnalyticsStore struct {
	mu    sync.Mutex
	snaps map[uint]*models.ReportAnalyticsSnapshot
}

func newFakeAnalyticsStore() *fakeAnalyticsStore {
	return &fakeAnalyticsStore{snaps: make(map[uint]*models.ReportAnalyticsSnapshot)}
}

func (a *fakeAnalyticsStore) Get(_ context.Context, scheduleID uint) (*models.ReportAnalyticsSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	snap, ok := a.snaps[scheduleID]
	if !ok {
		return nil, fmt.Errorf("%w: schedule %d", ErrSnapshotNotFound, scheduleID)
	}
	dup := *snap
	return &dup, nil
}

func (a *fakeAnalyticsStore) Save(_ context.Context, snap *models.ReportAnalyticsSnapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	dup := *snap
	a.snaps[snap.ScheduleID] = &dup
	return nil
}

// fakeGenerator returns canned artifacts, errors or panics per farm id.
type fakeGenerator struct {
	mu       sync.Mutex
	artifact []byte
	err      error
	panicMsg string
	failFor  map[uint]error
	calls    []uint
}

func (g *fakeGenerator) Generate(_ context.Context, farmID uint, _ models.ReportType, _, _ time.Time) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, farmID)
	if g.panicMsg != "" {
		panic(g.panicMsg)
	}
	if err, ok := g.failFor[farmID]; ok {
		return nil, err
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.artifact, nil
}

type delivery struct {
	recipients []string
	subject    string
	filename   string
	size       int
}

type fakeDeliverer struct {
	mu         sync.Mutex
	err        error
	deliveries []delivery
}

func (d *fakeDeliverer) SendWithAttachment(_ context.Context, recipients []string, subject, _ string, attachment []byte, filename string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.deliveries = append(d.deliveries, delivery{
		recipients: recipients,
		subject:    subject,
		filename:   filename,
		size:       len(attachment),
	})
	return nil
}

func (d *fakeDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.deliveries)
}

type fakeAlerter struct {
	mu    sync.Mutex
	calls int
}

func (a *fakeAlerter) ExecutionFailed(*models.ReportSchedule, *models.ReportAnalyticsSnapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
}

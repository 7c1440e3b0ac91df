package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"farmpulse/internal/models"
	"farmpulse/internal/scheduler"
)

// ScheduleStore is the gorm-backed implementation of
// scheduler.ScheduleStore.
type ScheduleStore struct {
	db *gorm.DB
}

func NewScheduleStore(db *gorm.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

func (s *ScheduleStore) Get(ctx context.Context, id uint) (*models.ReportSchedule, error) {
	var sched models.ReportSchedule
	if err := s.db.WithContext(ctx).First(&sched, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", scheduler.ErrScheduleNotFound, id)
		}
		return nil, fmt.Errorf("load schedule %d: %w", id, err)
	}
	return &sched, nil
}

func (s *ScheduleStore) ListDue(ctx context.Context, now time.Time) ([]models.ReportSchedule, error) {
	var due []models.ReportSchedule
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND next_run <= ?", true, now).
		Find(&due).Error
	if err != nil {
		return nil, fmt.Errorf("query due schedules: %w", err)
	}
	return due, nil
}

func (s *ScheduleStore) List(ctx context.Context) ([]models.ReportSchedule, error) {
	var scheds []models.ReportSchedule
	if err := s.db.WithContext(ctx).Order("id").Find(&scheds).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return scheds, nil
}

// AdvanceRun writes the timing fields after a successful execution. These
// two columns are owned by the scheduler; nothing else writes them.
func (s *ScheduleStore) AdvanceRun(ctx context.Context, id uint, lastRun, nextRun time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.ReportSchedule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_run": lastRun,
			"next_run": nextRun,
		})
	if res.Error != nil {
		return fmt.Errorf("advance schedule %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", scheduler.ErrScheduleNotFound, id)
	}
	return nil
}

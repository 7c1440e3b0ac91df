package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"farmpulse/internal/models"
	"farmpulse/internal/scheduler"
)

// AnalyticsStore is the gorm-backed implementation of
// scheduler.AnalyticsStore.
type AnalyticsStore struct {
	db *gorm.DB
}

func NewAnalyticsStore(db *gorm.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

func (a *AnalyticsStore) Get(ctx context.Context, scheduleID uint) (*models.ReportAnalyticsSnapshot, error) {
	var snap models.ReportAnalyticsSnapshot
	err := a.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: schedule %d", scheduler.ErrSnapshotNotFound, scheduleID)
		}
		return nil, fmt.Errorf("load analytics for schedule %d: %w", scheduleID, err)
	}
	return &snap, nil
}

func (a *AnalyticsStore) Save(ctx context.Context, snap *models.ReportAnalyticsSnapshot) error {
	if err := a.db.WithContext(ctx).Save(snap).Error; err != nil {
		return fmt.Errorf("save analytics for schedule %d: %w", snap.ScheduleID, err)
	}
	return nil
}

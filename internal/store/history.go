package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"farmpulse/internal/models"
)

// HistoryStore is the gorm-backed implementation of scheduler.HistoryStore.
type HistoryStore struct {
	db *gorm.DB
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (h *HistoryStore) Create(ctx context.Context, entry *models.ReportHistoryEntry) error {
	if err := h.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create history entry: %w", err)
	}
	return nil
}

// Finalize writes the terminal state of an entry. Only entries still in the
// generating state are updated, so a terminal entry can never transition
// again.
func (h *HistoryStore) Finalize(ctx context.Context, entry *models.ReportHistoryEntry) error {
	res := h.db.WithContext(ctx).
		Model(&models.ReportHistoryEntry{}).
		Where("id = ? AND status = ?", entry.ID, models.ReportStatusGenerating).
		Updates(map[string]interface{}{
			"status":          entry.Status,
			"generated_at":    entry.GeneratedAt,
			"sent_at":         entry.SentAt,
			"recipient_count": entry.RecipientCount,
			"file_size_bytes": entry.FileSizeBytes,
			"error_message":   entry.ErrorMessage,
		})
	if res.Error != nil {
		return fmt.Errorf("finalize history entry %d: %w", entry.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("history entry %d is not in generating state", entry.ID)
	}
	return nil
}

// ListBySchedule returns the most recent entries for a schedule, newest
// first.
func (h *HistoryStore) ListBySchedule(ctx context.Context, scheduleID uint, limit int) ([]models.ReportHistoryEntry, error) {
	q := h.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []models.ReportHistoryEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list history for schedule %d: %w", scheduleID, err)
	}
	return entries, nil
}

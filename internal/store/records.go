package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"farmpulse/internal/models"
)

// RecordStore reads farm production and bookkeeping records for report
// content. It implements report.DataStore.
type RecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (r *RecordStore) ProductionRecords(ctx context.Context, farmID uint, start, end time.Time) ([]models.ProductionRecord, error) {
	var recs []models.ProductionRecord
	err := r.db.WithContext(ctx).
		Where("farm_id = ? AND recorded_at BETWEEN ? AND ?", farmID, start, end).
		Order("recorded_at").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("query production records: %w", err)
	}
	return recs, nil
}

func (r *RecordStore) SaleRecords(ctx context.Context, farmID uint, start, end time.Time) ([]models.SaleRecord, error) {
	var recs []models.SaleRecord
	err := r.db.WithContext(ctx).
		Where("farm_id = ? AND sold_at BETWEEN ? AND ?", farmID, start, end).
		Order("sold_at").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("query sale records: %w", err)
	}
	return recs, nil
}

func (r *RecordStore) ExpenseRecords(ctx context.Context, farmID uint, start, end time.Time) ([]models.ExpenseRecord, error) {
	var recs []models.ExpenseRecord
	err := r.db.WithContext(ctx).
		Where("farm_id = ? AND incurred_at BETWEEN ? AND ?", farmID, start, end).
		Order("incurred_at").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("query expense records: %w", err)
	}
	return recs, nil
}

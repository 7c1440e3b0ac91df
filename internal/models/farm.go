package models

import (
	"time"

	"gorm.io/gorm"
)

// Farm production and bookkeeping records. CRUD for these lives in the
// administration API; the report generator only reads them.

type ProductionRecord struct {
	gorm.Model
	FarmID     uint      `json:"farm_id" gorm:"index;not null"`
	Product    string    `json:"product"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
	RecordedAt time.Time `json:"recorded_at" gorm:"index"`
	Notes      string    `json:"notes,omitempty"`
}

type SaleRecord struct {
	gorm.Model
	FarmID       uint      `json:"farm_id" gorm:"index;not null"`
	Buyer        string    `json:"buyer"`
	Product      string    `json:"product"`
	Quantity     float64   `json:"quantity"`
	PricePerUnit float64   `json:"price_per_unit"`
	AmountPaid   float64   `json:"amount_paid"`
	SoldAt       time.Time `json:"sold_at" gorm:"index"`
}

// Total returns the sale's gross amount.
func (s SaleRecord) Total() float64 {
	return s.Quantity * s.PricePerUnit
}

type ExpenseRecord struct {
	gorm.Model
	FarmID     uint      `json:"farm_id" gorm:"index;not null"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	IncurredAt time.Time `json:"incurred_at" gorm:"index"`
	Notes      string    `json:"notes,omitempty"`
}

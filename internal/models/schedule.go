package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Frequency is the closed set of supported report cadences. FrequencyCustom
// requires a cron expression on the schedule; the calendar frequencies never
// consult it.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCustom  Frequency = "custom"
)

type ReportType string

const (
	ReportTypeProduction ReportType = "production"
	ReportTypeFinancial  ReportType = "financial"
	ReportTypeSales      ReportType = "sales"
)

// Recipients is stored as a JSON array column.
type Recipients []string

func (r Recipients) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Recipients) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Recipients", value)
	}
}

// ReportSchedule is a recurring obligation to produce and deliver a report.
// Created and edited by the administration layer; the scheduler only ever
// writes LastRun and NextRun, and only on a successful execution.
type ReportSchedule struct {
	gorm.Model
	FarmID     uint       `json:"farm_id" gorm:"index;not null"`
	Name       string     `json:"name" gorm:"not null"`
	ReportType ReportType `json:"report_type" gorm:"not null"`
	Recipients Recipients `json:"recipients" gorm:"type:json"`
	Frequency  Frequency  `json:"frequency" gorm:"not null"`
	CronExpr   string     `json:"cron_expr,omitempty"`
	IsActive   bool       `json:"is_active" gorm:"default:true"`
	LastRun    *time.Time `json:"last_run"`
	NextRun    time.Time  `json:"next_run" gorm:"index"`
}

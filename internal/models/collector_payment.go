package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollectorPayment aggregates a collector's earnings for a settlement
// window: adjusted liters handled, fees owed, penalties charged. One row per
// (collector, window), same create-or-update rule as farmer payments.
type CollectorPayment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	GUID         string     `gorm:"uniqueIndex;not null" json:"guid"`
	CollectorID  uint       `gorm:"not null;uniqueIndex:idx_collector_payments_window,priority:1" json:"collector_id"`
	PeriodStart  time.Time  `gorm:"type:date;not null;uniqueIndex:idx_collector_payments_window,priority:2" json:"period_start"`
	PeriodEnd    time.Time  `gorm:"type:date;not null;uniqueIndex:idx_collector_payments_window,priority:3" json:"period_end"`
	TotalLiters  float64    `gorm:"type:decimal(12,3);default:0" json:"total_liters"`
	TotalPenalty float64    `gorm:"type:decimal(12,2);default:0" json:"total_penalty"`
	TotalFee     float64    `gorm:"type:decimal(12,2);default:0" json:"total_fee"`
	Status       string     `gorm:"default:pending;not null;index" json:"status"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Associations
	Collector User `gorm:"foreignKey:CollectorID" json:"collector,omitempty"`
}

// TableName specifies the table name for CollectorPayment
func (CollectorPayment) TableName() string {
	return "collector_payments"
}

// BeforeCreate assigns the reference GUID.
func (p *CollectorPayment) BeforeCreate(tx *gorm.DB) error {
	if p.GUID == "" {
		p.GUID = uuid.NewString()
	}
	return nil
}

// NetEarnings is what the collector actually receives: fees minus penalties.
func (p *CollectorPayment) NetEarnings() float64 {
	return p.TotalFee - p.TotalPenalty
}

// MayMarkPaid returns true if the collector payment can be settled
func (p *CollectorPayment) MayMarkPaid() bool {
	return p.Status == PaymentStatusPending
}

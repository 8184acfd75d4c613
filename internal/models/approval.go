package models

import (
	"time"
)

// Approval records the outcome of a batch approval for one collection:
// the liters the proportional redistribution assigned to it, the variance
// against what the collector originally recorded, and any penalty charged
// for a shortfall beyond tolerance. Immutable except for penalty status.
type Approval struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CollectionID    uint      `gorm:"not null;uniqueIndex" json:"collection_id"`
	CollectorID     uint      `gorm:"not null;index" json:"collector_id"`
	ApprovedByID    uint      `gorm:"not null" json:"approved_by_id"`
	CollectionDate  time.Time `gorm:"type:date;not null;index" json:"collection_date"`
	RecordedLiters  float64   `gorm:"type:decimal(10,3);not null" json:"recorded_liters"`
	AdjustedLiters  float64   `gorm:"type:decimal(12,6);not null" json:"adjusted_liters"`
	Variance        float64   `gorm:"type:decimal(12,6);not null" json:"variance"`
	VariancePercent float64   `gorm:"type:decimal(8,4);not null" json:"variance_percent"`
	PenaltyAmount   float64   `gorm:"type:decimal(12,2);default:0" json:"penalty_amount"`
	PenaltyStatus   string    `gorm:"default:pending;not null" json:"penalty_status"`
	FeeAmount       float64   `gorm:"type:decimal(12,2);default:0" json:"fee_amount"`
	ApprovedAt      time.Time `gorm:"not null;index" json:"approved_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Associations
	Collection Collection `gorm:"foreignKey:CollectionID" json:"collection,omitempty"`
	ApprovedBy User       `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
}

// TableName specifies the table name for Approval
func (Approval) TableName() string {
	return "approvals"
}

// Penalty status constants
const (
	PenaltyStatusPending = "pending"
	PenaltyStatusPaid    = "paid"
)

// HasPenalty returns true when the shortfall triggered a charge
func (a *Approval) HasPenalty() bool {
	return a.PenaltyAmount > 0
}

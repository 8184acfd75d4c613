package models

import (
	"time"
)

// Deduction is a recurring or one-time charge against a farmer's payouts:
// feed loans, equipment rent, membership fees. The scheduler applies it each
// time NextDueDate comes due and then advances the date by one frequency
// step (or deactivates a one-time deduction).
type Deduction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FarmerID    uint      `gorm:"not null;index" json:"farmer_id"`
	Description string    `gorm:"not null" json:"description"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Frequency   string    `gorm:"default:monthly;not null" json:"frequency"`
	NextDueDate time.Time `gorm:"type:date;not null;index" json:"next_due_date"`
	Active      bool      `gorm:"default:true;index" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Associations
	Farmer User `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
}

// TableName specifies the table name for Deduction
func (Deduction) TableName() string {
	return "deductions"
}

// Deduction frequency constants
const (
	FrequencyOneTime = "one_time"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// AdvanceDueDate returns the due date one frequency step after the current
// one. One-time deductions do not advance.
func (d *Deduction) AdvanceDueDate() time.Time {
	switch d.Frequency {
	case FrequencyWeekly:
		return d.NextDueDate.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return d.NextDueDate.AddDate(0, 1, 0)
	default:
		return d.NextDueDate
	}
}

// IsDue returns true when the deduction should be applied as of the given time.
func (d *Deduction) IsDue(asOf time.Time) bool {
	return d.Active && !d.NextDueDate.After(asOf)
}

// DeductionApplication records one application of a deduction for one due
// date. The unique index on (deduction_id, due_date) is the idempotence key:
// re-running the scheduler for the same window cannot double-apply.
type DeductionApplication struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DeductionID uint      `gorm:"not null;uniqueIndex:idx_deduction_due,priority:1" json:"deduction_id"`
	DueDate     time.Time `gorm:"type:date;not null;uniqueIndex:idx_deduction_due,priority:2" json:"due_date"`
	FarmerID    uint      `gorm:"not null;index" json:"farmer_id"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
	CreatedAt   time.Time `json:"created_at"`

	// Associations
	Deduction Deduction `gorm:"foreignKey:DeductionID" json:"-"`
}

// TableName specifies the table name for DeductionApplication
func (DeductionApplication) TableName() string {
	return "deduction_applications"
}

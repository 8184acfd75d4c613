package models

import (
	"time"
)

// Collection is one recorded milk-delivery event: a farmer hands liters to a
// collector, who records quantity and the rate in force that day.
type Collection struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FarmerID       uint      `gorm:"not null;index" json:"farmer_id"`
	CollectorID    uint      `gorm:"not null;index" json:"collector_id"`
	Liters         float64   `gorm:"type:decimal(10,3);not null" json:"liters"`
	RatePerLiter   float64   `gorm:"type:decimal(10,2);not null" json:"rate_per_liter"`
	TotalAmount    float64   `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CollectionDate time.Time `gorm:"type:date;not null;index" json:"collection_date"`
	Status         string    `gorm:"default:recorded;not null;index" json:"status"`
	Approved       bool      `gorm:"default:false;index" json:"approved"`
	FeeStatus      string    `gorm:"default:pending;not null" json:"fee_status"`

	// PaymentID links the collection to the farmer payment that settled it.
	PaymentID *uint `gorm:"index" json:"payment_id,omitempty"`
	// PreviousStatus holds the pre-settlement status so a payment rollback
	// can restore it exactly.
	PreviousStatus *string `json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Farmer    User `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	Collector User `gorm:"foreignKey:CollectorID" json:"collector,omitempty"`
}

// TableName specifies the table name for Collection
func (Collection) TableName() string {
	return "collections"
}

// Collection status constants
const (
	CollectionStatusRecorded  = "recorded"
	CollectionStatusCollected = "collected"
	CollectionStatusVerified  = "verified"
	CollectionStatusPaid      = "paid"
)

// Fee settlement status constants
const (
	FeeStatusPending = "pending"
	FeeStatusPaid    = "paid"
)

// MayApprove returns true if the collection can still enter a batch approval
func (c *Collection) MayApprove() bool {
	return !c.Approved && c.Status == CollectionStatusRecorded
}

// MaySettle returns true if the collection can be folded into a farmer payment
func (c *Collection) MaySettle() bool {
	return c.Approved &&
		(c.Status == CollectionStatusCollected || c.Status == CollectionStatusVerified)
}

// CollectionResponse is the JSON response format for collections
type CollectionResponse struct {
	ID             uint      `json:"id"`
	FarmerID       uint      `json:"farmer_id"`
	CollectorID    uint      `json:"collector_id"`
	Liters         float64   `json:"liters"`
	RatePerLiter   float64   `json:"rate_per_liter"`
	TotalAmount    float64   `json:"total_amount"`
	CollectionDate time.Time `json:"collection_date"`
	Status         string    `json:"status"`
	Approved       bool      `json:"approved"`
	FeeStatus      string    `json:"fee_status"`
	PaymentID      *uint     `json:"payment_id,omitempty"`
	FarmerName     string    `json:"farmer_name,omitempty"`
	CollectorName  string    `json:"collector_name,omitempty"`
}

// ToResponse converts Collection to CollectionResponse
func (c *Collection) ToResponse() CollectionResponse {
	resp := CollectionResponse{
		ID:             c.ID,
		FarmerID:       c.FarmerID,
		CollectorID:    c.CollectorID,
		Liters:         c.Liters,
		RatePerLiter:   c.RatePerLiter,
		TotalAmount:    c.TotalAmount,
		CollectionDate: c.CollectionDate,
		Status:         c.Status,
		Approved:       c.Approved,
		FeeStatus:      c.FeeStatus,
		PaymentID:      c.PaymentID,
	}
	if c.Farmer.ID != 0 {
		resp.FarmerName = c.Farmer.FullName
	}
	if c.Collector.ID != 0 {
		resp.CollectorName = c.Collector.FullName
	}
	return resp
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is the farmer payment record for one pay period: the approved
// collection amounts minus deductions, consumed credit and the pending
// collector fee. At most one row exists per (farmer, period) — enforced by
// the composite unique index, not by best-effort lookups.
type Payment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	GUID            string     `gorm:"uniqueIndex;not null" json:"guid"`
	FarmerID        uint       `gorm:"not null;uniqueIndex:idx_payments_farmer_period,priority:1" json:"farmer_id"`
	Period          string     `gorm:"not null;uniqueIndex:idx_payments_farmer_period,priority:2;index" json:"period"`
	PendingAmount   float64    `gorm:"type:decimal(12,2);default:0" json:"pending_amount"`
	PaidAmount      float64    `gorm:"type:decimal(12,2);default:0" json:"paid_amount"`
	CreditUsed      float64    `gorm:"type:decimal(12,2);default:0" json:"credit_used"`
	TotalDeductions float64    `gorm:"type:decimal(12,2);default:0" json:"total_deductions"`
	CollectorFee    float64    `gorm:"type:decimal(12,2);default:0" json:"collector_fee"`
	NetPayment      float64    `gorm:"type:decimal(12,2);default:0" json:"net_payment"`
	Status          string     `gorm:"default:pending;not null;index" json:"status"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	PaidByID        *uint      `json:"paid_by_id,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Associations
	Farmer User `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// BeforeCreate assigns the reference GUID surfaced on receipts.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.GUID == "" {
		p.GUID = uuid.NewString()
	}
	return nil
}

// MayMarkPaid returns true if the payment can be settled
func (p *Payment) MayMarkPaid() bool {
	return p.Status == PaymentStatusPending
}

// MayRollback returns true if the settlement can be reversed
func (p *Payment) MayRollback() bool {
	return p.Status == PaymentStatusPaid
}

// PaymentResponse is the JSON response format for farmer payments
type PaymentResponse struct {
	ID              uint       `json:"id"`
	GUID            string     `json:"guid"`
	FarmerID        uint       `json:"farmer_id"`
	FarmerName      string     `json:"farmer_name,omitempty"`
	Period          string     `json:"period"`
	PendingAmount   float64    `json:"pending_amount"`
	PaidAmount      float64    `json:"paid_amount"`
	CreditUsed      float64    `json:"credit_used"`
	TotalDeductions float64    `json:"total_deductions"`
	CollectorFee    float64    `json:"collector_fee"`
	NetPayment      float64    `json:"net_payment"`
	Status          string     `json:"status"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:              p.ID,
		GUID:            p.GUID,
		FarmerID:        p.FarmerID,
		Period:          p.Period,
		PendingAmount:   p.PendingAmount,
		PaidAmount:      p.PaidAmount,
		CreditUsed:      p.CreditUsed,
		TotalDeductions: p.TotalDeductions,
		CollectorFee:    p.CollectorFee,
		NetPayment:      p.NetPayment,
		Status:          p.Status,
		PaidAt:          p.PaidAt,
	}
	if p.Farmer.ID != 0 {
		resp.FarmerName = p.Farmer.FullName
	}
	return resp
}

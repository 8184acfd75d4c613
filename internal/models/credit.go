package models

import (
	"time"
)

// CreditTransaction is a farmer's credit request and, once approved, an open
// line the reconciliation engine draws down against future earnings.
// BalanceBefore/BalanceAfter capture the farmer's running available credit
// around approval; ConsumedAmount tracks how much of the approved amount
// pending payments have already absorbed.
type CreditTransaction struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	FarmerID         uint       `gorm:"not null;index" json:"farmer_id"`
	RequestedAmount  float64    `gorm:"type:decimal(12,2);not null" json:"requested_amount"`
	Amount           float64    `gorm:"type:decimal(12,2);default:0" json:"amount"`
	Status           string     `gorm:"default:pending;not null;index" json:"status"`
	SettlementStatus string     `gorm:"default:pending;not null;index" json:"settlement_status"`
	ConsumedAmount   float64    `gorm:"type:decimal(12,2);default:0" json:"consumed_amount"`
	BalanceBefore    float64    `gorm:"type:decimal(12,2);default:0" json:"balance_before"`
	BalanceAfter     float64    `gorm:"type:decimal(12,2);default:0" json:"balance_after"`
	Reason           *string    `json:"reason,omitempty"`
	ApprovedAt       *time.Time `gorm:"index" json:"approved_at"`
	ApprovedByID     *uint      `json:"approved_by_id,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations
	Farmer User `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
}

// TableName specifies the table name for CreditTransaction
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

// Credit request status constants
const (
	CreditStatusPending  = "pending"
	CreditStatusApproved = "approved"
	CreditStatusRejected = "rejected"
)

// Credit settlement status constants
const (
	CreditSettlementPending   = "pending"
	CreditSettlementProcessed = "processed"
	CreditSettlementPaid      = "paid"
)

// Remaining returns the unconsumed part of the approved amount.
func (t *CreditTransaction) Remaining() float64 {
	return t.Amount - t.ConsumedAmount
}

// Consumable returns true while the transaction can still back new payments.
func (t *CreditTransaction) Consumable() bool {
	return t.Status == CreditStatusApproved &&
		t.SettlementStatus == CreditSettlementPending &&
		t.Remaining() > 0
}

// CreditConsumption links a payment to the credit transaction it drew from,
// with the exact amount taken. Rollback walks these rows to restore the
// transactions precisely.
type CreditConsumption struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	CreditTransactionID uint      `gorm:"not null;index" json:"credit_transaction_id"`
	PaymentID           uint      `gorm:"not null;index" json:"payment_id"`
	FarmerID            uint      `gorm:"not null;index" json:"farmer_id"`
	Amount              float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt           time.Time `json:"created_at"`

	// Associations
	CreditTransaction CreditTransaction `gorm:"foreignKey:CreditTransactionID" json:"-"`
}

// TableName specifies the table name for CreditConsumption
func (CreditConsumption) TableName() string {
	return "credit_consumptions"
}

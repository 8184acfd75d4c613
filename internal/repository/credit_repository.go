package repository

import (
	"context"

	"github.com/dairylink/dairylink-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditRepository defines the interface for credit ledger data access
type CreditRepository interface {
	FindByID(ctx context.Context, id uint) (*models.CreditTransaction, error)
	Create(ctx context.Context, txn *models.CreditTransaction) error
	Update(ctx context.Context, txn *models.CreditTransaction) error
	FindByFarmer(ctx context.Context, farmerID uint) ([]models.CreditTransaction, error)

	// FindConsumable returns the farmer's open credit lines in FIFO order:
	// approved transactions with settlement status pending and unconsumed
	// balance, oldest approval first.
	FindConsumable(ctx context.Context, farmerID uint, lock bool) ([]models.CreditTransaction, error)

	// AvailableCredit sums the unconsumed balance of the farmer's open lines.
	AvailableCredit(ctx context.Context, farmerID uint) (float64, error)

	CreateConsumption(ctx context.Context, consumption *models.CreditConsumption) error
	FindConsumptionsByPayment(ctx context.Context, paymentID uint) ([]models.CreditConsumption, error)
	DeleteConsumptionsByPayment(ctx context.Context, paymentID uint) error
}

type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new credit repository
func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) FindByID(ctx context.Context, id uint) (*models.CreditTransaction, error) {
	var txn models.CreditTransaction
	err := r.db.WithContext(ctx).First(&txn, id).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *creditRepository) Create(ctx context.Context, txn *models.CreditTransaction) error {
	return translateError(r.db.WithContext(ctx).Create(txn).Error)
}

func (r *creditRepository) Update(ctx context.Context, txn *models.CreditTransaction) error {
	return r.db.WithContext(ctx).Save(txn).Error
}

func (r *creditRepository) FindByFarmer(ctx context.Context, farmerID uint) ([]models.CreditTransaction, error) {
	var txns []models.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&txns).Error
	return txns, err
}

func (r *creditRepository) FindConsumable(ctx context.Context, farmerID uint, lock bool) ([]models.CreditTransaction, error) {
	var txns []models.CreditTransaction
	db := r.db.WithContext(ctx).
		Where("farmer_id = ? AND status = ? AND settlement_status = ? AND consumed_amount < amount",
			farmerID, models.CreditStatusApproved, models.CreditSettlementPending)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.Order("approved_at ASC, id ASC").Find(&txns).Error
	return txns, err
}

func (r *creditRepository) AvailableCredit(ctx context.Context, farmerID uint) (float64, error) {
	var result struct {
		Available float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.CreditTransaction{}).
		Select("COALESCE(SUM(amount - consumed_amount), 0) as available").
		Where("farmer_id = ? AND status = ? AND settlement_status = ?",
			farmerID, models.CreditStatusApproved, models.CreditSettlementPending).
		Scan(&result).Error
	return result.Available, err
}

func (r *creditRepository) CreateConsumption(ctx context.Context, consumption *models.CreditConsumption) error {
	return translateError(r.db.WithContext(ctx).Create(consumption).Error)
}

func (r *creditRepository) FindConsumptionsByPayment(ctx context.Context, paymentID uint) ([]models.CreditConsumption, error) {
	var consumptions []models.CreditConsumption
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("id ASC").
		Find(&consumptions).Error
	return consumptions, err
}

func (r *creditRepository) DeleteConsumptionsByPayment(ctx context.Context, paymentID uint) error {
	return r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Delete(&models.CreditConsumption{}).Error
}

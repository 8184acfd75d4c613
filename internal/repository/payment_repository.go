package repository

import (
	"context"
	"strings"

	"github.com/dairylink/dairylink-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository defines the interface for farmer payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint, lock bool) (*models.Payment, error)
	FindByFarmerAndPeriod(ctx context.Context, farmerID uint, period string, lock bool) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error)
	FindByPeriod(ctx context.Context, period string) ([]models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint, lock bool) (*models.Payment, error) {
	var payment models.Payment
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	} else {
		db = db.Preload("Farmer")
	}
	err := db.First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByFarmerAndPeriod(ctx context.Context, farmerID uint, period string, lock bool) (*models.Payment, error) {
	var payment models.Payment
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.Where("farmer_id = ? AND period = ?", farmerID, period).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return translateError(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payment{}).Preload("Farmer")

	if period, ok := query.Filters["period"]; ok && period != "" {
		db = db.Where("period = ?", period)
	}
	if status, ok := query.Filters["status"]; ok && status != "" {
		db = db.Where("status = ?", status)
	}
	if farmerID, ok := query.Filters["farmer_id"]; ok && farmerID != "" {
		db = db.Where("farmer_id = ?", farmerID)
	}
	if query.Search != "" {
		search := "%" + strings.TrimSpace(query.Search) + "%"
		db = db.Joins("JOIN users ON users.id = payments.farmer_id").
			Where("users.full_name ILIKE ? OR users.member_code ILIKE ? OR payments.guid ILIKE ?", search, search, search)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "payments.created_at"
	switch query.SortBy {
	case "period":
		sortBy = "payments.period"
	case "net_payment":
		sortBy = "payments.net_payment"
	case "status":
		sortBy = "payments.status"
	}
	err := db.Order(sortBy + " " + query.SortDir).
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepository) FindByPeriod(ctx context.Context, period string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		Where("period = ?", period).
		Order("farmer_id ASC").
		Find(&payments).Error
	return payments, err
}

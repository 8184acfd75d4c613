package repository

import (
	"context"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectorPaymentRepository defines the interface for collector payment data access
type CollectorPaymentRepository interface {
	FindByID(ctx context.Context, id uint, lock bool) (*models.CollectorPayment, error)
	FindByWindow(ctx context.Context, collectorID uint, start, end time.Time, lock bool) (*models.CollectorPayment, error)
	Create(ctx context.Context, payment *models.CollectorPayment) error
	Update(ctx context.Context, payment *models.CollectorPayment) error
	List(ctx context.Context, query *ListQuery) ([]models.CollectorPayment, int64, error)
}

type collectorPaymentRepository struct {
	db *gorm.DB
}

// NewCollectorPaymentRepository creates a new collector payment repository
func NewCollectorPaymentRepository(db *gorm.DB) CollectorPaymentRepository {
	return &collectorPaymentRepository{db: db}
}

func (r *collectorPaymentRepository) FindByID(ctx context.Context, id uint, lock bool) (*models.CollectorPayment, error) {
	var payment models.CollectorPayment
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	} else {
		db = db.Preload("Collector")
	}
	err := db.First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *collectorPaymentRepository) FindByWindow(ctx context.Context, collectorID uint, start, end time.Time, lock bool) (*models.CollectorPayment, error) {
	var payment models.CollectorPayment
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.Where("collector_id = ? AND period_start = ? AND period_end = ?",
		collectorID, start.Format("2006-01-02"), end.Format("2006-01-02")).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *collectorPaymentRepository) Create(ctx context.Context, payment *models.CollectorPayment) error {
	return translateError(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *collectorPaymentRepository) Update(ctx context.Context, payment *models.CollectorPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *collectorPaymentRepository) List(ctx context.Context, query *ListQuery) ([]models.CollectorPayment, int64, error) {
	var payments []models.CollectorPayment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.CollectorPayment{}).Preload("Collector")

	if collectorID, ok := query.Filters["collector_id"]; ok && collectorID != "" {
		db = db.Where("collector_id = ?", collectorID)
	}
	if status, ok := query.Filters["status"]; ok && status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("period_start " + query.SortDir).
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&payments).Error
	return payments, total, err
}

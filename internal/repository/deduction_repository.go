package repository

import (
	"context"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeductionRepository defines the interface for deduction data access
type DeductionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Deduction, error)
	Create(ctx context.Context, deduction *models.Deduction) error
	Update(ctx context.Context, deduction *models.Deduction) error
	FindByFarmer(ctx context.Context, farmerID uint) ([]models.Deduction, error)

	// FindDue returns active deductions whose next due date has arrived.
	FindDue(ctx context.Context, asOf time.Time, lock bool) ([]models.Deduction, error)

	// CreateApplication inserts the application row; the unique index on
	// (deduction_id, due_date) turns a re-run into ErrDuplicateKey.
	CreateApplication(ctx context.Context, application *models.DeductionApplication) error

	SumApplicationsForFarmer(ctx context.Context, farmerID uint, start, end time.Time) (float64, error)
	FindApplicationsForFarmer(ctx context.Context, farmerID uint, start, end time.Time) ([]models.DeductionApplication, error)
}

type deductionRepository struct {
	db *gorm.DB
}

// NewDeductionRepository creates a new deduction repository
func NewDeductionRepository(db *gorm.DB) DeductionRepository {
	return &deductionRepository{db: db}
}

func (r *deductionRepository) FindByID(ctx context.Context, id uint) (*models.Deduction, error) {
	var deduction models.Deduction
	err := r.db.WithContext(ctx).First(&deduction, id).Error
	if err != nil {
		return nil, err
	}
	return &deduction, nil
}

func (r *deductionRepository) Create(ctx context.Context, deduction *models.Deduction) error {
	return translateError(r.db.WithContext(ctx).Create(deduction).Error)
}

func (r *deductionRepository) Update(ctx context.Context, deduction *models.Deduction) error {
	return r.db.WithContext(ctx).Save(deduction).Error
}

func (r *deductionRepository) FindByFarmer(ctx context.Context, farmerID uint) ([]models.Deduction, error) {
	var deductions []models.Deduction
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("next_due_date ASC").
		Find(&deductions).Error
	return deductions, err
}

func (r *deductionRepository) FindDue(ctx context.Context, asOf time.Time, lock bool) ([]models.Deduction, error) {
	var deductions []models.Deduction
	db := r.db.WithContext(ctx).
		Where("active = ? AND next_due_date <= ?", true, asOf.Format("2006-01-02"))
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.Order("next_due_date ASC, id ASC").Find(&deductions).Error
	return deductions, err
}

func (r *deductionRepository) CreateApplication(ctx context.Context, application *models.DeductionApplication) error {
	return translateError(r.db.WithContext(ctx).Create(application).Error)
}

func (r *deductionRepository) SumApplicationsForFarmer(ctx context.Context, farmerID uint, start, end time.Time) (float64, error) {
	var result struct {
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.DeductionApplication{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("farmer_id = ? AND applied_at >= ? AND applied_at < ?", farmerID, start, end).
		Scan(&result).Error
	return result.Total, err
}

func (r *deductionRepository) FindApplicationsForFarmer(ctx context.Context, farmerID uint, start, end time.Time) ([]models.DeductionApplication, error) {
	var applications []models.DeductionApplication
	err := r.db.WithContext(ctx).
		Where("farmer_id = ? AND applied_at >= ? AND applied_at < ?", farmerID, start, end).
		Preload("Deduction").
		Order("applied_at ASC").
		Find(&applications).Error
	return applications, err
}

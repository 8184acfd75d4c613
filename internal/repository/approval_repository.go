package repository

import (
	"context"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApprovalRepository defines the interface for approval data access
type ApprovalRepository interface {
	Create(ctx context.Context, approval *models.Approval) error
	FindByCollectionIDs(ctx context.Context, collectionIDs []uint) ([]models.Approval, error)
	FindForCollectorWindow(ctx context.Context, collectorID uint, start, end time.Time, lock bool) ([]models.Approval, error)
	MarkPenaltiesPaid(ctx context.Context, approvalIDs []uint) error
}

type approvalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, approval *models.Approval) error {
	return translateError(r.db.WithContext(ctx).Create(approval).Error)
}

func (r *approvalRepository) FindByCollectionIDs(ctx context.Context, collectionIDs []uint) ([]models.Approval, error) {
	if len(collectionIDs) == 0 {
		return nil, nil
	}
	var approvals []models.Approval
	err := r.db.WithContext(ctx).
		Where("collection_id IN ?", collectionIDs).
		Order("id ASC").
		Find(&approvals).Error
	return approvals, err
}

func (r *approvalRepository) FindForCollectorWindow(ctx context.Context, collectorID uint, start, end time.Time, lock bool) ([]models.Approval, error) {
	var approvals []models.Approval
	db := r.db.WithContext(ctx).
		Where("collector_id = ? AND collection_date >= ? AND collection_date < ?",
			collectorID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.Order("collection_date ASC, id ASC").Find(&approvals).Error
	return approvals, err
}

func (r *approvalRepository) MarkPenaltiesPaid(ctx context.Context, approvalIDs []uint) error {
	if len(approvalIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Approval{}).
		Where("id IN ?", approvalIDs).
		Update("penalty_status", models.PenaltyStatusPaid).Error
}

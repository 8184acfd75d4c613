package repository

import (
	"context"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionRepository defines the interface for collection data access
type CollectionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Collection, error)
	Create(ctx context.Context, collection *models.Collection) error
	Update(ctx context.Context, collection *models.Collection) error
	List(ctx context.Context, query *ListQuery) ([]models.Collection, int64, error)

	// FindUnapprovedForBatch returns the collections a batch approval will
	// reconcile: unapproved rows for one collector on one calendar date.
	// With lock, the rows are taken FOR UPDATE so two concurrent batch
	// approvals cannot double-process them.
	FindUnapprovedForBatch(ctx context.Context, collectorID uint, date time.Time, lock bool) ([]models.Collection, error)

	// FindSettleableForFarmerPeriod returns approved, not-yet-paid
	// collections for the farmer inside [start, end).
	FindSettleableForFarmerPeriod(ctx context.Context, farmerID uint, start, end time.Time, lock bool) ([]models.Collection, error)

	// FindByPaymentID returns the collections folded into a farmer payment.
	FindByPaymentID(ctx context.Context, paymentID uint, lock bool) ([]models.Collection, error)
}

type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) FindByID(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		Preload("Collector").
		First(&collection, id).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	return translateError(r.db.WithContext(ctx).Create(collection).Error)
}

func (r *collectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	return r.db.WithContext(ctx).Save(collection).Error
}

func (r *collectionRepository) List(ctx context.Context, query *ListQuery) ([]models.Collection, int64, error) {
	var collections []models.Collection
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Collection{})

	if status := query.Filters["status"]; status != "" {
		db = db.Where("collections.status = ?", status)
	}
	if farmer := query.Filters["farmer_id"]; farmer != "" {
		db = db.Where("collections.farmer_id = ?", farmer)
	}
	if collector := query.Filters["collector_id"]; collector != "" {
		db = db.Where("collections.collector_id = ?", collector)
	}
	if val := query.Filters["start_date"]; val != "" {
		db = db.Where("collections.collection_date >= ?", val)
	}
	if val := query.Filters["end_date"]; val != "" {
		db = db.Where("collections.collection_date <= ?", val)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("collections.collection_date DESC, collections.id DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Preload("Farmer").
		Preload("Collector").
		Find(&collections).Error
	return collections, total, err
}

func (r *collectionRepository) FindUnapprovedForBatch(ctx context.Context, collectorID uint, date time.Time, lock bool) ([]models.Collection, error) {
	var collections []models.Collection
	db := r.db.WithContext(ctx).
		Where("collector_id = ? AND collection_date = ? AND approved = ? AND status = ?",
			collectorID, date.Format("2006-01-02"), false, models.CollectionStatusRecorded)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.Order("id ASC").Find(&collections).Error
	return collections, err
}

func (r *collectionRepository) FindSettleableForFarmerPeriod(ctx context.Context, farmerID uint, start, end time.Time, lock bool) ([]models.Collection, error) {
	var collections []models.Collection
	db := r.db.WithContext(ctx).
		Where("farmer_id = ? AND approved = ? AND status IN ? AND collection_date >= ? AND collection_date < ?",
			farmerID, true,
			[]string{models.CollectionStatusCollected, models.CollectionStatusVerified},
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.Order("collection_date ASC, id ASC").Find(&collections).Error
	return collections, err
}

func (r *collectionRepository) FindByPaymentID(ctx context.Context, paymentID uint, lock bool) ([]models.Collection, error) {
	var collections []models.Collection
	db := r.db.WithContext(ctx).Where("payment_id = ?", paymentID)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.Order("id ASC").Find(&collections).Error
	return collections, err
}

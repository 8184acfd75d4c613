package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/dairylink/dairylink-api/internal/repository"
	"github.com/dairylink/dairylink-api/internal/statemachine"
	"github.com/dairylink/dairylink-api/pkg/logger"
	"gorm.io/gorm"
)

// CreateCollectionInput carries a collector's recording of one delivery.
type CreateCollectionInput struct {
	FarmerID       uint
	CollectorID    uint
	Liters         float64
	RatePerLiter   float64
	CollectionDate time.Time
}

type CollectionService struct {
	repo     repository.CollectionRepository
	userRepo repository.UserRepository
	auditSvc *AuditService
}

func NewCollectionService(
	repo repository.CollectionRepository,
	userRepo repository.UserRepository,
	auditSvc *AuditService,
) *CollectionService {
	return &CollectionService{
		repo:     repo,
		userRepo: userRepo,
		auditSvc: auditSvc,
	}
}

func (s *CollectionService) FindByID(ctx context.Context, id uint) (*models.Collection, error) {
	collection, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) List(ctx context.Context, query *repository.ListQuery) ([]models.Collection, int64, error) {
	return s.repo.List(ctx, query)
}

// Create records a delivery. The total amount is always derived from liters
// and the rate in force, never taken from the caller.
func (s *CollectionService) Create(ctx context.Context, input CreateCollectionInput, actorID uint, ip, userAgent string) (*models.Collection, error) {
	if input.Liters <= 0 {
		return nil, NewValidationError("liters", "must be greater than zero")
	}
	if input.RatePerLiter <= 0 {
		return nil, NewValidationError("rate_per_liter", "must be greater than zero")
	}
	if input.CollectionDate.IsZero() {
		return nil, NewValidationError("collection_date", "is required")
	}

	farmer, err := s.userRepo.FindByID(ctx, input.FarmerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("farmer_id", "farmer not found")
		}
		return nil, err
	}
	if farmer.Role != models.RoleFarmer {
		return nil, NewValidationError("farmer_id", "user is not a farmer")
	}

	collector, err := s.userRepo.FindByID(ctx, input.CollectorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("collector_id", "collector not found")
		}
		return nil, err
	}
	if collector.Role != models.RoleCollector {
		return nil, NewValidationError("collector_id", "user is not a collector")
	}

	collection := &models.Collection{
		FarmerID:       input.FarmerID,
		CollectorID:    input.CollectorID,
		Liters:         input.Liters,
		RatePerLiter:   input.RatePerLiter,
		TotalAmount:    input.Liters * input.RatePerLiter,
		CollectionDate: input.CollectionDate,
		Status:         models.CollectionStatusRecorded,
	}

	if err := s.repo.Create(ctx, collection); err != nil {
		return nil, err
	}

	logger.Info("collection recorded",
		"collection_id", collection.ID,
		"farmer_id", collection.FarmerID,
		"collector_id", collection.CollectorID,
		"liters", collection.Liters,
	)

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "create", "collection", collection.ID,
			fmt.Sprintf("recorded %.3f liters for farmer %d", collection.Liters, collection.FarmerID), ip, userAgent)
	}

	return collection, nil
}

// Verify moves an approved collection from collected to verified.
func (s *CollectionService) Verify(ctx context.Context, id uint, actorID uint, ip, userAgent string) (*models.Collection, error) {
	collection, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cfsm := statemachine.NewCollectionFSM(collection)
	if err := cfsm.Verify(ctx); err != nil {
		return nil, ErrInvalidState
	}

	if err := s.repo.Update(ctx, collection); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "verify", "collection", collection.ID, "", ip, userAgent)
	}

	return collection, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/dairylink/dairylink-api/internal/repository"
	"github.com/dairylink/dairylink-api/pkg/logger"
	"gorm.io/gorm"
)

// DeductionRunResult summarizes one scheduler pass. A pass never aborts on a
// failing item: the failure is recorded and the remaining deductions still run.
type DeductionRunResult struct {
	Applied int      `json:"applied"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

type DeductionService struct {
	txm      repository.TxManager
	repo     repository.DeductionRepository
	userRepo repository.UserRepository
	auditSvc *AuditService
}

func NewDeductionService(
	txm repository.TxManager,
	repo repository.DeductionRepository,
	userRepo repository.UserRepository,
	auditSvc *AuditService,
) *DeductionService {
	return &DeductionService{
		txm:      txm,
		repo:     repo,
		userRepo: userRepo,
		auditSvc: auditSvc,
	}
}

func (s *DeductionService) FindByID(ctx context.Context, id uint) (*models.Deduction, error) {
	deduction, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return deduction, nil
}

func (s *DeductionService) FindByFarmer(ctx context.Context, farmerID uint) ([]models.Deduction, error) {
	return s.repo.FindByFarmer(ctx, farmerID)
}

// Create registers a deduction against a farmer's future payouts.
func (s *DeductionService) Create(ctx context.Context, farmerID uint, description string, amount float64, frequency string, firstDueDate time.Time, actorID uint, ip, userAgent string) (*models.Deduction, error) {
	if amount <= 0 {
		return nil, NewValidationError("amount", "must be greater than zero")
	}
	if description == "" {
		return nil, NewValidationError("description", "is required")
	}
	switch frequency {
	case models.FrequencyOneTime, models.FrequencyWeekly, models.FrequencyMonthly:
	default:
		return nil, NewValidationError("frequency", "must be one_time, weekly or monthly")
	}
	if firstDueDate.IsZero() {
		return nil, NewValidationError("next_due_date", "is required")
	}

	farmer, err := s.userRepo.FindByID(ctx, farmerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("farmer_id", "farmer not found")
		}
		return nil, err
	}
	if farmer.Role != models.RoleFarmer {
		return nil, NewValidationError("farmer_id", "user is not a farmer")
	}

	deduction := &models.Deduction{
		FarmerID:    farmerID,
		Description: description,
		Amount:      amount,
		Frequency:   frequency,
		NextDueDate: firstDueDate,
		Active:      true,
	}
	if err := s.repo.Create(ctx, deduction); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "create", "deduction", deduction.ID,
			fmt.Sprintf("%s %.2f %s for farmer %d", description, amount, frequency, farmerID), ip, userAgent)
	}

	return deduction, nil
}

// Deactivate stops a deduction from being applied again.
func (s *DeductionService) Deactivate(ctx context.Context, id uint, actorID uint, ip, userAgent string) (*models.Deduction, error) {
	deduction, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deduction.Active {
		return nil, ErrInvalidState
	}

	deduction.Active = false
	if err := s.repo.Update(ctx, deduction); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "deactivate", "deduction", deduction.ID, "", ip, userAgent)
	}

	return deduction, nil
}

// ApplyDueDeductions runs the scheduler for every deduction due as of the
// given time. Each deduction is applied in its own transaction, so one bad
// item cannot poison the run. The unique index on (deduction_id, due_date)
// makes re-running the same window a no-op: an already-applied due date is
// counted as skipped, not applied twice.
func (s *DeductionService) ApplyDueDeductions(ctx context.Context, asOf time.Time) (*DeductionRunResult, error) {
	due, err := s.repo.FindDue(ctx, asOf, false)
	if err != nil {
		return nil, err
	}

	result := &DeductionRunResult{}
	for _, item := range due {
		err := s.txm.Do(ctx, func(repos *repository.Repositories) error {
			return s.applyOne(ctx, repos, item.ID, asOf, result)
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("deduction %d: %v", item.ID, err))
			logger.Error("deduction application failed", "deduction_id", item.ID, "error", err)
		}
	}

	logger.Info("deduction run finished",
		"as_of", asOf.Format("2006-01-02"),
		"applied", result.Applied,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *DeductionService) applyOne(ctx context.Context, repos *repository.Repositories, id uint, asOf time.Time, result *DeductionRunResult) error {
	// Reload inside the transaction: the unlocked scan above was only a
	// candidate list and another run may have advanced the deduction since.
	deduction, err := repos.Deduction.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Skipped++
			return nil
		}
		return err
	}
	if !deduction.IsDue(asOf) {
		result.Skipped++
		return nil
	}

	application := &models.DeductionApplication{
		DeductionID: deduction.ID,
		DueDate:     deduction.NextDueDate,
		FarmerID:    deduction.FarmerID,
		Amount:      deduction.Amount,
		AppliedAt:   asOf,
	}
	if err := repos.Deduction.CreateApplication(ctx, application); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			result.Skipped++
			return nil
		}
		return err
	}

	if deduction.Frequency == models.FrequencyOneTime {
		deduction.Active = false
	} else {
		deduction.NextDueDate = deduction.AdvanceDueDate()
	}
	if err := repos.Deduction.Update(ctx, deduction); err != nil {
		return err
	}

	result.Applied++
	return nil
}

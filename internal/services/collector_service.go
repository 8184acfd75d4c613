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

type CollectorService struct {
	txm      repository.TxManager
	repo     repository.CollectorPaymentRepository
	userRepo repository.UserRepository
	auditSvc *AuditService
}

func NewCollectorService(
	txm repository.TxManager,
	repo repository.CollectorPaymentRepository,
	userRepo repository.UserRepository,
	auditSvc *AuditService,
) *CollectorService {
	return &CollectorService{
		txm:      txm,
		repo:     repo,
		userRepo: userRepo,
		auditSvc: auditSvc,
	}
}

func (s *CollectorService) FindByID(ctx context.Context, id uint) (*models.CollectorPayment, error) {
	payment, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *CollectorService) List(ctx context.Context, query *repository.ListQuery) ([]models.CollectorPayment, int64, error) {
	return s.repo.List(ctx, query)
}

// ComputePayment builds or rebuilds the collector's earnings for a settlement
// window from the approval rows inside it: total adjusted liters handled, the
// fees those liters earned, and the penalties still outstanding. One row per
// (collector, window); recomputing an unpaid row just refreshes it.
func (s *CollectorService) ComputePayment(ctx context.Context, collectorID uint, periodStart, periodEnd time.Time, actorID uint, ip, userAgent string) (*models.CollectorPayment, error) {
	if !periodEnd.After(periodStart) {
		return nil, NewValidationError("period_end", "must be after period_start")
	}

	collector, err := s.userRepo.FindByID(ctx, collectorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("collector_id", "collector not found")
		}
		return nil, err
	}
	if collector.Role != models.RoleCollector {
		return nil, NewValidationError("collector_id", "user is not a collector")
	}

	var payment *models.CollectorPayment

	err = s.txm.Do(ctx, func(repos *repository.Repositories) error {
		payment, err = s.lockOrCreate(ctx, repos, collectorID, periodStart, periodEnd)
		if err != nil {
			return err
		}
		if !payment.MayMarkPaid() {
			return ErrInvalidState
		}

		approvals, err := repos.Approval.FindForCollectorWindow(ctx, collectorID, periodStart, periodEnd, true)
		if err != nil {
			return err
		}

		payment.TotalLiters = 0
		payment.TotalPenalty = 0
		payment.TotalFee = 0
		for _, a := range approvals {
			payment.TotalLiters += a.AdjustedLiters
			payment.TotalFee += a.FeeAmount
			if a.PenaltyStatus == models.PenaltyStatusPending {
				payment.TotalPenalty += a.PenaltyAmount
			}
		}

		return repos.CollectorPayment.Update(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("collector payment computed",
		"collector_payment_id", payment.ID,
		"collector_id", collectorID,
		"total_liters", payment.TotalLiters,
		"total_fee", payment.TotalFee,
		"total_penalty", payment.TotalPenalty,
	)

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "compute", "collector_payment", payment.ID,
			fmt.Sprintf("window %s to %s net %.2f",
				periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"), payment.NetEarnings()),
			ip, userAgent)
	}

	return payment, nil
}

func (s *CollectorService) lockOrCreate(ctx context.Context, repos *repository.Repositories, collectorID uint, start, end time.Time) (*models.CollectorPayment, error) {
	payment, err := repos.CollectorPayment.FindByWindow(ctx, collectorID, start, end, true)
	if err == nil {
		return payment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	payment = &models.CollectorPayment{
		CollectorID: collectorID,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      models.PaymentStatusPending,
	}
	if err := repos.CollectorPayment.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}
	return payment, nil
}

// MarkPaid settles a collector payment and closes out the penalties it
// charged: every pending penalty on an approval inside the window flips to
// paid in the same transaction.
func (s *CollectorService) MarkPaid(ctx context.Context, id uint, actorID uint, ip, userAgent string) (*models.CollectorPayment, error) {
	var payment *models.CollectorPayment

	err := s.txm.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		payment, err = repos.CollectorPayment.FindByID(ctx, id, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !payment.MayMarkPaid() {
			return ErrInvalidState
		}

		now := time.Now()
		payment.Status = models.PaymentStatusPaid
		payment.PaidAt = &now
		if err := repos.CollectorPayment.Update(ctx, payment); err != nil {
			return err
		}

		approvals, err := repos.Approval.FindForCollectorWindow(ctx, payment.CollectorID, payment.PeriodStart, payment.PeriodEnd, true)
		if err != nil {
			return err
		}
		var penaltyIDs []uint
		for _, a := range approvals {
			if a.PenaltyStatus == models.PenaltyStatusPending && a.PenaltyAmount > 0 {
				penaltyIDs = append(penaltyIDs, a.ID)
			}
		}
		if len(penaltyIDs) > 0 {
			if err := repos.Approval.MarkPenaltiesPaid(ctx, penaltyIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("collector payment marked paid", "collector_payment_id", payment.ID, "collector_id", payment.CollectorID)

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "mark_paid", "collector_payment", payment.ID,
			fmt.Sprintf("paid %.2f", payment.NetEarnings()), ip, userAgent)
	}

	return payment, nil
}

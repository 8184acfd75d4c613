package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dairylink/dairylink-api/internal/config"
	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/dairylink/dairylink-api/internal/repository"
	"github.com/dairylink/dairylink-api/internal/statemachine"
	"github.com/dairylink/dairylink-api/pkg/logger"
	"gorm.io/gorm"
)

type PaymentService struct {
	txm      repository.TxManager
	repo     repository.PaymentRepository
	userRepo repository.UserRepository
	cfg      *config.Config
	auditSvc *AuditService
}

func NewPaymentService(
	txm repository.TxManager,
	repo repository.PaymentRepository,
	userRepo repository.UserRepository,
	cfg *config.Config,
	auditSvc *AuditService,
) *PaymentService {
	return &PaymentService{
		txm:      txm,
		repo:     repo,
		userRepo: userRepo,
		cfg:      cfg,
		auditSvc: auditSvc,
	}
}

func (s *PaymentService) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return s.repo.List(ctx, query)
}

// Generate builds or rebuilds the farmer's payment for one pay period from
// whatever is currently on the books: approved unsettled collections,
// deductions applied in the period, and the farmer's open credit. Running it
// again for the same (farmer, period) recomputes the same single row — the
// composite unique index makes a racing second generator fail with
// ErrConcurrentModification instead of writing a duplicate.
//
// A payment that has already been marked paid cannot be regenerated.
func (s *PaymentService) Generate(ctx context.Context, farmerID uint, periodStr string, actorID uint, ip, userAgent string) (*models.Payment, error) {
	period, err := models.ParsePeriod(periodStr)
	if err != nil {
		return nil, NewValidationError("period", "must be formatted YYYY-MM")
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

	var payment *models.Payment

	err = s.txm.Do(ctx, func(repos *repository.Repositories) error {
		payment, err = s.lockOrCreate(ctx, repos, farmerID, period.String())
		if err != nil {
			return err
		}
		if !payment.MayMarkPaid() {
			return ErrInvalidState
		}

		// A regeneration starts from a clean slate: give back this payment's
		// credit draw and unlink the collections it had claimed.
		if err := releaseForPayment(ctx, repos, payment.ID); err != nil {
			return err
		}
		previous, err := repos.Collection.FindByPaymentID(ctx, payment.ID, true)
		if err != nil {
			return err
		}
		for i := range previous {
			previous[i].PaymentID = nil
			if err := repos.Collection.Update(ctx, &previous[i]); err != nil {
				return err
			}
		}

		collections, err := repos.Collection.FindSettleableForFarmerPeriod(ctx, farmerID, period.Start(), period.End(), true)
		if err != nil {
			return err
		}

		pending := 0.0
		collectorFee := 0.0
		for i := range collections {
			c := &collections[i]
			pending += c.TotalAmount
			collectorFee += c.Liters * s.cfg.CollectorFeePerLiter

			c.PaymentID = &payment.ID
			if err := repos.Collection.Update(ctx, c); err != nil {
				return err
			}
		}

		deductions, err := repos.Deduction.SumApplicationsForFarmer(ctx, farmerID, period.Start(), period.End())
		if err != nil {
			return err
		}

		// Credit is drawn against the full pending amount, clamped by
		// consumeFIFO to the farmer's actual balance. Nothing else caps the
		// draw, so heavy deductions or fees can push the net negative.
		creditUsed := 0.0
		if pending > 0 {
			creditUsed, err = consumeFIFO(ctx, repos, payment.ID, farmerID, pending)
			if err != nil {
				return err
			}
		}

		payment.PendingAmount = pending
		payment.TotalDeductions = deductions
		payment.CollectorFee = collectorFee
		payment.CreditUsed = creditUsed
		payment.NetPayment = pending - deductions - creditUsed - collectorFee

		return repos.Payment.Update(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("payment generated",
		"payment_id", payment.ID,
		"farmer_id", farmerID,
		"period", payment.Period,
		"pending", payment.PendingAmount,
		"net", payment.NetPayment,
	)

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "generate", "payment", payment.ID,
			fmt.Sprintf("period %s net %.2f for farmer %d", payment.Period, payment.NetPayment, farmerID), ip, userAgent)
	}

	return payment, nil
}

// lockOrCreate returns the (farmer, period) payment row FOR UPDATE, creating
// it when this is the first generation for the period. A duplicate-key error
// on create means another generator won the race.
func (s *PaymentService) lockOrCreate(ctx context.Context, repos *repository.Repositories, farmerID uint, period string) (*models.Payment, error) {
	payment, err := repos.Payment.FindByFarmerAndPeriod(ctx, farmerID, period, true)
	if err == nil {
		return payment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	payment = &models.Payment{
		FarmerID: farmerID,
		Period:   period,
		Status:   models.PaymentStatusPending,
	}
	if err := repos.Payment.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}
	return payment, nil
}

// MarkPaid finalizes a pending payment as one atomic unit of three effects:
// the payment flips to paid, every settled collection flips to paid with its
// prior status remembered and its collector fee marked paid, and every credit
// line the payment drew from moves to processed.
func (s *PaymentService) MarkPaid(ctx context.Context, paymentID uint, actorID uint, ip, userAgent string) (*models.Payment, error) {
	var payment *models.Payment

	err := s.txm.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		payment, err = repos.Payment.FindByID(ctx, paymentID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		pfsm := statemachine.NewPaymentFSM(payment)
		if err := pfsm.MarkPaid(ctx); err != nil {
			return ErrInvalidState
		}

		now := time.Now()
		payment.PaidAmount = payment.NetPayment
		payment.PaidAt = &now
		payment.PaidByID = &actorID
		if err := repos.Payment.Update(ctx, payment); err != nil {
			return err
		}

		collections, err := repos.Collection.FindByPaymentID(ctx, payment.ID, true)
		if err != nil {
			return err
		}
		for i := range collections {
			c := &collections[i]
			prior := c.Status
			cfsm := statemachine.NewCollectionFSM(c)
			if err := cfsm.Settle(ctx); err != nil {
				return ErrInvalidState
			}
			c.PreviousStatus = &prior
			c.FeeStatus = models.FeeStatusPaid
			if err := repos.Collection.Update(ctx, c); err != nil {
				return err
			}
		}

		return setSettlementForPayment(ctx, repos, payment.ID, models.CreditSettlementProcessed)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("payment marked paid", "payment_id", payment.ID, "farmer_id", payment.FarmerID, "paid_amount", payment.PaidAmount)

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "mark_paid", "payment", payment.ID,
			fmt.Sprintf("paid %.2f for period %s", payment.PaidAmount, payment.Period), ip, userAgent)
	}

	return payment, nil
}

// Rollback reverses a finalized payment, undoing exactly the three effects of
// MarkPaid: the payment returns to pending, each collection gets back the
// status it held before settlement with its fee reopened, and the credit
// lines return to pending settlement. The consumed credit amounts stay as
// they were, so a following regeneration starts from the same draw.
func (s *PaymentService) Rollback(ctx context.Context, paymentID uint, actorID uint, ip, userAgent string) (*models.Payment, error) {
	var payment *models.Payment

	err := s.txm.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		payment, err = repos.Payment.FindByID(ctx, paymentID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		pfsm := statemachine.NewPaymentFSM(payment)
		if err := pfsm.Rollback(ctx); err != nil {
			return ErrInvalidState
		}

		payment.PaidAmount = 0
		payment.PaidAt = nil
		payment.PaidByID = nil
		if err := repos.Payment.Update(ctx, payment); err != nil {
			return err
		}

		collections, err := repos.Collection.FindByPaymentID(ctx, payment.ID, true)
		if err != nil {
			return err
		}
		for i := range collections {
			c := &collections[i]
			if c.PreviousStatus != nil {
				c.Status = *c.PreviousStatus
				c.PreviousStatus = nil
			}
			c.FeeStatus = models.FeeStatusPending
			if err := repos.Collection.Update(ctx, c); err != nil {
				return err
			}
		}

		return setSettlementForPayment(ctx, repos, payment.ID, models.CreditSettlementPending)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("payment rolled back", "payment_id", payment.ID, "farmer_id", payment.FarmerID)

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "rollback", "payment", payment.ID,
			fmt.Sprintf("rolled back period %s", payment.Period), ip, userAgent)
	}

	return payment, nil
}

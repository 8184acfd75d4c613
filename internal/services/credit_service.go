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

type CreditService struct {
	txm      repository.TxManager
	repo     repository.CreditRepository
	userRepo repository.UserRepository
	auditSvc *AuditService
}

func NewCreditService(
	txm repository.TxManager,
	repo repository.CreditRepository,
	userRepo repository.UserRepository,
	auditSvc *AuditService,
) *CreditService {
	return &CreditService{
		txm:      txm,
		repo:     repo,
		userRepo: userRepo,
		auditSvc: auditSvc,
	}
}

func (s *CreditService) FindByID(ctx context.Context, id uint) (*models.CreditTransaction, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return txn, nil
}

func (s *CreditService) FindByFarmer(ctx context.Context, farmerID uint) ([]models.CreditTransaction, error) {
	return s.repo.FindByFarmer(ctx, farmerID)
}

// AvailableCredit returns the farmer's total unconsumed approved credit.
func (s *CreditService) AvailableCredit(ctx context.Context, farmerID uint) (float64, error) {
	return s.repo.AvailableCredit(ctx, farmerID)
}

// Request opens a pending credit request for a farmer.
func (s *CreditService) Request(ctx context.Context, farmerID uint, amount float64, reason string, actorID uint, ip, userAgent string) (*models.CreditTransaction, error) {
	if amount <= 0 {
		return nil, NewValidationError("amount", "must be greater than zero")
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

	txn := &models.CreditTransaction{
		FarmerID:        farmerID,
		RequestedAmount: amount,
		Status:          models.CreditStatusPending,
	}
	if reason != "" {
		txn.Reason = &reason
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, actorID, "request", "credit_transaction", txn.ID,
			fmt.Sprintf("requested %.2f for farmer %d", amount, farmerID), ip, userAgent)
	}

	return txn, nil
}

// Approve grants a pending credit request, opening the line for consumption.
// The approved amount may differ from what was requested.
func (s *CreditService) Approve(ctx context.Context, id uint, approvedAmount float64, approverID uint, ip, userAgent string) (*models.CreditTransaction, error) {
	if approvedAmount <= 0 {
		return nil, NewValidationError("amount", "must be greater than zero")
	}

	var approved *models.CreditTransaction
	err := s.txm.Do(ctx, func(repos *repository.Repositories) error {
		txn, err := repos.Credit.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if txn.Status != models.CreditStatusPending {
			return ErrInvalidState
		}

		balance, err := repos.Credit.AvailableCredit(ctx, txn.FarmerID)
		if err != nil {
			return err
		}

		now := time.Now()
		txn.Status = models.CreditStatusApproved
		txn.Amount = approvedAmount
		txn.BalanceBefore = balance
		txn.BalanceAfter = balance + approvedAmount
		txn.ApprovedAt = &now
		txn.ApprovedByID = &approverID

		if err := repos.Credit.Update(ctx, txn); err != nil {
			return err
		}
		approved = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, approverID, "approve", "credit_transaction", approved.ID,
			fmt.Sprintf("approved %.2f for farmer %d", approvedAmount, approved.FarmerID), ip, userAgent)
	}

	return approved, nil
}

// Reject closes a pending credit request.
func (s *CreditService) Reject(ctx context.Context, id uint, approverID uint, ip, userAgent string) (*models.CreditTransaction, error) {
	txn, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.Status != models.CreditStatusPending {
		return nil, ErrInvalidState
	}

	txn.Status = models.CreditStatusRejected
	if err := s.repo.Update(ctx, txn); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, approverID, "reject", "credit_transaction", txn.ID, "", ip, userAgent)
	}

	return txn, nil
}

// Consume draws down the farmer's open credit lines FIFO by approval date,
// clamped to what is actually available: asking for more than the balance
// consumes the balance and returns the smaller figure, never an error.
func (s *CreditService) Consume(ctx context.Context, farmerID uint, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, NewValidationError("amount", "must be greater than zero")
	}

	var consumed float64
	err := s.txm.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		consumed, err = consumeFIFO(ctx, repos, 0, farmerID, amount)
		return err
	})
	if err != nil {
		return 0, err
	}

	logger.Info("credit consumed", "farmer_id", farmerID, "requested", amount, "consumed", consumed)
	return consumed, nil
}

// consumeFIFO walks the farmer's open lines oldest-approval-first inside the
// caller's transaction, recording a consumption row per line touched when a
// payment id is given. Returns the amount actually taken.
func consumeFIFO(ctx context.Context, repos *repository.Repositories, paymentID, farmerID uint, amount float64) (float64, error) {
	lines, err := repos.Credit.FindConsumable(ctx, farmerID, true)
	if err != nil {
		return 0, err
	}

	remaining := amount
	consumed := 0.0
	for i := range lines {
		if remaining <= 0 {
			break
		}
		line := &lines[i]

		take := line.Remaining()
		if take > remaining {
			take = remaining
		}
		if take <= 0 {
			continue
		}

		line.ConsumedAmount += take
		if err := repos.Credit.Update(ctx, line); err != nil {
			return 0, err
		}
		if paymentID != 0 {
			consumption := &models.CreditConsumption{
				CreditTransactionID: line.ID,
				PaymentID:           paymentID,
				FarmerID:            farmerID,
				Amount:              take,
			}
			if err := repos.Credit.CreateConsumption(ctx, consumption); err != nil {
				return 0, err
			}
		}

		remaining -= take
		consumed += take
	}

	return consumed, nil
}

// releaseForPayment undoes a payment's credit draw inside the caller's
// transaction: restores each line's consumed amount and deletes the
// consumption rows. Used when a pending payment is regenerated.
func releaseForPayment(ctx context.Context, repos *repository.Repositories, paymentID uint) error {
	consumptions, err := repos.Credit.FindConsumptionsByPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	for _, c := range consumptions {
		line, err := repos.Credit.FindByID(ctx, c.CreditTransactionID)
		if err != nil {
			return err
		}
		line.ConsumedAmount -= c.Amount
		if line.ConsumedAmount < 0 {
			line.ConsumedAmount = 0
		}
		if err := repos.Credit.Update(ctx, line); err != nil {
			return err
		}
	}
	return repos.Credit.DeleteConsumptionsByPayment(ctx, paymentID)
}

// setSettlementForPayment flips the settlement status of every credit line a
// payment drew from. Finalizing a payment marks them processed; rolling it
// back returns them to pending.
func setSettlementForPayment(ctx context.Context, repos *repository.Repositories, paymentID uint, status string) error {
	consumptions, err := repos.Credit.FindConsumptionsByPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	seen := make(map[uint]bool, len(consumptions))
	for _, c := range consumptions {
		if seen[c.CreditTransactionID] {
			continue
		}
		seen[c.CreditTransactionID] = true

		line, err := repos.Credit.FindByID(ctx, c.CreditTransactionID)
		if err != nil {
			return err
		}
		line.SettlementStatus = status
		if err := repos.Credit.Update(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

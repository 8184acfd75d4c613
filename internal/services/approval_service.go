package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dairylink/dairylink-api/internal/config"
	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/dairylink/dairylink-api/internal/repository"
	"github.com/dairylink/dairylink-api/internal/statemachine"
	"github.com/dairylink/dairylink-api/pkg/logger"
)

// BatchApprovalResult reports the outcome of one batch approval.
type BatchApprovalResult struct {
	CollectorID    uint              `json:"collector_id"`
	CollectionDate time.Time         `json:"collection_date"`
	RecordedLiters float64           `json:"recorded_liters"`
	ReceivedLiters float64           `json:"received_liters"`
	Variance       float64           `json:"variance"`
	TotalPenalty   float64           `json:"total_penalty"`
	Approvals      []models.Approval `json:"approvals"`
}

type ApprovalService struct {
	txm      repository.TxManager
	repo     repository.ApprovalRepository
	cfg      *config.Config
	auditSvc *AuditService
}

func NewApprovalService(txm repository.TxManager, repo repository.ApprovalRepository, cfg *config.Config, auditSvc *AuditService) *ApprovalService {
	return &ApprovalService{
		txm:      txm,
		repo:     repo,
		cfg:      cfg,
		auditSvc: auditSvc,
	}
}

// BatchApprove reconciles one collector's deliveries for one calendar date
// against the liters the plant actually received. The received total is
// redistributed across the day's unapproved collections in proportion to what
// each farmer had recorded, each collection is rewritten to its adjusted
// quantity and flipped to collected, and an immutable Approval row captures
// the variance. A shortfall beyond the configured tolerance charges the
// collector a per-liter penalty on that row.
//
// The whole batch commits or none of it does.
func (s *ApprovalService) BatchApprove(ctx context.Context, staffID, collectorID uint, date time.Time, receivedLiters float64, ip, userAgent string) (*BatchApprovalResult, error) {
	if receivedLiters < 0 {
		return nil, NewValidationError("received_liters", "must not be negative")
	}
	if date.IsZero() {
		return nil, NewValidationError("collection_date", "is required")
	}

	var result *BatchApprovalResult

	err := s.txm.Do(ctx, func(repos *repository.Repositories) error {
		collections, err := repos.Collection.FindUnapprovedForBatch(ctx, collectorID, date, true)
		if err != nil {
			return err
		}
		if len(collections) == 0 {
			return ErrNoCollections
		}

		recordedTotal := 0.0
		for _, c := range collections {
			recordedTotal += c.Liters
		}
		if recordedTotal <= 0 {
			return ErrInvalidBatch
		}

		ratio := receivedLiters / recordedTotal
		now := time.Now()

		result = &BatchApprovalResult{
			CollectorID:    collectorID,
			CollectionDate: date,
			RecordedLiters: recordedTotal,
			ReceivedLiters: receivedLiters,
			Variance:       receivedLiters - recordedTotal,
			Approvals:      make([]models.Approval, 0, len(collections)),
		}

		for i := range collections {
			c := &collections[i]

			recorded := c.Liters
			adjusted := recorded * ratio
			variance := adjusted - recorded
			variancePercent := (variance / recorded) * 100

			penalty := 0.0
			if variancePercent < -s.cfg.PenaltyTolerancePercent {
				penalty = math.Abs(variance) * s.cfg.PenaltyRatePerLiter
			}

			approval := models.Approval{
				CollectionID:    c.ID,
				CollectorID:     collectorID,
				ApprovedByID:    staffID,
				CollectionDate:  c.CollectionDate,
				RecordedLiters:  recorded,
				AdjustedLiters:  adjusted,
				Variance:        variance,
				VariancePercent: variancePercent,
				PenaltyAmount:   penalty,
				PenaltyStatus:   models.PenaltyStatusPending,
				FeeAmount:       adjusted * s.cfg.CollectorFeePerLiter,
				ApprovedAt:      now,
			}
			if err := repos.Approval.Create(ctx, &approval); err != nil {
				if errors.Is(err, repository.ErrDuplicateKey) {
					return ErrConcurrentModification
				}
				return err
			}

			cfsm := statemachine.NewCollectionFSM(c)
			if err := cfsm.Collect(ctx); err != nil {
				return ErrInvalidState
			}
			c.Liters = adjusted
			c.TotalAmount = adjusted * c.RatePerLiter
			c.Approved = true
			if err := repos.Collection.Update(ctx, c); err != nil {
				return err
			}

			result.TotalPenalty += penalty
			result.Approvals = append(result.Approvals, approval)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("batch approved",
		"collector_id", collectorID,
		"date", date.Format("2006-01-02"),
		"collections", len(result.Approvals),
		"recorded_liters", result.RecordedLiters,
		"received_liters", result.ReceivedLiters,
		"total_penalty", result.TotalPenalty,
	)

	if s.auditSvc != nil {
		_ = s.auditSvc.Log(ctx, staffID, "batch_approve", "collector", collectorID,
			fmt.Sprintf("approved %d collections for %s, received %.3f of %.3f recorded liters",
				len(result.Approvals), date.Format("2006-01-02"), receivedLiters, result.RecordedLiters),
			ip, userAgent)
	}

	return result, nil
}

// FindByCollectionIDs returns approvals for the given collections.
func (s *ApprovalService) FindByCollectionIDs(ctx context.Context, ids []uint) ([]models.Approval, error) {
	return s.repo.FindByCollectionIDs(ctx, ids)
}

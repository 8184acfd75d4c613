package services

import (
	"context"
	"testing"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedApproval(store *fakeStore, collectorID uint, date time.Time, adjusted, fee, penalty float64) *models.Approval {
	a := &models.Approval{
		ID:             store.id(),
		CollectionID:   store.id(),
		CollectorID:    collectorID,
		ApprovedByID:   1,
		CollectionDate: date,
		RecordedLiters: adjusted,
		AdjustedLiters: adjusted,
		PenaltyAmount:  penalty,
		PenaltyStatus:  models.PenaltyStatusPending,
		FeeAmount:      fee,
		ApprovedAt:     date,
	}
	store.approvals[a.ID] = a
	return a
}

func TestCollectorService_ComputePayment_Aggregates(t *testing.T) {
	store, repos, txm := newTestEnv()
	service := NewCollectorService(txm, repos.CollectorPayment, repos.User, nil)

	collector := store.addUser(models.RoleCollector)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	seedApproval(store, collector.ID, start.AddDate(0, 0, 5), 90, 135, 20)
	seedApproval(store, collector.ID, start.AddDate(0, 0, 12), 110, 165, 0)
	// Outside the window, must not count.
	seedApproval(store, collector.ID, end.AddDate(0, 0, 1), 50, 75, 10)

	payment, err := service.ComputePayment(context.Background(), collector.ID, start, end, 1, "", "")
	require.NoError(t, err)

	assert.InDelta(t, 200.0, payment.TotalLiters, 1e-9)
	assert.InDelta(t, 300.0, payment.TotalFee, 1e-9)
	assert.InDelta(t, 20.0, payment.TotalPenalty, 1e-9)
	assert.InDelta(t, 280.0, payment.NetEarnings(), 1e-9)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
}

func TestCollectorService_ComputePayment_IdempotentPerWindow(t *testing.T) {
	store, repos, txm := newTestEnv()
	service := NewCollectorService(txm, repos.CollectorPayment, repos.User, nil)

	collector := store.addUser(models.RoleCollector)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	seedApproval(store, collector.ID, start.AddDate(0, 0, 3), 100, 150, 0)

	first, err := service.ComputePayment(context.Background(), collector.ID, start, end, 1, "", "")
	require.NoError(t, err)

	// A later approval lands in the window; recomputing refreshes the same row.
	seedApproval(store, collector.ID, start.AddDate(0, 0, 20), 50, 75, 5)

	second, err := service.ComputePayment(context.Background(), collector.ID, start, end, 1, "", "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.collectorPayments, 1)
	assert.InDelta(t, 150.0, second.TotalLiters, 1e-9)
	assert.InDelta(t, 225.0, second.TotalFee, 1e-9)
	assert.InDelta(t, 5.0, second.TotalPenalty, 1e-9)
}

func TestCollectorService_MarkPaid_ClosesPenalties(t *testing.T) {
	store, repos, txm := newTestEnv()
	service := NewCollectorService(txm, repos.CollectorPayment, repos.User, nil)

	collector := store.addUser(models.RoleCollector)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	penalized := seedApproval(store, collector.ID, start.AddDate(0, 0, 2), 80, 120, 30)
	clean := seedApproval(store, collector.ID, start.AddDate(0, 0, 9), 40, 60, 0)

	payment, err := service.ComputePayment(context.Background(), collector.ID, start, end, 1, "", "")
	require.NoError(t, err)

	paid, err := service.MarkPaid(context.Background(), payment.ID, 1, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	assert.Equal(t, models.PenaltyStatusPaid, store.approvals[penalized.ID].PenaltyStatus)
	// Penalty-free approvals are left alone.
	assert.Equal(t, models.PenaltyStatusPending, store.approvals[clean.ID].PenaltyStatus)

	// Settled windows are frozen.
	_, err = service.MarkPaid(context.Background(), payment.ID, 1, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = service.ComputePayment(context.Background(), collector.ID, start, end, 1, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCollectorService_ComputePayment_Validation(t *testing.T) {
	store, repos, txm := newTestEnv()
	service := NewCollectorService(txm, repos.CollectorPayment, repos.User, nil)

	collector := store.addUser(models.RoleCollector)
	farmer := store.addUser(models.RoleFarmer)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var vErr *ValidationError
	_, err := service.ComputePayment(context.Background(), collector.ID, start, start, 1, "", "")
	assert.ErrorAs(t, err, &vErr)

	_, err = service.ComputePayment(context.Background(), farmer.ID, start, start.AddDate(0, 1, 0), 1, "", "")
	assert.ErrorAs(t, err, &vErr)
}

package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/dairylink/dairylink-api/internal/config"
	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		PenaltyTolerancePercent: 5.0,
		PenaltyRatePerLiter:     2.0,
		CollectorFeePerLiter:    1.5,
	}
}

func TestApprovalService_BatchApprove_ProportionalRedistribution(t *testing.T) {
	store, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)
	f1 := store.addUser(models.RoleFarmer)
	f2 := store.addUser(models.RoleFarmer)
	f3 := store.addUser(models.RoleFarmer)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	c1 := store.addCollection(f1.ID, collector.ID, 10, 50, date)
	c2 := store.addCollection(f2.ID, collector.ID, 15, 50, date)
	c3 := store.addCollection(f3.ID, collector.ID, 25, 50, date)

	// Plant received 45 of the 50 recorded liters: a 10% shortfall.
	result, err := service.BatchApprove(context.Background(), staff.ID, collector.ID, date, 45, "", "")
	require.NoError(t, err)
	require.Len(t, result.Approvals, 3)

	assert.InDelta(t, 50.0, result.RecordedLiters, 1e-9)
	assert.InDelta(t, 9.0, result.Approvals[0].AdjustedLiters, 1e-9)
	assert.InDelta(t, 13.5, result.Approvals[1].AdjustedLiters, 1e-9)
	assert.InDelta(t, 22.5, result.Approvals[2].AdjustedLiters, 1e-9)

	for _, a := range result.Approvals {
		assert.InDelta(t, -10.0, a.VariancePercent, 1e-9)
		// 10% shortfall is past the 5% tolerance: the lost liters are charged.
		assert.InDelta(t, math.Abs(a.Variance)*2.0, a.PenaltyAmount, 1e-9)
		assert.Equal(t, models.PenaltyStatusPending, a.PenaltyStatus)
	}

	// Collections now carry the adjusted quantities and are approved.
	assert.InDelta(t, 9.0, store.collections[c1.ID].Liters, 1e-9)
	assert.InDelta(t, 9.0*50, store.collections[c1.ID].TotalAmount, 1e-9)
	assert.True(t, store.collections[c2.ID].Approved)
	assert.Equal(t, models.CollectionStatusCollected, store.collections[c3.ID].Status)
}

func TestApprovalService_BatchApprove_AdjustedSumMatchesReceived(t *testing.T) {
	store, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)
	date := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	// Awkward quantities that do not divide evenly.
	liters := []float64{7.123, 11.987, 3.333, 19.251, 0.777}
	for _, l := range liters {
		farmer := store.addUser(models.RoleFarmer)
		store.addCollection(farmer.ID, collector.ID, l, 48.5, date)
	}

	received := 39.999
	result, err := service.BatchApprove(context.Background(), staff.ID, collector.ID, date, received, "", "")
	require.NoError(t, err)

	sum := 0.0
	for _, a := range result.Approvals {
		sum += a.AdjustedLiters
	}
	assert.InDelta(t, received, sum, 1e-6)
}

func TestApprovalService_BatchApprove_WithinTolerance_NoPenalty(t *testing.T) {
	store, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)
	farmer := store.addUser(models.RoleFarmer)
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	store.addCollection(farmer.ID, collector.ID, 100, 50, date)

	// 3% shortfall stays inside the 5% tolerance.
	result, err := service.BatchApprove(context.Background(), staff.ID, collector.ID, date, 97, "", "")
	require.NoError(t, err)
	require.Len(t, result.Approvals, 1)
	assert.Zero(t, result.Approvals[0].PenaltyAmount)
	assert.Zero(t, result.TotalPenalty)
}

func TestApprovalService_BatchApprove_Surplus_NoPenalty(t *testing.T) {
	store, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)
	farmer := store.addUser(models.RoleFarmer)
	date := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	store.addCollection(farmer.ID, collector.ID, 100, 50, date)

	result, err := service.BatchApprove(context.Background(), staff.ID, collector.ID, date, 110, "", "")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, result.Approvals[0].VariancePercent, 1e-9)
	assert.Zero(t, result.Approvals[0].PenaltyAmount)
}

func TestApprovalService_BatchApprove_NothingReceived(t *testing.T) {
	store, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)
	farmer := store.addUser(models.RoleFarmer)
	date := time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC)
	c := store.addCollection(farmer.ID, collector.ID, 20, 50, date)

	// A spoiled load: zero liters received is a valid batch, everything
	// adjusts to nothing and the whole shortfall is penalized.
	result, err := service.BatchApprove(context.Background(), staff.ID, collector.ID, date, 0, "", "")
	require.NoError(t, err)
	require.Len(t, result.Approvals, 1)

	assert.Zero(t, result.Approvals[0].AdjustedLiters)
	assert.InDelta(t, -100.0, result.Approvals[0].VariancePercent, 1e-9)
	assert.InDelta(t, 20*2.0, result.Approvals[0].PenaltyAmount, 1e-9)
	assert.Zero(t, store.collections[c.ID].Liters)
	assert.Zero(t, store.collections[c.ID].TotalAmount)
	assert.Equal(t, models.CollectionStatusCollected, store.collections[c.ID].Status)
}

func TestApprovalService_BatchApprove_NoCollections(t *testing.T) {
	store, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)

	_, err := service.BatchApprove(context.Background(), staff.ID, collector.ID, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), 45, "", "")
	assert.ErrorIs(t, err, ErrNoCollections)
}

func TestApprovalService_BatchApprove_ZeroRecordedSum(t *testing.T) {
	store, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)
	farmer := store.addUser(models.RoleFarmer)
	date := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	store.addCollection(farmer.ID, collector.ID, 0, 50, date)

	_, err := service.BatchApprove(context.Background(), staff.ID, collector.ID, date, 45, "", "")
	assert.ErrorIs(t, err, ErrInvalidBatch)
}

func TestApprovalService_BatchApprove_AlreadyApprovedExcluded(t *testing.T) {
	store, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)
	farmer := store.addUser(models.RoleFarmer)
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	done := store.addCollection(farmer.ID, collector.ID, 20, 50, date)
	done.Approved = true
	done.Status = models.CollectionStatusCollected

	fresh := store.addCollection(farmer.ID, collector.ID, 30, 50, date)

	result, err := service.BatchApprove(context.Background(), staff.ID, collector.ID, date, 30, "", "")
	require.NoError(t, err)
	require.Len(t, result.Approvals, 1)
	assert.Equal(t, fresh.ID, result.Approvals[0].CollectionID)
	assert.InDelta(t, 30.0, result.RecordedLiters, 1e-9)
}

func TestApprovalService_BatchApprove_Validation(t *testing.T) {
	_, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	_, err := service.BatchApprove(context.Background(), 1, 2, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), -5, "", "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "received_liters", vErr.Field)

	_, err = service.BatchApprove(context.Background(), 1, 2, time.Time{}, 45, "", "")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "collection_date", vErr.Field)
}

func TestApprovalService_BatchApprove_FeePerAdjustedLiter(t *testing.T) {
	store, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)
	farmer := store.addUser(models.RoleFarmer)
	date := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)
	store.addCollection(farmer.ID, collector.ID, 40, 50, date)

	result, err := service.BatchApprove(context.Background(), staff.ID, collector.ID, date, 40, "", "")
	require.NoError(t, err)
	assert.InDelta(t, 40*1.5, result.Approvals[0].FeeAmount, 1e-9)
}

func TestApprovalService_BatchApprove_RacingBatchConflicts(t *testing.T) {
	store, _, txm := newTestEnv()
	service := NewApprovalService(txm, nil, testConfig(), nil)

	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)
	farmer := store.addUser(models.RoleFarmer)
	date := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	c := store.addCollection(farmer.ID, collector.ID, 40, 50, date)

	// A racing batch already committed this collection's approval row.
	id := store.id()
	store.approvals[id] = &models.Approval{
		ID:             id,
		CollectionID:   c.ID,
		CollectorID:    collector.ID,
		CollectionDate: date,
		ApprovedAt:     date,
	}

	_, err := service.BatchApprove(context.Background(), staff.ID, collector.ID, date, 40, "", "")
	require.ErrorIs(t, err, ErrConcurrentModification)
}

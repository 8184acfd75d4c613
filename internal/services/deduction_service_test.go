package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/dairylink/dairylink-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeductionService_ApplyDueDeductions_Idempotent(t *testing.T) {
	store, repos, txm := newTestEnv()
	service := NewDeductionService(txm, repos.Deduction, repos.User, nil)

	farmer := store.addUser(models.RoleFarmer)
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	deduction := store.addDeduction(farmer.ID, 250, models.FrequencyMonthly, due)

	asOf := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	result, err := service.ApplyDueDeductions(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Zero(t, result.Failed)

	// The due date advanced one month.
	assert.Equal(t, "2026-05-01", store.deductions[deduction.ID].NextDueDate.Format("2006-01-02"))

	// Re-running the same window applies nothing new.
	result, err = service.ApplyDueDeductions(context.Background(), asOf)
	require.NoError(t, err)
	assert.Zero(t, result.Applied)
	assert.Zero(t, result.Failed)
	assert.Len(t, store.applications, 1)
}

func TestDeductionService_ApplyDueDeductions_OneTimeDeactivates(t *testing.T) {
	store, repos, txm := newTestEnv()
	service := NewDeductionService(txm, repos.Deduction, repos.User, nil)

	farmer := store.addUser(models.RoleFarmer)
	due := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	deduction := store.addDeduction(farmer.ID, 900, models.FrequencyOneTime, due)

	result, err := service.ApplyDueDeductions(context.Background(), due)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.False(t, store.deductions[deduction.ID].Active)

	// A later run finds nothing due.
	result, err = service.ApplyDueDeductions(context.Background(), due.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Zero(t, result.Applied)
	assert.Len(t, store.applications, 1)
}

func TestDeductionService_ApplyDueDeductions_WeeklyAdvance(t *testing.T) {
	store, repos, txm := newTestEnv()
	service := NewDeductionService(txm, repos.Deduction, repos.User, nil)

	farmer := store.addUser(models.RoleFarmer)
	due := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	deduction := store.addDeduction(farmer.ID, 75, models.FrequencyWeekly, due)

	_, err := service.ApplyDueDeductions(context.Background(), due)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-13", store.deductions[deduction.ID].NextDueDate.Format("2006-01-02"))
	assert.True(t, store.deductions[deduction.ID].Active)
}

func TestDeductionService_ApplyDueDeductions_NotYetDue(t *testing.T) {
	store, repos, txm := newTestEnv()
	service := NewDeductionService(txm, repos.Deduction, repos.User, nil)

	farmer := store.addUser(models.RoleFarmer)
	store.addDeduction(farmer.ID, 75, models.FrequencyMonthly, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))

	result, err := service.ApplyDueDeductions(context.Background(), time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, result.Applied)
	assert.Empty(t, store.applications)
}

// failingDeductionRepo fails application creation for one deduction to prove
// one bad item does not poison the run.
type failingDeductionRepo struct {
	repository.DeductionRepository
	failFor uint
}

func (r *failingDeductionRepo) CreateApplication(ctx context.Context, a *models.DeductionApplication) error {
	if a.DeductionID == r.failFor {
		return errors.New("insert failed")
	}
	return r.DeductionRepository.CreateApplication(ctx, a)
}

func TestDeductionService_ApplyDueDeductions_PartialFailure(t *testing.T) {
	store, repos, _ := newTestEnv()

	farmer := store.addUser(models.RoleFarmer)
	due := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	bad := store.addDeduction(farmer.ID, 100, models.FrequencyMonthly, due)
	good := store.addDeduction(farmer.ID, 200, models.FrequencyMonthly, due)

	repos.Deduction = &failingDeductionRepo{DeductionRepository: repos.Deduction, failFor: bad.ID}
	txm := &fakeTxManager{repos: repos}
	service := NewDeductionService(txm, repos.Deduction, repos.User, nil)

	result, err := service.ApplyDueDeductions(context.Background(), due)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)

	// The healthy item still went through and advanced.
	assert.Equal(t, "2026-05-15", store.deductions[good.ID].NextDueDate.Format("2006-01-02"))
	// The failed one stays due for the next run.
	assert.Equal(t, "2026-04-15", store.deductions[bad.ID].NextDueDate.Format("2006-01-02"))
}

func TestDeductionService_Create_Validation(t *testing.T) {
	store, repos, txm := newTestEnv()
	service := NewDeductionService(txm, repos.Deduction, repos.User, nil)

	farmer := store.addUser(models.RoleFarmer)
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	var vErr *ValidationError
	_, err := service.Create(context.Background(), farmer.ID, "feed loan", -5, models.FrequencyMonthly, due, 1, "", "")
	assert.ErrorAs(t, err, &vErr)

	_, err = service.Create(context.Background(), farmer.ID, "", 100, models.FrequencyMonthly, due, 1, "", "")
	assert.ErrorAs(t, err, &vErr)

	_, err = service.Create(context.Background(), farmer.ID, "feed loan", 100, "yearly", due, 1, "", "")
	assert.ErrorAs(t, err, &vErr)

	created, err := service.Create(context.Background(), farmer.ID, "feed loan", 100, models.FrequencyMonthly, due, 1, "", "")
	require.NoError(t, err)
	assert.True(t, created.Active)
}

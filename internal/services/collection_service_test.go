package services

import (
	"context"
	"testing"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionService_Create_DerivesAmount(t *testing.T) {
	store, repos, _ := newTestEnv()
	service := NewCollectionService(repos.Collection, repos.User, nil)

	farmer := store.addUser(models.RoleFarmer)
	collector := store.addUser(models.RoleCollector)

	collection, err := service.Create(context.Background(), CreateCollectionInput{
		FarmerID:       farmer.ID,
		CollectorID:    collector.ID,
		Liters:         12.5,
		RatePerLiter:   48,
		CollectionDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	}, collector.ID, "", "")
	require.NoError(t, err)

	assert.InDelta(t, 600.0, collection.TotalAmount, 1e-9)
	assert.Equal(t, models.CollectionStatusRecorded, collection.Status)
	assert.False(t, collection.Approved)
	assert.Equal(t, models.FeeStatusPending, collection.FeeStatus)
}

func TestCollectionService_Create_Validation(t *testing.T) {
	store, repos, _ := newTestEnv()
	service := NewCollectionService(repos.Collection, repos.User, nil)

	farmer := store.addUser(models.RoleFarmer)
	collector := store.addUser(models.RoleCollector)
	date := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	var vErr *ValidationError

	_, err := service.Create(context.Background(), CreateCollectionInput{
		FarmerID: farmer.ID, CollectorID: collector.ID, Liters: 0, RatePerLiter: 48, CollectionDate: date,
	}, collector.ID, "", "")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "liters", vErr.Field)

	_, err = service.Create(context.Background(), CreateCollectionInput{
		FarmerID: farmer.ID, CollectorID: collector.ID, Liters: 10, RatePerLiter: -1, CollectionDate: date,
	}, collector.ID, "", "")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "rate_per_liter", vErr.Field)

	// Roles are checked both ways around.
	_, err = service.Create(context.Background(), CreateCollectionInput{
		FarmerID: collector.ID, CollectorID: collector.ID, Liters: 10, RatePerLiter: 48, CollectionDate: date,
	}, collector.ID, "", "")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "farmer_id", vErr.Field)

	_, err = service.Create(context.Background(), CreateCollectionInput{
		FarmerID: farmer.ID, CollectorID: farmer.ID, Liters: 10, RatePerLiter: 48, CollectionDate: date,
	}, collector.ID, "", "")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "collector_id", vErr.Field)
}

func TestCollectionService_Verify(t *testing.T) {
	store, repos, _ := newTestEnv()
	service := NewCollectionService(repos.Collection, repos.User, nil)

	farmer := store.addUser(models.RoleFarmer)
	collector := store.addUser(models.RoleCollector)
	staff := store.addUser(models.RoleStaff)
	c := store.addCollection(farmer.ID, collector.ID, 10, 50, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC))
	c.Approved = true
	c.Status = models.CollectionStatusCollected

	verified, err := service.Verify(context.Background(), c.ID, staff.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStatusVerified, verified.Status)

	// A recorded collection cannot skip straight to verified.
	fresh := store.addCollection(farmer.ID, collector.ID, 10, 50, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC))
	_, err = service.Verify(context.Background(), fresh.ID, staff.ID, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

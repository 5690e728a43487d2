package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"github.com/hagglehub/negotiation-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newVehicleService(db *gorm.DB) *service.VehicleService {
	return service.NewVehicleService(repository.NewVehicleRepository(db), zap.NewNop())
}

func intPtr(v int) *int { return &v }

func TestVehicleService_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	svc := newVehicleService(db)
	ctx := context.Background()

	dto, err := svc.Create(ctx, testUserID, &domain.CreateVehicleRequest{
		Year:    intPtr(2023),
		Make:    "Ford",
		Model:   "Maverick",
		Trim:    "XLT",
		VIN:     "3fTTW8f97pra12345",
		Mileage: intPtr(12000),
	})
	require.NoError(t, err)

	// VIN is stored uppercased.
	assert.Equal(t, "3FTTW8F97PRA12345", dto.VIN)
	assert.Equal(t, domain.VehicleConditionUsed, dto.Condition)

	got, err := svc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maverick", got.Model)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestVehicleService_Update(t *testing.T) {
	db := setupTestDB(t)
	svc := newVehicleService(db)
	ctx := context.Background()

	vehicle := createTestVehicle(t, db)

	dto, err := svc.Update(ctx, vehicle.ID, &domain.CreateVehicleRequest{
		Year:    intPtr(2022),
		Make:    "Toyota",
		Model:   "Tundra",
		Trim:    "Limited",
		Mileage: intPtr(18500),
	})
	require.NoError(t, err)
	assert.Equal(t, "Limited", dto.Trim)
	require.NotNil(t, dto.Mileage)
	assert.Equal(t, 18500, *dto.Mileage)
}

func TestVehicleService_List_Filters(t *testing.T) {
	db := setupTestDB(t)
	svc := newVehicleService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, testUserID, &domain.CreateVehicleRequest{
		Year: intPtr(2020), Make: "Honda", Model: "Accord",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testUserID, &domain.CreateVehicleRequest{
		Year: intPtr(2023), Make: "Honda", Model: "Pilot",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testUserID, &domain.CreateVehicleRequest{
		Year: intPtr(2023), Make: "Ford", Model: "Bronco",
	})
	require.NoError(t, err)

	userID := testUserID
	mk := "Honda"
	page, err := svc.List(ctx, 1, 20, &repository.VehicleFilters{UserID: &userID, Make: &mk})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	minYear := 2022
	page, err = svc.List(ctx, 1, 20, &repository.VehicleFilters{UserID: &userID, MinYear: &minYear})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestVehicleService_Delete(t *testing.T) {
	db := setupTestDB(t)
	svc := newVehicleService(db)
	ctx := context.Background()

	vehicle := createTestVehicle(t, db)
	require.NoError(t, svc.Delete(ctx, vehicle.ID))

	_, err := svc.GetByID(ctx, vehicle.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

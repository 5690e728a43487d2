package service_test

import (
	"testing"

	"github.com/hagglehub/negotiation-api/internal/database"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/pricing"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUserID = "test-user"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory test database")
	require.NoError(t, database.AutoMigrate(db))

	return db
}

func createTestVehicle(t *testing.T, db *gorm.DB) *domain.Vehicle {
	t.Helper()

	year := 2022
	vehicle := &domain.Vehicle{
		UserID: testUserID,
		Year:   &year,
		Make:   "Toyota",
		Model:  "Tundra",
		VIN:    "5TFHY5F1XKX839771",
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func createTestDealer(t *testing.T, db *gorm.DB, name string) *domain.Dealer {
	t.Helper()

	dealer := &domain.Dealer{
		UserID:       testUserID,
		Name:         name,
		ContactEmail: "sales@example-dealer.com",
	}
	require.NoError(t, db.Create(dealer).Error)
	return dealer
}

func createTestDeal(t *testing.T, db *gorm.DB, mutate func(*domain.Deal)) *domain.Deal {
	t.Helper()

	vehicle := createTestVehicle(t, db)
	dealer := createTestDealer(t, db, "Toyota of Cedar Park")

	deal := &domain.Deal{
		UserID:          testUserID,
		VehicleID:       vehicle.ID,
		DealerID:        dealer.ID,
		Status:          domain.DealStatusNegotiating,
		PurchaseType:    domain.PurchaseTypeCash,
		NegotiationMode: domain.NegotiationModeSalesPrice,
	}
	if mutate != nil {
		mutate(deal)
	}
	require.NoError(t, db.Create(deal).Error)
	return deal
}

// seedZipRates loads the reference rows the fee resolver tests rely on.
func seedZipRates(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create(&domain.ZipTaxRate{
		ZipCode:             "78641",
		State:               "TX",
		City:                "Leander",
		SalesTaxRate:        0.0825,
		RegistrationBaseFee: 76.25,
		DocFeeAverage:       150.00,
		TitleFee:            33.00,
	}).Error)
}

func newTestResolver(db *gorm.DB) *pricing.Resolver {
	return pricing.NewResolver(repository.NewZipTaxRateRepository(db), pricing.StandardDefaults())
}

func floatPtr(v float64) *float64 { return &v }

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

func newDealService(db *gorm.DB) *service.DealService {
	return service.NewDealService(
		repository.NewDealRepository(db),
		repository.NewVehicleRepository(db),
		repository.NewDealerRepository(db),
		newTestResolver(db),
		zap.NewNop(),
		db,
	)
}

func TestDealService_Create(t *testing.T) {
	db := setupTestDB(t)
	seedZipRates(t, db)
	svc := newDealService(db)
	ctx := context.Background()

	vehicle := createTestVehicle(t, db)
	dealer := createTestDealer(t, db, "Round Rock Honda")

	dto, err := svc.Create(ctx, testUserID, &domain.CreateDealRequest{
		VehicleID:    vehicle.ID,
		DealerID:     dealer.ID,
		AskingPrice:  floatPtr(50000),
		BuyerZipCode: "78641",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DealStatusQuoteRequested, dto.Status)
	assert.Equal(t, domain.NegotiationModeSalesPrice, dto.NegotiationMode)
	require.NotNil(t, dto.EstimatedSalesTax)
	assert.Equal(t, 4125.00, *dto.EstimatedSalesTax)
	assert.Equal(t, domain.FeeMethodZipCodeLookup, dto.FeeCalculationMethod)
}

func TestDealService_Create_UnknownVehicle(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)

	dealer := createTestDealer(t, db, "Covert Ford")
	_, err := svc.Create(context.Background(), testUserID, &domain.CreateDealRequest{
		VehicleID: uuid.New(),
		DealerID:  dealer.ID,
	})
	assert.Error(t, err)
}

func TestDealService_UpdatePrices_SalesMode(t *testing.T) {
	db := setupTestDB(t)
	seedZipRates(t, db)
	svc := newDealService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, func(d *domain.Deal) {
		d.AskingPrice = floatPtr(50000)
		d.BuyerZipCode = "78641"
	})

	dto, err := svc.UpdatePrices(ctx, deal.ID, &domain.UpdateDealPricesRequest{
		CurrentOffer: floatPtr(47000),
	})
	require.NoError(t, err)

	// Fees recompute from the new offer and the OTD mirrors follow.
	require.NotNil(t, dto.EstimatedSalesTax)
	assert.Equal(t, 3877.50, *dto.EstimatedSalesTax) // 47000 * 0.0825
	require.NotNil(t, dto.OTDCurrentOffer)
	assert.InDelta(t, 47000+3877.50+76.25+150+33, *dto.OTDCurrentOffer, 0.01)
	require.NotNil(t, dto.CurrentOffer)
	assert.Equal(t, 47000.0, *dto.CurrentOffer)
}

func TestDealService_UpdatePrices_OTDModeEditsLandInOTDSpace(t *testing.T) {
	db := setupTestDB(t)
	seedZipRates(t, db)
	svc := newDealService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, func(d *domain.Deal) {
		d.NegotiationMode = domain.NegotiationModeOTD
		d.AskingPrice = floatPtr(50000)
		d.BuyerZipCode = "78641"
		d.EstimatedSalesTax = floatPtr(4125)
		d.EstimatedRegistrationFee = floatPtr(76.25)
		d.EstimatedDocFee = floatPtr(150)
		d.EstimatedTitleFee = floatPtr(33)
		d.EstimatedTotalFees = floatPtr(4384.25)
		d.FeeCalculationMethod = domain.FeeMethodZipCodeLookup
	})

	dto, err := svc.UpdatePrices(ctx, deal.ID, &domain.UpdateDealPricesRequest{
		CurrentOffer: floatPtr(51000),
	})
	require.NoError(t, err)

	require.NotNil(t, dto.OTDCurrentOffer)
	assert.Equal(t, 51000.0, *dto.OTDCurrentOffer)
	// The sales-space mirror is derived by subtracting the fees.
	require.NotNil(t, dto.CurrentOffer)
	assert.Less(t, *dto.CurrentOffer, 51000.0)
}

func TestDealService_UpdatePrices_ManualOverrideBlocksRecalc(t *testing.T) {
	db := setupTestDB(t)
	seedZipRates(t, db)
	svc := newDealService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, func(d *domain.Deal) {
		d.AskingPrice = floatPtr(50000)
		d.BuyerZipCode = "78641"
		d.ManualFeesOverride = true
		d.EstimatedSalesTax = floatPtr(1111)
		d.EstimatedRegistrationFee = floatPtr(100)
		d.EstimatedDocFee = floatPtr(100)
		d.EstimatedTitleFee = floatPtr(100)
		d.EstimatedTotalFees = floatPtr(1411)
		d.FeeCalculationMethod = domain.FeeMethodManualOverride
	})

	dto, err := svc.UpdatePrices(ctx, deal.ID, &domain.UpdateDealPricesRequest{
		CurrentOffer: floatPtr(40000),
	})
	require.NoError(t, err)

	// Manual figures survive the price edit untouched.
	require.NotNil(t, dto.EstimatedSalesTax)
	assert.Equal(t, 1111.0, *dto.EstimatedSalesTax)
	assert.Equal(t, domain.FeeMethodManualOverride, dto.FeeCalculationMethod)
}

func TestDealService_ToggleNegotiationMode(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, func(d *domain.Deal) {
		d.AskingPrice = floatPtr(50000)
		d.EstimatedSalesTax = floatPtr(2500)
		d.EstimatedRegistrationFee = floatPtr(200)
		d.EstimatedDocFee = floatPtr(250)
		d.EstimatedTitleFee = floatPtr(50)
		d.EstimatedTotalFees = floatPtr(3000)
		d.FeeCalculationMethod = domain.FeeMethodDefaultEstimate
	})

	dto, err := svc.ToggleNegotiationMode(ctx, deal.ID, domain.NegotiationModeOTD)
	require.NoError(t, err)
	assert.Equal(t, domain.NegotiationModeOTD, dto.NegotiationMode)
	require.NotNil(t, dto.OTDAskingPrice)
	assert.Equal(t, 53000.0, *dto.OTDAskingPrice)

	// Round trip back preserves the sales-space figures.
	dto, err = svc.ToggleNegotiationMode(ctx, deal.ID, domain.NegotiationModeSalesPrice)
	require.NoError(t, err)
	assert.Equal(t, domain.NegotiationModeSalesPrice, dto.NegotiationMode)
	require.NotNil(t, dto.AskingPrice)
	assert.Equal(t, 50000.0, *dto.AskingPrice)
}

func TestDealService_ToggleNegotiationMode_RefusedWithoutBreakdown(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, func(d *domain.Deal) {
		d.AskingPrice = floatPtr(50000)
	})

	_, err := svc.ToggleNegotiationMode(ctx, deal.ID, domain.NegotiationModeOTD)
	assert.Error(t, err)

	// Mode and prices are untouched after the refusal.
	var fresh domain.Deal
	require.NoError(t, db.First(&fresh, "id = ?", deal.ID).Error)
	assert.Equal(t, domain.NegotiationModeSalesPrice, fresh.NegotiationMode)
	assert.Nil(t, fresh.OTDAskingPrice)
}

func TestDealService_ToggleNegotiationMode_SameModeIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, func(d *domain.Deal) {
		d.AskingPrice = floatPtr(50000)
	})

	// No breakdown on the deal, but toggling to the current mode never
	// requires one.
	dto, err := svc.ToggleNegotiationMode(ctx, deal.ID, domain.NegotiationModeSalesPrice)
	require.NoError(t, err)
	assert.Equal(t, domain.NegotiationModeSalesPrice, dto.NegotiationMode)
}

func TestDealService_ResolveFees(t *testing.T) {
	db := setupTestDB(t)
	seedZipRates(t, db)
	svc := newDealService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, func(d *domain.Deal) {
		d.AskingPrice = floatPtr(50000)
		d.BuyerZipCode = "78641"
	})

	dto, err := svc.ResolveFees(ctx, deal.ID)
	require.NoError(t, err)

	require.NotNil(t, dto.EstimatedSalesTax)
	assert.Equal(t, 4125.00, *dto.EstimatedSalesTax)
	require.NotNil(t, dto.OTDAskingPrice)
	assert.Equal(t, 54384.25, *dto.OTDAskingPrice)
}

func TestDealService_ResolveFees_LockedByManualOverride(t *testing.T) {
	db := setupTestDB(t)
	seedZipRates(t, db)
	svc := newDealService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, func(d *domain.Deal) {
		d.AskingPrice = floatPtr(50000)
		d.BuyerZipCode = "78641"
		d.ManualFeesOverride = true
	})

	_, err := svc.ResolveFees(ctx, deal.ID)
	assert.ErrorIs(t, err, service.ErrManualFeesLocked)
}

func TestDealService_SetAndClearManualFees(t *testing.T) {
	db := setupTestDB(t)
	seedZipRates(t, db)
	svc := newDealService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, func(d *domain.Deal) {
		d.AskingPrice = floatPtr(50000)
		d.BuyerZipCode = "78641"
	})

	dto, err := svc.SetManualFees(ctx, deal.ID, &domain.SetManualFeesRequest{
		SalesTax:        4000,
		RegistrationFee: 80,
		DocFee:          125,
		TitleFee:        33,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FeeMethodManualOverride, dto.FeeCalculationMethod)
	require.NotNil(t, dto.EstimatedSalesTax)
	assert.Equal(t, 4000.0, *dto.EstimatedSalesTax)
	assert.True(t, dto.ManualFeesOverride)

	// Clearing re-resolves from the zip table.
	dto, err = svc.ClearManualFees(ctx, deal.ID)
	require.NoError(t, err)
	assert.False(t, dto.ManualFeesOverride)
	assert.Equal(t, domain.FeeMethodZipCodeLookup, dto.FeeCalculationMethod)
	require.NotNil(t, dto.EstimatedSalesTax)
	assert.Equal(t, 4125.00, *dto.EstimatedSalesTax)
}

func TestDealService_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)
	ctx := context.Background()

	t.Run("valid transition", func(t *testing.T) {
		deal := createTestDeal(t, db, nil)
		dto, err := svc.UpdateStatus(ctx, deal.ID, &domain.UpdateDealStatusRequest{
			Status: domain.DealStatusFinalOffer,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DealStatusFinalOffer, dto.Status)
	})

	t.Run("invalid transition", func(t *testing.T) {
		deal := createTestDeal(t, db, func(d *domain.Deal) {
			d.Status = domain.DealStatusCompleted
		})
		_, err := svc.UpdateStatus(ctx, deal.ID, &domain.UpdateDealStatusRequest{
			Status: domain.DealStatusNegotiating,
		})
		assert.ErrorIs(t, err, service.ErrInvalidStatusTransition)
	})

	t.Run("reopen after decline", func(t *testing.T) {
		deal := createTestDeal(t, db, func(d *domain.Deal) {
			d.Status = domain.DealStatusDeclined
		})
		dto, err := svc.UpdateStatus(ctx, deal.ID, &domain.UpdateDealStatusRequest{
			Status: domain.DealStatusNegotiating,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DealStatusNegotiating, dto.Status)
	})

	t.Run("final price lands with otd mirror", func(t *testing.T) {
		deal := createTestDeal(t, db, func(d *domain.Deal) {
			d.Status = domain.DealStatusFinalOffer
			d.AskingPrice = floatPtr(50000)
			d.EstimatedSalesTax = floatPtr(2500)
			d.EstimatedRegistrationFee = floatPtr(200)
			d.EstimatedDocFee = floatPtr(250)
			d.EstimatedTitleFee = floatPtr(50)
			d.EstimatedTotalFees = floatPtr(3000)
		})
		dto, err := svc.UpdateStatus(ctx, deal.ID, &domain.UpdateDealStatusRequest{
			Status:     domain.DealStatusAccepted,
			FinalPrice: floatPtr(48000),
		})
		require.NoError(t, err)
		require.NotNil(t, dto.FinalPrice)
		assert.Equal(t, 48000.0, *dto.FinalPrice)
		require.NotNil(t, dto.OTDPrice)
		assert.Equal(t, 51000.0, *dto.OTDPrice)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		deal := createTestDeal(t, db, nil)
		_, err := svc.UpdateStatus(ctx, deal.ID, &domain.UpdateDealStatusRequest{
			Status: domain.DealStatus("haggling"),
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestDealService_PreviewFees(t *testing.T) {
	db := setupTestDB(t)
	seedZipRates(t, db)
	svc := newDealService(db)
	ctx := context.Background()

	dto, err := svc.PreviewFees(ctx, &domain.FeePreviewRequest{SalesPrice: 50000, ZipCode: "78641"})
	require.NoError(t, err)
	assert.Equal(t, 4125.00, dto.SalesTax)
	assert.Equal(t, domain.FeeMethodZipCodeLookup, dto.CalculationMethod)

	// Unknown zip falls back to the flat defaults.
	dto, err = svc.PreviewFees(ctx, &domain.FeePreviewRequest{SalesPrice: 50000, ZipCode: "00000"})
	require.NoError(t, err)
	assert.Equal(t, 4000.00, dto.SalesTax)
	assert.Equal(t, domain.FeeMethodDefaultEstimate, dto.CalculationMethod)

	_, err = svc.PreviewFees(ctx, &domain.FeePreviewRequest{SalesPrice: 50000, ZipCode: "123"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestDealService_Delete(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, nil)
	require.NoError(t, svc.Delete(ctx, deal.ID))

	_, err := svc.GetByID(ctx, deal.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), service.ErrNotFound)
}

package pricing

import (
	"testing"

	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dealWithFees returns a deal carrying a resolved breakdown whose four
// fee fields sum to 3000.
func dealWithFees() *domain.Deal {
	return &domain.Deal{
		NegotiationMode:          domain.NegotiationModeSalesPrice,
		AskingPrice:              floatPtr(50000),
		EstimatedSalesTax:        floatPtr(2500),
		EstimatedRegistrationFee: floatPtr(200),
		EstimatedDocFee:          floatPtr(250),
		EstimatedTitleFee:        floatPtr(50),
		EstimatedTotalFees:       floatPtr(3000),
		FeeCalculationMethod:     domain.FeeMethodZipCodeLookup,
	}
}

func TestConvertRoundTrip(t *testing.T) {
	otd := ConvertSalesToOTD(50000, 3000)
	assert.Equal(t, 53000.0, otd)
	assert.Equal(t, 50000.0, ConvertOTDToSales(otd, 3000))
}

func TestConvertOTDToSales_NegativeAllowed(t *testing.T) {
	// Fees larger than the OTD value produce a negative sales price;
	// conversion does not clamp.
	assert.Equal(t, -500.0, ConvertOTDToSales(2500, 3000))
}

func TestSyncFromSales(t *testing.T) {
	d := dealWithFees()
	d.CurrentOffer = floatPtr(48000)
	// TargetPrice left nil.

	SyncFromSales(d)

	require.NotNil(t, d.OTDAskingPrice)
	assert.Equal(t, 53000.0, *d.OTDAskingPrice)
	require.NotNil(t, d.OTDCurrentOffer)
	assert.Equal(t, 51000.0, *d.OTDCurrentOffer)
	assert.Nil(t, d.OTDTargetPrice)
}

func TestSyncFromOTD(t *testing.T) {
	d := dealWithFees()
	d.AskingPrice = nil
	d.OTDAskingPrice = floatPtr(53000)
	d.OTDTargetPrice = floatPtr(49500)

	SyncFromOTD(d)

	require.NotNil(t, d.AskingPrice)
	assert.Equal(t, 50000.0, *d.AskingPrice)
	require.NotNil(t, d.TargetPrice)
	assert.Equal(t, 46500.0, *d.TargetPrice)
	assert.Nil(t, d.CurrentOffer)
}

func TestReconcile_NoBreakdownIsNoOp(t *testing.T) {
	d := &domain.Deal{
		NegotiationMode: domain.NegotiationModeSalesPrice,
		AskingPrice:     floatPtr(50000),
	}

	Reconcile(d, domain.NegotiationModeSalesPrice)

	assert.Nil(t, d.OTDAskingPrice)
}

func TestReconcile_SyncsOppositeSpace(t *testing.T) {
	d := dealWithFees()
	Reconcile(d, domain.NegotiationModeSalesPrice)
	require.NotNil(t, d.OTDAskingPrice)
	assert.Equal(t, 53000.0, *d.OTDAskingPrice)

	*d.OTDAskingPrice = 54000
	Reconcile(d, domain.NegotiationModeOTD)
	assert.Equal(t, 51000.0, *d.AskingPrice)
}

func TestPrepareToggle_RefusedWithoutBreakdown(t *testing.T) {
	d := &domain.Deal{
		NegotiationMode: domain.NegotiationModeSalesPrice,
		AskingPrice:     floatPtr(50000),
	}

	err := PrepareToggle(d, domain.NegotiationModeOTD)
	assert.ErrorIs(t, err, ErrFeeBreakdownRequired)
	assert.Nil(t, d.OTDAskingPrice)
}

func TestPrepareToggle_RoundTripHolds(t *testing.T) {
	d := dealWithFees()

	require.NoError(t, PrepareToggle(d, domain.NegotiationModeOTD))
	require.NotNil(t, d.OTDAskingPrice)
	assert.Equal(t, 53000.0, *d.OTDAskingPrice)
	// The flag itself is the caller's second write.
	assert.Equal(t, domain.NegotiationModeSalesPrice, d.NegotiationMode)

	d.NegotiationMode = domain.NegotiationModeOTD
	require.NoError(t, PrepareToggle(d, domain.NegotiationModeSalesPrice))
	assert.Equal(t, 50000.0, *d.AskingPrice)
}

func TestPrepareToggle_RepeatedTogglesDoNotDrift(t *testing.T) {
	d := dealWithFees()
	d.CurrentOffer = floatPtr(47250.55)
	d.TargetPrice = floatPtr(46000.01)

	for i := 0; i < 10; i++ {
		require.NoError(t, PrepareToggle(d, domain.NegotiationModeOTD))
		require.NoError(t, PrepareToggle(d, domain.NegotiationModeSalesPrice))
	}

	assert.Equal(t, 50000.0, *d.AskingPrice)
	assert.Equal(t, 47250.55, *d.CurrentOffer)
	assert.Equal(t, 46000.01, *d.TargetPrice)
}

func TestApplyBreakdown(t *testing.T) {
	d := &domain.Deal{AskingPrice: floatPtr(50000)}
	fb := FeeBreakdown{
		SalesTax:          4125,
		RegistrationFee:   76.25,
		DocFee:            150,
		TitleFee:          33,
		TotalFees:         259.25,
		EstimatedOTD:      54384.25,
		CalculationMethod: domain.FeeMethodZipCodeLookup,
	}

	ApplyBreakdown(d, fb)

	require.NotNil(t, d.EstimatedSalesTax)
	assert.Equal(t, 4125.0, *d.EstimatedSalesTax)
	require.NotNil(t, d.EstimatedTotalFees)
	assert.Equal(t, 4384.25, *d.EstimatedTotalFees)
	assert.Equal(t, domain.FeeMethodZipCodeLookup, d.FeeCalculationMethod)
	// Price triples are untouched until the caller reconciles.
	assert.Nil(t, d.OTDAskingPrice)
	assert.True(t, d.HasFeeBreakdown())
}

package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRateSource serves a fixed set of zip rows from memory.
type stubRateSource struct {
	rates map[string]*domain.ZipTaxRate
	err   error
}

func (s *stubRateSource) FindByZip(_ context.Context, zipCode string) (*domain.ZipTaxRate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rates[zipCode], nil
}

func newTestResolver() *Resolver {
	return NewResolver(&stubRateSource{
		rates: map[string]*domain.ZipTaxRate{
			"78641": {
				ZipCode:             "78641",
				State:               "TX",
				City:                "Leander",
				SalesTaxRate:        0.0825,
				RegistrationBaseFee: 76.25,
				DocFeeAverage:       150.00,
				TitleFee:            33.00,
			},
		},
	}, StandardDefaults())
}

func floatPtr(v float64) *float64 { return &v }

func TestResolve_ZipCodeLookup(t *testing.T) {
	r := newTestResolver()

	fb, err := r.Resolve(context.Background(), floatPtr(50000), "78641")
	require.NoError(t, err)

	assert.Equal(t, domain.FeeMethodZipCodeLookup, fb.CalculationMethod)
	assert.Equal(t, 4125.00, fb.SalesTax)
	assert.Equal(t, 76.25, fb.RegistrationFee)
	assert.Equal(t, 150.00, fb.DocFee)
	assert.Equal(t, 33.00, fb.TitleFee)
	assert.Equal(t, 259.25, fb.TotalFees)
	assert.Equal(t, 54384.25, fb.EstimatedOTD)
	assert.Equal(t, 0.0825, fb.TaxRate)
	assert.Equal(t, "TX", fb.State)
	assert.Equal(t, "Leander", fb.City)
}

func TestResolve_DefaultEstimateOnMiss(t *testing.T) {
	r := newTestResolver()

	fb, err := r.Resolve(context.Background(), floatPtr(50000), "00000")
	require.NoError(t, err)

	assert.Equal(t, domain.FeeMethodDefaultEstimate, fb.CalculationMethod)
	assert.Equal(t, 4000.00, fb.SalesTax)
	assert.Equal(t, 200.00, fb.RegistrationFee)
	assert.Equal(t, 300.00, fb.DocFee)
	assert.Equal(t, 50.00, fb.TitleFee)
	assert.Equal(t, 550.00, fb.TotalFees)
	assert.Equal(t, 54550.00, fb.EstimatedOTD)
	assert.Empty(t, fb.State)
}

func TestResolve_NoPrice(t *testing.T) {
	r := newTestResolver()

	t.Run("nil price", func(t *testing.T) {
		fb, err := r.Resolve(context.Background(), nil, "78641")
		require.NoError(t, err)
		assert.Equal(t, domain.FeeMethodNoPrice, fb.CalculationMethod)
		assert.Zero(t, fb.SalesTax)
		assert.Zero(t, fb.EstimatedOTD)
	})

	t.Run("zero price", func(t *testing.T) {
		fb, err := r.Resolve(context.Background(), floatPtr(0), "78641")
		require.NoError(t, err)
		assert.Equal(t, domain.FeeMethodNoPrice, fb.CalculationMethod)
	})

	t.Run("negative price", func(t *testing.T) {
		fb, err := r.Resolve(context.Background(), floatPtr(-100), "78641")
		require.NoError(t, err)
		assert.Equal(t, domain.FeeMethodNoPrice, fb.CalculationMethod)
	})

	t.Run("no price wins before zip validation", func(t *testing.T) {
		fb, err := r.Resolve(context.Background(), nil, "bogus")
		require.NoError(t, err)
		assert.Equal(t, domain.FeeMethodNoPrice, fb.CalculationMethod)
	})
}

func TestResolve_InvalidZip(t *testing.T) {
	r := newTestResolver()

	for _, zip := range []string{"1234", "123456", "78a41", "78641-2200", ""} {
		_, err := r.Resolve(context.Background(), floatPtr(50000), zip)
		assert.ErrorIs(t, err, ErrInvalidZipCode, "zip %q", zip)
	}
}

func TestResolve_LookupErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewResolver(&stubRateSource{err: boom}, StandardDefaults())

	_, err := r.Resolve(context.Background(), floatPtr(50000), "78641")
	assert.ErrorIs(t, err, boom)
}

func TestManualBreakdown(t *testing.T) {
	fb := ManualBreakdown(40000, 3300, 80, 150, 33)

	assert.Equal(t, domain.FeeMethodManualOverride, fb.CalculationMethod)
	assert.Equal(t, 3300.00, fb.SalesTax)
	assert.Equal(t, 263.00, fb.TotalFees)
	assert.Equal(t, 43563.00, fb.EstimatedOTD)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 4125.0, Round2(50000*0.0825))
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, 1.0, Round2(0.999))
	assert.Equal(t, 3.33, Round2(10.0/3))
}

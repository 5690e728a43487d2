package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/hagglehub/negotiation-api/internal/domain"
)

// ErrInvalidZipCode is returned when a zip code is not exactly five
// ASCII digits. Validation happens here rather than silently coercing.
var ErrInvalidZipCode = errors.New("zip code must be exactly 5 digits")

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// FeeBreakdown is the resolved tax and fee estimate for one sales
// price. TotalFees excludes sales tax; EstimatedOTD includes it.
type FeeBreakdown struct {
	SalesTax          float64
	RegistrationFee   float64
	DocFee            float64
	TitleFee          float64
	TotalFees         float64
	EstimatedOTD      float64
	CalculationMethod domain.FeeCalculationMethod
	TaxRate           float64
	State             string
	City              string
}

// ZipRateSource looks up jurisdiction tax data by zip code. A miss is
// (nil, nil), not an error.
type ZipRateSource interface {
	FindByZip(ctx context.Context, zipCode string) (*domain.ZipTaxRate, error)
}

// Defaults are the flat estimates used when a zip code has no entry in
// the reference table.
type Defaults struct {
	TaxRate         float64
	RegistrationFee float64
	DocFee          float64
	TitleFee        float64
}

// StandardDefaults returns the stock fallback figures: 8% tax, $200
// registration, $300 doc, $50 title.
func StandardDefaults() Defaults {
	return Defaults{
		TaxRate:         0.08,
		RegistrationFee: 200,
		DocFee:          300,
		TitleFee:        50,
	}
}

// Resolver computes fee breakdowns from the zip reference table,
// falling back to flat defaults. Resolution is a pure function of the
// reference data: identical inputs always yield identical breakdowns.
type Resolver struct {
	rates    ZipRateSource
	defaults Defaults
}

// NewResolver creates a fee resolver over the given rate source.
func NewResolver(rates ZipRateSource, defaults Defaults) *Resolver {
	return &Resolver{rates: rates, defaults: defaults}
}

// Resolve computes the fee breakdown for a sales price and buyer zip
// code. A nil or non-positive price yields a zero breakdown with
// calculation method "no_price". An invalid zip code is an error.
func (r *Resolver) Resolve(ctx context.Context, salesPrice *float64, zipCode string) (FeeBreakdown, error) {
	if salesPrice == nil || *salesPrice <= 0 {
		return FeeBreakdown{CalculationMethod: domain.FeeMethodNoPrice}, nil
	}
	if !zipPattern.MatchString(zipCode) {
		return FeeBreakdown{}, fmt.Errorf("%w: %q", ErrInvalidZipCode, zipCode)
	}

	price := *salesPrice

	rate, err := r.rates.FindByZip(ctx, zipCode)
	if err != nil {
		return FeeBreakdown{}, fmt.Errorf("zip rate lookup failed: %w", err)
	}

	var fb FeeBreakdown
	if rate != nil {
		fb = FeeBreakdown{
			SalesTax:          Round2(price * rate.SalesTaxRate),
			RegistrationFee:   Round2(rate.RegistrationBaseFee),
			DocFee:            Round2(rate.DocFeeAverage),
			TitleFee:          Round2(rate.TitleFee),
			CalculationMethod: domain.FeeMethodZipCodeLookup,
			TaxRate:           rate.SalesTaxRate,
			State:             rate.State,
			City:              rate.City,
		}
	} else {
		fb = FeeBreakdown{
			SalesTax:          Round2(price * r.defaults.TaxRate),
			RegistrationFee:   r.defaults.RegistrationFee,
			DocFee:            r.defaults.DocFee,
			TitleFee:          r.defaults.TitleFee,
			CalculationMethod: domain.FeeMethodDefaultEstimate,
			TaxRate:           r.defaults.TaxRate,
		}
	}

	fb.TotalFees = Round2(fb.RegistrationFee + fb.DocFee + fb.TitleFee)
	fb.EstimatedOTD = Round2(Round2(price+fb.SalesTax) + fb.TotalFees)
	return fb, nil
}

// ManualBreakdown builds a breakdown from user-entered figures. The
// resolver is bypassed entirely; values are taken as given.
func ManualBreakdown(salesPrice, salesTax, registrationFee, docFee, titleFee float64) FeeBreakdown {
	fb := FeeBreakdown{
		SalesTax:          Round2(salesTax),
		RegistrationFee:   Round2(registrationFee),
		DocFee:            Round2(docFee),
		TitleFee:          Round2(titleFee),
		CalculationMethod: domain.FeeMethodManualOverride,
	}
	fb.TotalFees = Round2(fb.RegistrationFee + fb.DocFee + fb.TitleFee)
	fb.EstimatedOTD = Round2(Round2(salesPrice+fb.SalesTax) + fb.TotalFees)
	return fb
}

// Round2 rounds to two decimal places. Currency math rounds after each
// arithmetic step to keep repeated conversions from drifting.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

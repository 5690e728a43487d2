package pricing

import (
	"errors"

	"github.com/hagglehub/negotiation-api/internal/domain"
)

// ErrFeeBreakdownRequired is returned when a negotiation-mode toggle is
// attempted before any fee breakdown exists on the deal. The caller
// must resolve fees first; the toggle is refused, never silently
// skipped.
var ErrFeeBreakdownRequired = errors.New("fee breakdown required before switching negotiation mode")

// ConvertSalesToOTD converts one sales-price value into the
// out-the-door space given the deal's total fees.
func ConvertSalesToOTD(salesValue, totalFees float64) float64 {
	return Round2(salesValue + totalFees)
}

// ConvertOTDToSales is the inverse conversion. A result below zero is a
// possible buggy-input outcome and is not guarded here.
func ConvertOTDToSales(otdValue, totalFees float64) float64 {
	return Round2(otdValue - totalFees)
}

// SyncFromSales recomputes the OTD price triple from the sales-price
// triple using the deal's current fee breakdown. Nil sales values leave
// their OTD twin untouched.
func SyncFromSales(d *domain.Deal) {
	fees := d.TotalFees()
	if d.AskingPrice != nil {
		v := ConvertSalesToOTD(*d.AskingPrice, fees)
		d.OTDAskingPrice = &v
	}
	if d.CurrentOffer != nil {
		v := ConvertSalesToOTD(*d.CurrentOffer, fees)
		d.OTDCurrentOffer = &v
	}
	if d.TargetPrice != nil {
		v := ConvertSalesToOTD(*d.TargetPrice, fees)
		d.OTDTargetPrice = &v
	}
}

// SyncFromOTD recomputes the sales-price triple from the OTD triple.
func SyncFromOTD(d *domain.Deal) {
	fees := d.TotalFees()
	if d.OTDAskingPrice != nil {
		v := ConvertOTDToSales(*d.OTDAskingPrice, fees)
		d.AskingPrice = &v
	}
	if d.OTDCurrentOffer != nil {
		v := ConvertOTDToSales(*d.OTDCurrentOffer, fees)
		d.CurrentOffer = &v
	}
	if d.OTDTargetPrice != nil {
		v := ConvertOTDToSales(*d.OTDTargetPrice, fees)
		d.TargetPrice = &v
	}
}

// Reconcile brings the opposite price space in line with the one the
// caller just wrote. With no fee breakdown on the deal, only the edited
// space holds meaningful data and no cross-space sync is attempted.
func Reconcile(d *domain.Deal, editedMode domain.NegotiationMode) {
	if !d.HasFeeBreakdown() {
		return
	}
	if editedMode == domain.NegotiationModeOTD {
		SyncFromOTD(d)
		return
	}
	SyncFromSales(d)
}

// PrepareToggle computes the price triple for the target mode on the
// deal, without touching the mode flag itself. Callers persist the
// synchronized prices first and flip the flag second, so a reader that
// observes the new mode always sees consistent values.
func PrepareToggle(d *domain.Deal, target domain.NegotiationMode) error {
	if !d.HasFeeBreakdown() {
		return ErrFeeBreakdownRequired
	}
	if target == domain.NegotiationModeOTD {
		SyncFromSales(d)
	} else {
		SyncFromOTD(d)
	}
	return nil
}

// ApplyBreakdown writes a resolved fee breakdown onto the deal. It does
// not touch the price triples; callers reconcile afterwards.
func ApplyBreakdown(d *domain.Deal, fb FeeBreakdown) {
	salesTax := fb.SalesTax
	reg := fb.RegistrationFee
	doc := fb.DocFee
	title := fb.TitleFee
	total := Round2(Round2(Round2(salesTax+reg)+doc) + title)

	d.EstimatedSalesTax = &salesTax
	d.EstimatedRegistrationFee = &reg
	d.EstimatedDocFee = &doc
	d.EstimatedTitleFee = &title
	d.EstimatedTotalFees = &total
	d.FeeCalculationMethod = fb.CalculationMethod
}

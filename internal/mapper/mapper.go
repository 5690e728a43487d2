package mapper

import (
	"encoding/json"

	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/extract"
	"github.com/hagglehub/negotiation-api/internal/pricing"
)

const timeFormat = "2006-01-02T15:04:05Z"

// ToVehicleDTO converts Vehicle to VehicleDTO
func ToVehicleDTO(vehicle *domain.Vehicle) domain.VehicleDTO {
	return domain.VehicleDTO{
		ID:            vehicle.ID,
		Year:          vehicle.Year,
		Make:          vehicle.Make,
		Model:         vehicle.Model,
		Trim:          vehicle.Trim,
		VIN:           vehicle.VIN,
		StockNumber:   vehicle.StockNumber,
		Mileage:       vehicle.Mileage,
		Condition:     vehicle.Condition,
		ExteriorColor: vehicle.ExteriorColor,
		InteriorColor: vehicle.InteriorColor,
		ListingURL:    vehicle.ListingURL,
		CreatedAt:     vehicle.CreatedAt.Format(timeFormat),
		UpdatedAt:     vehicle.UpdatedAt.Format(timeFormat),
	}
}

// ToDealerDTO converts Dealer to DealerDTO
func ToDealerDTO(dealer *domain.Dealer) domain.DealerDTO {
	return domain.DealerDTO{
		ID:           dealer.ID,
		Name:         dealer.Name,
		ContactEmail: dealer.ContactEmail,
		Phone:        dealer.Phone,
		Address:      dealer.Address,
		Website:      dealer.Website,
		SalesRepName: dealer.SalesRepName,
		IsFallback:   dealer.IsFallback,
		CreatedAt:    dealer.CreatedAt.Format(timeFormat),
		UpdatedAt:    dealer.UpdatedAt.Format(timeFormat),
	}
}

// ToDealDTO converts Deal to DealDTO, embedding vehicle and dealer
// when they were preloaded
func ToDealDTO(deal *domain.Deal) domain.DealDTO {
	dto := domain.DealDTO{
		ID:              deal.ID,
		VehicleID:       deal.VehicleID,
		DealerID:        deal.DealerID,
		Status:          deal.Status,
		PurchaseType:    deal.PurchaseType,
		NegotiationMode: deal.NegotiationMode,

		AskingPrice:  deal.AskingPrice,
		CurrentOffer: deal.CurrentOffer,
		TargetPrice:  deal.TargetPrice,
		FinalPrice:   deal.FinalPrice,

		OTDAskingPrice:  deal.OTDAskingPrice,
		OTDCurrentOffer: deal.OTDCurrentOffer,
		OTDTargetPrice:  deal.OTDTargetPrice,
		OTDPrice:        deal.OTDPrice,

		EstimatedSalesTax:        deal.EstimatedSalesTax,
		EstimatedRegistrationFee: deal.EstimatedRegistrationFee,
		EstimatedDocFee:          deal.EstimatedDocFee,
		EstimatedTitleFee:        deal.EstimatedTitleFee,
		EstimatedTotalFees:       deal.EstimatedTotalFees,
		FeeCalculationMethod:     deal.FeeCalculationMethod,
		ManualFeesOverride:       deal.ManualFeesOverride,
		BuyerZipCode:             deal.BuyerZipCode,

		IsFallback: deal.IsFallback,
		Notes:      deal.Notes,
		CreatedAt:  deal.CreatedAt.Format(timeFormat),
		UpdatedAt:  deal.UpdatedAt.Format(timeFormat),
	}
	if deal.QuoteExpires != nil {
		dto.QuoteExpires = deal.QuoteExpires.Format("2006-01-02")
	}
	if deal.LastContactDate != nil {
		dto.LastContactDate = deal.LastContactDate.Format(timeFormat)
	}
	if deal.Vehicle != nil {
		v := ToVehicleDTO(deal.Vehicle)
		dto.Vehicle = &v
	}
	if deal.Dealer != nil {
		d := ToDealerDTO(deal.Dealer)
		dto.Dealer = &d
	}
	return dto
}

// ToDealDTOs converts a slice of Deals
func ToDealDTOs(deals []domain.Deal) []domain.DealDTO {
	dtos := make([]domain.DealDTO, len(deals))
	for i := range deals {
		dtos[i] = ToDealDTO(&deals[i])
	}
	return dtos
}

// ToMessageDTO converts Message to MessageDTO
func ToMessageDTO(message *domain.Message) domain.MessageDTO {
	return domain.MessageDTO{
		ID:             message.ID,
		DealID:         message.DealID,
		DealerID:       message.DealerID,
		Content:        message.Content,
		Direction:      message.Direction,
		Channel:        message.Channel,
		ContainsOffer:  message.ContainsOffer,
		ExtractedPrice: message.ExtractedPrice,
		IsRead:         message.IsRead,
		CreatedAt:      message.CreatedAt.Format(timeFormat),
	}
}

// ToMessageDTOs converts a slice of Messages
func ToMessageDTOs(messages []domain.Message) []domain.MessageDTO {
	dtos := make([]domain.MessageDTO, len(messages))
	for i := range messages {
		dtos[i] = ToMessageDTO(&messages[i])
	}
	return dtos
}

// ToFeeBreakdownDTO converts a resolved breakdown to its DTO
func ToFeeBreakdownDTO(fb pricing.FeeBreakdown) domain.FeeBreakdownDTO {
	return domain.FeeBreakdownDTO{
		SalesTax:          fb.SalesTax,
		RegistrationFee:   fb.RegistrationFee,
		DocFee:            fb.DocFee,
		TitleFee:          fb.TitleFee,
		TotalFees:         fb.TotalFees,
		EstimatedOTD:      fb.EstimatedOTD,
		CalculationMethod: fb.CalculationMethod,
		TaxRate:           fb.TaxRate,
		State:             fb.State,
		City:              fb.City,
	}
}

// ToParsedListingDTO converts an extraction result to its DTO shape.
// Extraction results carry no identity or timestamps; only the fact
// fields are populated.
func ToParsedListingDTO(res extract.Result) domain.ParsedListingDTO {
	dto := domain.ParsedListingDTO{
		Vehicle: domain.VehicleDTO{
			Year:        res.Vehicle.Year,
			Make:        res.Vehicle.Make,
			Model:       res.Vehicle.Model,
			Trim:        res.Vehicle.Trim,
			VIN:         res.Vehicle.VIN,
			StockNumber: res.Vehicle.StockNumber,
			Mileage:     res.Vehicle.Mileage,
			Condition:   domain.VehicleCondition(res.Vehicle.Condition),
			ListingURL:  res.Vehicle.ListingURL,
		},
		Dealer: domain.DealerDTO{
			Name:         res.Dealer.Name,
			ContactEmail: res.Dealer.Email,
			Phone:        res.Dealer.Phone,
			Address:      res.Dealer.Address,
			Website:      res.Dealer.Website,
			SalesRepName: res.Dealer.SalesRepName,
		},
	}
	dto.Pricing.AskingPrice = res.Pricing.AskingPrice
	return dto
}

// ToInsightResultDTO converts a cache entry to the insight result
// shape, decoding the stored analysis JSON. A decode failure leaves
// Analysis nil rather than failing the read.
func ToInsightResultDTO(entry *domain.InsightCacheEntry, fromCache bool) domain.InsightResultDTO {
	dto := domain.InsightResultDTO{
		FromCache: fromCache,
		Triggered: true,
		Triggers:  entry.Triggers,
		ExpiresAt: entry.CacheExpiresAt.UTC().Format(timeFormat),
	}
	var analysis domain.AnalysisDTO
	if err := json.Unmarshal([]byte(entry.AnalysisData), &analysis); err == nil {
		dto.Analysis = &analysis
	}
	return dto
}

package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses

type VehicleDTO struct {
	ID            uuid.UUID        `json:"id"`
	Year          *int             `json:"year,omitempty"`
	Make          string           `json:"make"`
	Model         string           `json:"model"`
	Trim          string           `json:"trim,omitempty"`
	VIN           string           `json:"vin,omitempty"`
	StockNumber   string           `json:"stockNumber,omitempty"`
	Mileage       *int             `json:"mileage,omitempty"`
	Condition     VehicleCondition `json:"condition"`
	ExteriorColor string           `json:"exteriorColor,omitempty"`
	InteriorColor string           `json:"interiorColor,omitempty"`
	ListingURL    string           `json:"listingUrl,omitempty"`
	CreatedAt     string           `json:"createdAt"` // ISO 8601
	UpdatedAt     string           `json:"updatedAt"` // ISO 8601
}

type DealerDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Website      string    `json:"website,omitempty"`
	SalesRepName string    `json:"salesRepName,omitempty"`
	IsFallback   bool      `json:"isFallback"`
	CreatedAt    string    `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt"`
}

// FeeBreakdownDTO mirrors the deal's fee fields plus derived totals
type FeeBreakdownDTO struct {
	SalesTax          float64              `json:"salesTax"`
	RegistrationFee   float64              `json:"registrationFee"`
	DocFee            float64              `json:"docFee"`
	TitleFee          float64              `json:"titleFee"`
	TotalFees         float64              `json:"totalFees"`
	EstimatedOTD      float64              `json:"estimatedOtd"`
	CalculationMethod FeeCalculationMethod `json:"calculationMethod"`
	TaxRate           float64              `json:"taxRate,omitempty"`
	State             string               `json:"state,omitempty"`
	City              string               `json:"city,omitempty"`
}

type DealDTO struct {
	ID              uuid.UUID       `json:"id"`
	VehicleID       uuid.UUID       `json:"vehicleId"`
	Vehicle         *VehicleDTO     `json:"vehicle,omitempty"`
	DealerID        uuid.UUID       `json:"dealerId"`
	Dealer          *DealerDTO      `json:"dealer,omitempty"`
	Status          DealStatus      `json:"status"`
	PurchaseType    PurchaseType    `json:"purchaseType"`
	NegotiationMode NegotiationMode `json:"negotiationMode"`

	AskingPrice  *float64 `json:"askingPrice,omitempty"`
	CurrentOffer *float64 `json:"currentOffer,omitempty"`
	TargetPrice  *float64 `json:"targetPrice,omitempty"`
	FinalPrice   *float64 `json:"finalPrice,omitempty"`

	OTDAskingPrice  *float64 `json:"otdAskingPrice,omitempty"`
	OTDCurrentOffer *float64 `json:"otdCurrentOffer,omitempty"`
	OTDTargetPrice  *float64 `json:"otdTargetPrice,omitempty"`
	OTDPrice        *float64 `json:"otdPrice,omitempty"`

	EstimatedSalesTax        *float64             `json:"estimatedSalesTax,omitempty"`
	EstimatedRegistrationFee *float64             `json:"estimatedRegistrationFee,omitempty"`
	EstimatedDocFee          *float64             `json:"estimatedDocFee,omitempty"`
	EstimatedTitleFee        *float64             `json:"estimatedTitleFee,omitempty"`
	EstimatedTotalFees       *float64             `json:"estimatedTotalFees,omitempty"`
	FeeCalculationMethod     FeeCalculationMethod `json:"feeCalculationMethod,omitempty"`
	ManualFeesOverride       bool                 `json:"manualFeesOverride"`
	BuyerZipCode             string               `json:"buyerZipCode,omitempty"`

	QuoteExpires    string `json:"quoteExpires,omitempty"`
	LastContactDate string `json:"lastContactDate,omitempty"`
	IsFallback      bool   `json:"isFallback"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

type MessageDTO struct {
	ID             uuid.UUID        `json:"id"`
	DealID         uuid.UUID        `json:"dealId"`
	DealerID       uuid.UUID        `json:"dealerId"`
	Content        string           `json:"content"`
	Direction      MessageDirection `json:"direction"`
	Channel        MessageChannel   `json:"channel"`
	ContainsOffer  bool             `json:"containsOffer"`
	ExtractedPrice *float64         `json:"extractedPrice,omitempty"`
	IsRead         bool             `json:"isRead"`
	CreatedAt      string           `json:"createdAt"`
}

// InsightDTO is one piece of advice inside an analysis result
type InsightDTO struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	NextStep    string `json:"next_step"`
	Type        string `json:"type"`
}

// AnalysisDTO is the parsed shape of a cached or fresh analysis
type AnalysisDTO struct {
	Summary  string       `json:"summary"`
	Insights []InsightDTO `json:"insights"`
}

// InsightResultDTO is returned by the insight endpoints
type InsightResultDTO struct {
	Analysis     *AnalysisDTO `json:"analysis,omitempty"`
	FromCache    bool         `json:"fromCache"`
	Triggered    bool         `json:"triggered"`
	Triggers     []string     `json:"triggers,omitempty"`
	UrgencyLevel string       `json:"urgencyLevel,omitempty"`
	ExpiresAt    string       `json:"expiresAt,omitempty"`
}

// ParsedListingDTO is the normalized output of the extraction engines
type ParsedListingDTO struct {
	Vehicle VehicleDTO `json:"vehicle"`
	Dealer  DealerDTO  `json:"dealer"`
	Pricing struct {
		AskingPrice *float64 `json:"askingPrice,omitempty"`
	} `json:"pricing"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps list results with pagination metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Request DTOs

type CreateVehicleRequest struct {
	Year          *int             `json:"year" validate:"omitempty,gte=1950,lte=2035"`
	Make          string           `json:"make" validate:"required,max=100"`
	Model         string           `json:"model" validate:"required,max=100"`
	Trim          string           `json:"trim" validate:"max=100"`
	VIN           string           `json:"vin" validate:"omitempty,len=17"`
	StockNumber   string           `json:"stockNumber" validate:"max=50"`
	Mileage       *int             `json:"mileage" validate:"omitempty,gt=0,lt=500000"`
	Condition     VehicleCondition `json:"condition" validate:"omitempty,oneof=new used certified"`
	ExteriorColor string           `json:"exteriorColor" validate:"max=50"`
	InteriorColor string           `json:"interiorColor" validate:"max=50"`
	ListingURL    string           `json:"listingUrl" validate:"omitempty,url,max=1000"`
}

type CreateDealerRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=50"`
	Address      string `json:"address" validate:"max=500"`
	Website      string `json:"website" validate:"omitempty,url,max=500"`
	SalesRepName string `json:"salesRepName" validate:"max=200"`
}

type UpdateDealerRequest = CreateDealerRequest

type CreateDealRequest struct {
	VehicleID    uuid.UUID    `json:"vehicleId" validate:"required"`
	DealerID     uuid.UUID    `json:"dealerId" validate:"required"`
	PurchaseType PurchaseType `json:"purchaseType" validate:"omitempty,oneof=cash finance lease"`
	AskingPrice  *float64     `json:"askingPrice" validate:"omitempty,gte=0"`
	TargetPrice  *float64     `json:"targetPrice" validate:"omitempty,gte=0"`
	BuyerZipCode string       `json:"buyerZipCode" validate:"omitempty,len=5,numeric"`
	Notes        string       `json:"notes"`
}

// UpdateDealPricesRequest carries edits to one or more price fields.
// Fields are written in the deal's current negotiation mode's space.
type UpdateDealPricesRequest struct {
	AskingPrice  *float64 `json:"askingPrice" validate:"omitempty,gte=0"`
	CurrentOffer *float64 `json:"currentOffer" validate:"omitempty,gte=0"`
	TargetPrice  *float64 `json:"targetPrice" validate:"omitempty,gte=0"`
	BuyerZipCode *string  `json:"buyerZipCode" validate:"omitempty,len=5,numeric"`
}

type ToggleNegotiationModeRequest struct {
	Mode NegotiationMode `json:"mode" validate:"required,oneof=sales_price otd"`
}

type UpdateDealStatusRequest struct {
	Status     DealStatus `json:"status" validate:"required"`
	FinalPrice *float64   `json:"finalPrice" validate:"omitempty,gte=0"`
}

// SetManualFeesRequest hand-enters exact fee figures, disabling
// automatic recalculation until the override is cleared.
type SetManualFeesRequest struct {
	SalesTax        float64 `json:"salesTax" validate:"gte=0"`
	RegistrationFee float64 `json:"registrationFee" validate:"gte=0"`
	DocFee          float64 `json:"docFee" validate:"gte=0"`
	TitleFee        float64 `json:"titleFee" validate:"gte=0"`
}

type CreateMessageRequest struct {
	DealID    *uuid.UUID       `json:"dealId"`
	DealerID  *uuid.UUID       `json:"dealerId"`
	Content   string           `json:"content" validate:"required"`
	Direction MessageDirection `json:"direction" validate:"required,oneof=inbound outbound"`
	Channel   MessageChannel   `json:"channel" validate:"omitempty,oneof=app email"`
}

type ImportListingRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type ParseConversationRequest struct {
	Text     string     `json:"text" validate:"required"`
	DealerID *uuid.UUID `json:"dealerId"`
}

type FeePreviewRequest struct {
	SalesPrice float64 `json:"salesPrice" validate:"required,gt=0"`
	ZipCode    string  `json:"zipCode" validate:"required,len=5,numeric"`
}

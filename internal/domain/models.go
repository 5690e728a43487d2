package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database does not (e.g. sqlite in tests)
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// VehicleCondition represents the condition classification of a vehicle
type VehicleCondition string

const (
	VehicleConditionNew       VehicleCondition = "new"
	VehicleConditionUsed      VehicleCondition = "used"
	VehicleConditionCertified VehicleCondition = "certified"
)

// IsValid checks if the VehicleCondition is a valid enum value
func (vc VehicleCondition) IsValid() bool {
	switch vc {
	case VehicleConditionNew, VehicleConditionUsed, VehicleConditionCertified:
		return true
	}
	return false
}

// Vehicle represents a vehicle listing a user is negotiating for
type Vehicle struct {
	BaseModel
	UserID        string           `gorm:"type:varchar(100);not null;index;column:user_id"`
	Year          *int             `gorm:"type:int"`
	Make          string           `gorm:"type:varchar(100);not null;index"`
	Model         string           `gorm:"type:varchar(100);not null"`
	Trim          string           `gorm:"type:varchar(100)"`
	VIN           string           `gorm:"type:varchar(17);column:vin;index"`
	StockNumber   string           `gorm:"type:varchar(50);column:stock_number"`
	Mileage       *int             `gorm:"type:int"`
	Condition     VehicleCondition `gorm:"type:varchar(20);not null;default:'used'"`
	ExteriorColor string           `gorm:"type:varchar(50);column:exterior_color"`
	InteriorColor string           `gorm:"type:varchar(50);column:interior_color"`
	ListingURL    string           `gorm:"type:varchar(1000);column:listing_url"`
}

// DisplayName returns a human-readable "2022 Toyota Tundra" style label
func (v *Vehicle) DisplayName() string {
	name := v.Make + " " + v.Model
	if v.Year != nil {
		return strconv.Itoa(*v.Year) + " " + name
	}
	return name
}

// FallbackDealerName is the display name of the synthetic dealer that
// receives unattributed inbound messages.
const FallbackDealerName = "General Inbox"

// Dealer represents a dealership contact. A synthetic fallback dealer
// ("General Inbox") holds inbound messages that cannot be attributed.
type Dealer struct {
	BaseModel
	UserID       string `gorm:"type:varchar(100);not null;index;column:user_id"`
	Name         string `gorm:"type:varchar(200);not null;index"`
	ContactEmail string `gorm:"type:varchar(255);column:contact_email"`
	Phone        string `gorm:"type:varchar(50)"`
	Address      string `gorm:"type:varchar(500)"`
	Website      string `gorm:"type:varchar(500)"`
	SalesRepName string `gorm:"type:varchar(200);column:sales_rep_name"`
	IsFallback   bool   `gorm:"not null;default:false;column:is_fallback"`
}

// DealStatus represents the status of a negotiation
type DealStatus string

const (
	DealStatusQuoteRequested DealStatus = "quote_requested"
	DealStatusNegotiating    DealStatus = "negotiating"
	DealStatusFinalOffer     DealStatus = "final_offer"
	DealStatusAccepted       DealStatus = "accepted"
	DealStatusDeclined       DealStatus = "declined"
	DealStatusCompleted      DealStatus = "completed"
	DealStatusExpired        DealStatus = "expired"
)

// IsValid checks if the DealStatus is a valid enum value
func (ds DealStatus) IsValid() bool {
	switch ds {
	case DealStatusQuoteRequested, DealStatusNegotiating, DealStatusFinalOffer,
		DealStatusAccepted, DealStatusDeclined, DealStatusCompleted, DealStatusExpired:
		return true
	}
	return false
}

// IsActive reports whether the deal is in a status the insight trigger
// policy considers live negotiation.
func (ds DealStatus) IsActive() bool {
	switch ds {
	case DealStatusQuoteRequested, DealStatusNegotiating, DealStatusFinalOffer:
		return true
	}
	return false
}

// PurchaseType represents how the buyer intends to pay
type PurchaseType string

const (
	PurchaseTypeCash    PurchaseType = "cash"
	PurchaseTypeFinance PurchaseType = "finance"
	PurchaseTypeLease   PurchaseType = "lease"
)

// IsValid checks if the PurchaseType is a valid enum value
func (pt PurchaseType) IsValid() bool {
	switch pt {
	case PurchaseTypeCash, PurchaseTypeFinance, PurchaseTypeLease:
		return true
	}
	return false
}

// NegotiationMode selects which price space the user is negotiating in
type NegotiationMode string

const (
	NegotiationModeSalesPrice NegotiationMode = "sales_price"
	NegotiationModeOTD        NegotiationMode = "otd"
)

// IsValid checks if the NegotiationMode is a valid enum value
func (nm NegotiationMode) IsValid() bool {
	switch nm {
	case NegotiationModeSalesPrice, NegotiationModeOTD:
		return true
	}
	return false
}

// FeeCalculationMethod records how a deal's fee breakdown was produced
type FeeCalculationMethod string

const (
	FeeMethodNoPrice         FeeCalculationMethod = "no_price"
	FeeMethodZipCodeLookup   FeeCalculationMethod = "zip_code_lookup"
	FeeMethodDefaultEstimate FeeCalculationMethod = "default_estimate"
	FeeMethodManualOverride  FeeCalculationMethod = "manual_override"
)

// Deal is the negotiation record. The sales-price and out-the-door price
// triples are denormalized mirrors: with a non-null fee breakdown,
// otd_x = sales_x + total fees holds after every completed price write.
type Deal struct {
	BaseModel
	UserID    string     `gorm:"type:varchar(100);not null;index;column:user_id"`
	VehicleID uuid.UUID  `gorm:"type:uuid;not null;index;column:vehicle_id"`
	Vehicle   *Vehicle   `gorm:"foreignKey:VehicleID"`
	DealerID  uuid.UUID  `gorm:"type:uuid;not null;index;column:dealer_id"`
	Dealer    *Dealer    `gorm:"foreignKey:DealerID"`
	Status    DealStatus `gorm:"type:varchar(50);not null;default:'quote_requested';index"`

	PurchaseType    PurchaseType    `gorm:"type:varchar(20);not null;default:'cash';column:purchase_type"`
	NegotiationMode NegotiationMode `gorm:"type:varchar(20);not null;default:'sales_price';column:negotiation_mode"`

	// Sales-price space (pre-tax)
	AskingPrice  *float64 `gorm:"type:decimal(12,2);column:asking_price"`
	CurrentOffer *float64 `gorm:"type:decimal(12,2);column:current_offer"`
	TargetPrice  *float64 `gorm:"type:decimal(12,2);column:target_price"`
	FinalPrice   *float64 `gorm:"type:decimal(12,2);column:final_price"`

	// Out-the-door space (inclusive of tax and fees)
	OTDAskingPrice  *float64 `gorm:"type:decimal(12,2);column:otd_asking_price"`
	OTDCurrentOffer *float64 `gorm:"type:decimal(12,2);column:otd_current_offer"`
	OTDTargetPrice  *float64 `gorm:"type:decimal(12,2);column:otd_target_price"`
	OTDPrice        *float64 `gorm:"type:decimal(12,2);column:otd_price"`

	// Fee breakdown
	EstimatedSalesTax        *float64             `gorm:"type:decimal(12,2);column:estimated_sales_tax"`
	EstimatedRegistrationFee *float64             `gorm:"type:decimal(12,2);column:estimated_registration_fee"`
	EstimatedDocFee          *float64             `gorm:"type:decimal(12,2);column:estimated_doc_fee"`
	EstimatedTitleFee        *float64             `gorm:"type:decimal(12,2);column:estimated_title_fee"`
	EstimatedTotalFees       *float64             `gorm:"type:decimal(12,2);column:estimated_total_fees"`
	FeeCalculationMethod     FeeCalculationMethod `gorm:"type:varchar(30);column:fee_calculation_method"`
	ManualFeesOverride       bool                 `gorm:"not null;default:false;column:manual_fees_override"`
	BuyerZipCode             string               `gorm:"type:varchar(10);column:buyer_zip_code"`

	QuoteExpires    *time.Time `gorm:"type:date;column:quote_expires"`
	LastContactDate *time.Time `gorm:"column:last_contact_date"`
	IsFallback      bool       `gorm:"not null;default:false;column:is_fallback"`
	Notes           string     `gorm:"type:text"`
}

// HasFeeBreakdown reports whether fees have been resolved for this deal,
// the precondition for negotiation-mode toggling.
func (d *Deal) HasFeeBreakdown() bool {
	return d.EstimatedSalesTax != nil
}

// TotalFees returns the sum of the four fee fields, treating nil as zero.
func (d *Deal) TotalFees() float64 {
	var total float64
	for _, f := range []*float64{d.EstimatedSalesTax, d.EstimatedRegistrationFee, d.EstimatedDocFee, d.EstimatedTitleFee} {
		if f != nil {
			total += *f
		}
	}
	return total
}

// MessageDirection represents which way a message travelled
type MessageDirection string

const (
	MessageDirectionInbound  MessageDirection = "inbound"
	MessageDirectionOutbound MessageDirection = "outbound"
)

// IsValid checks if the MessageDirection is a valid enum value
func (md MessageDirection) IsValid() bool {
	return md == MessageDirectionInbound || md == MessageDirectionOutbound
}

// MessageChannel represents the transport a message arrived through
type MessageChannel string

const (
	MessageChannelApp   MessageChannel = "app"
	MessageChannelEmail MessageChannel = "email"
)

// IsValid checks if the MessageChannel is a valid enum value
func (mc MessageChannel) IsValid() bool {
	return mc == MessageChannelApp || mc == MessageChannelEmail
}

// Message represents one message in a negotiation thread.
// ContainsOffer and ExtractedPrice are derived once at creation time
// from the message content and never recomputed.
type Message struct {
	BaseModel
	UserID         string           `gorm:"type:varchar(100);not null;index;column:user_id"`
	DealID         uuid.UUID        `gorm:"type:uuid;not null;index;column:deal_id"`
	Deal           *Deal            `gorm:"foreignKey:DealID"`
	DealerID       uuid.UUID        `gorm:"type:uuid;not null;index;column:dealer_id"`
	Content        string           `gorm:"type:text;not null"`
	Direction      MessageDirection `gorm:"type:varchar(20);not null"`
	Channel        MessageChannel   `gorm:"type:varchar(20);not null;default:'app'"`
	ContainsOffer  bool             `gorm:"not null;default:false;column:contains_offer"`
	ExtractedPrice *float64         `gorm:"type:decimal(12,2);column:extracted_price"`
	IsRead         bool             `gorm:"not null;default:false;column:is_read"`
}

// ZipTaxRate is read-only reference data for fee resolution, seeded by
// migration and never written by the application.
type ZipTaxRate struct {
	ID                  uint    `gorm:"primaryKey"`
	ZipCode             string  `gorm:"type:varchar(5);not null;uniqueIndex;column:zip_code"`
	State               string  `gorm:"type:varchar(2);not null"`
	City                string  `gorm:"type:varchar(100)"`
	SalesTaxRate        float64 `gorm:"type:decimal(6,4);not null;column:sales_tax_rate"`
	RegistrationBaseFee float64 `gorm:"type:decimal(10,2);not null;column:registration_base_fee"`
	DocFeeAverage       float64 `gorm:"type:decimal(10,2);not null;column:doc_fee_average"`
	TitleFee            float64 `gorm:"type:decimal(10,2);not null;column:title_fee"`
}

// TableName overrides the default table name
func (ZipTaxRate) TableName() string {
	return "zip_tax_rates"
}

// InsightCacheEntry stores one completed AI analysis run. Entries are
// append-only; the latest non-expired entry per user is authoritative.
type InsightCacheEntry struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key"`
	UserID         string         `gorm:"type:varchar(100);not null;index;column:user_id"`
	DealIDs        pq.StringArray `gorm:"type:text[];column:deal_ids"`
	AnalysisData   string         `gorm:"type:jsonb;column:analysis_data"`
	Triggers       pq.StringArray `gorm:"type:text[]"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	CacheExpiresAt time.Time      `gorm:"not null;column:cache_expires_at"`
}

// BeforeCreate assigns an ID when the database does not
func (e *InsightCacheEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName overrides the default table name
func (InsightCacheEntry) TableName() string {
	return "insight_cache_entries"
}

// IsExpired reports whether the entry's TTL has lapsed at the given time.
func (e *InsightCacheEntry) IsExpired(now time.Time) bool {
	return e.CacheExpiresAt.Before(now)
}

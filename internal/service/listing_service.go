package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/extract"
	"github.com/hagglehub/negotiation-api/internal/mapper"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"github.com/hagglehub/negotiation-api/internal/scrape"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListingService turns raw listing pages and conversation text into
// persisted vehicle, dealer, and deal records.
type ListingService struct {
	vehicleRepo *repository.VehicleRepository
	dealerRepo  *repository.DealerRepository
	dealRepo    *repository.DealRepository
	engine      *extract.Engine
	htmlParser  *extract.HTMLExtractor
	fetcher     *scrape.Client
	logger      *zap.Logger
}

func NewListingService(
	vehicleRepo *repository.VehicleRepository,
	dealerRepo *repository.DealerRepository,
	dealRepo *repository.DealRepository,
	engine *extract.Engine,
	htmlParser *extract.HTMLExtractor,
	fetcher *scrape.Client,
	logger *zap.Logger,
) *ListingService {
	return &ListingService{
		vehicleRepo: vehicleRepo,
		dealerRepo:  dealerRepo,
		dealRepo:    dealRepo,
		engine:      engine,
		htmlParser:  htmlParser,
		fetcher:     fetcher,
		logger:      logger,
	}
}

// ImportFromURL fetches a listing page, extracts what it can, and
// creates the vehicle, dealer, and deal records. Fetch failures
// propagate; once HTML is in hand the import always succeeds, falling
// back to a hostname-only result when the page matched nothing.
func (s *ListingService) ImportFromURL(ctx context.Context, userID string, req *domain.ImportListingRequest) (*domain.DealDTO, error) {
	body, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	res := s.htmlParser.Parse(req.URL, body)
	if isEmptyResult(res) {
		s.logger.Info("Listing page matched no extraction pattern, using hostname fallback",
			zap.String("url", req.URL),
		)
		res = s.htmlParser.Fallback(req.URL)
	}

	return s.createFromResult(ctx, userID, res)
}

// ParseConversation runs the text extraction engine over pasted
// conversation text and returns the facts without persisting anything.
// A dealer ID hint pre-seeds the dealer fields.
func (s *ListingService) ParseConversation(ctx context.Context, req *domain.ParseConversationRequest) (*domain.ParsedListingDTO, error) {
	hint, err := s.dealerHint(ctx, req)
	if err != nil {
		return nil, err
	}
	res := s.engine.ParseConversation(req.Text, hint)
	dto := mapper.ToParsedListingDTO(res)
	return &dto, nil
}

// ImportFromConversation parses conversation text and persists the
// extracted records the same way a URL import does.
func (s *ListingService) ImportFromConversation(ctx context.Context, userID string, req *domain.ParseConversationRequest) (*domain.DealDTO, error) {
	hint, err := s.dealerHint(ctx, req)
	if err != nil {
		return nil, err
	}
	res := s.engine.ParseConversation(req.Text, hint)
	return s.createFromResult(ctx, userID, res)
}

func (s *ListingService) dealerHint(ctx context.Context, req *domain.ParseConversationRequest) (*extract.DealerFacts, error) {
	if req.DealerID == nil {
		return nil, nil
	}
	dealer, err := s.dealerRepo.GetByID(ctx, *req.DealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load dealer hint: %w", err)
	}
	return &extract.DealerFacts{
		Name:         dealer.Name,
		Email:        dealer.ContactEmail,
		Phone:        dealer.Phone,
		Address:      dealer.Address,
		Website:      dealer.Website,
		SalesRepName: dealer.SalesRepName,
	}, nil
}

func (s *ListingService) createFromResult(ctx context.Context, userID string, res extract.Result) (*domain.DealDTO, error) {
	vehicle, err := s.findOrCreateVehicle(ctx, userID, res.Vehicle)
	if err != nil {
		return nil, err
	}
	dealer, err := s.findOrCreateDealer(ctx, userID, res.Dealer)
	if err != nil {
		return nil, err
	}

	deal := &domain.Deal{
		UserID:          userID,
		VehicleID:       vehicle.ID,
		DealerID:        dealer.ID,
		Status:          domain.DealStatusQuoteRequested,
		PurchaseType:    domain.PurchaseTypeCash,
		NegotiationMode: domain.NegotiationModeSalesPrice,
		AskingPrice:     res.Pricing.AskingPrice,
	}
	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	loaded, err := s.dealRepo.GetByID(ctx, deal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created deal: %w", err)
	}
	dto := mapper.ToDealDTO(loaded)
	return &dto, nil
}

// findOrCreateVehicle reuses the user's existing vehicle when the VIN
// matches; anything else creates a fresh record.
func (s *ListingService) findOrCreateVehicle(ctx context.Context, userID string, facts extract.VehicleFacts) (*domain.Vehicle, error) {
	if facts.VIN != "" {
		existing, err := s.vehicleRepo.GetByVIN(ctx, userID, facts.VIN)
		if err != nil {
			return nil, fmt.Errorf("failed to look up vehicle by vin: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	condition := domain.VehicleCondition(facts.Condition)
	if !condition.IsValid() {
		condition = domain.VehicleConditionUsed
	}
	mk := facts.Make
	if mk == "" {
		mk = "Unknown"
	}
	model := facts.Model
	if model == "" {
		model = "Vehicle"
	}

	vehicle := &domain.Vehicle{
		UserID:      userID,
		Year:        facts.Year,
		Make:        mk,
		Model:       model,
		Trim:        facts.Trim,
		VIN:         facts.VIN,
		StockNumber: facts.StockNumber,
		Mileage:     facts.Mileage,
		Condition:   condition,
		ListingURL:  facts.ListingURL,
	}
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	return vehicle, nil
}

// findOrCreateDealer reuses the user's dealer when the name matches
// case-insensitively.
func (s *ListingService) findOrCreateDealer(ctx context.Context, userID string, facts extract.DealerFacts) (*domain.Dealer, error) {
	name := facts.Name
	if name == "" {
		name = domain.FallbackDealerName
	}

	existing, err := s.dealerRepo.GetByName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up dealer by name: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	dealer := &domain.Dealer{
		UserID:       userID,
		Name:         name,
		ContactEmail: facts.Email,
		Phone:        facts.Phone,
		Address:      facts.Address,
		Website:      facts.Website,
		SalesRepName: facts.SalesRepName,
		IsFallback:   name == domain.FallbackDealerName,
	}
	if err := s.dealerRepo.Create(ctx, dealer); err != nil {
		return nil, fmt.Errorf("failed to create dealer: %w", err)
	}
	return dealer, nil
}

func isEmptyResult(res extract.Result) bool {
	return res.Vehicle.Make == "" &&
		res.Vehicle.VIN == "" &&
		res.Pricing.AskingPrice == nil &&
		res.Dealer.Name == ""
}

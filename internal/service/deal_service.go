package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/mapper"
	"github.com/hagglehub/negotiation-api/internal/pricing"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Status transition rules: defines valid transitions between deal statuses
var validStatusTransitions = map[domain.DealStatus][]domain.DealStatus{
	domain.DealStatusQuoteRequested: {domain.DealStatusNegotiating, domain.DealStatusDeclined, domain.DealStatusExpired},
	domain.DealStatusNegotiating:    {domain.DealStatusFinalOffer, domain.DealStatusAccepted, domain.DealStatusDeclined, domain.DealStatusExpired},
	domain.DealStatusFinalOffer:     {domain.DealStatusAccepted, domain.DealStatusDeclined, domain.DealStatusNegotiating, domain.DealStatusExpired},
	domain.DealStatusAccepted:       {domain.DealStatusCompleted, domain.DealStatusDeclined},
	domain.DealStatusDeclined:       {domain.DealStatusNegotiating}, // Can reopen
	domain.DealStatusExpired:        {domain.DealStatusNegotiating}, // Can reopen
	domain.DealStatusCompleted:      {},                             // Terminal state
}

type DealService struct {
	dealRepo    *repository.DealRepository
	vehicleRepo *repository.VehicleRepository
	dealerRepo  *repository.DealerRepository
	resolver    *pricing.Resolver
	logger      *zap.Logger
	db          *gorm.DB
}

func NewDealService(
	dealRepo *repository.DealRepository,
	vehicleRepo *repository.VehicleRepository,
	dealerRepo *repository.DealerRepository,
	resolver *pricing.Resolver,
	logger *zap.Logger,
	db *gorm.DB,
) *DealService {
	return &DealService{
		dealRepo:    dealRepo,
		vehicleRepo: vehicleRepo,
		dealerRepo:  dealerRepo,
		resolver:    resolver,
		logger:      logger,
		db:          db,
	}
}

func (s *DealService) Create(ctx context.Context, userID string, req *domain.CreateDealRequest) (*domain.DealDTO, error) {
	if _, err := s.vehicleRepo.GetByID(ctx, req.VehicleID); err != nil {
		return nil, fmt.Errorf("vehicle not found: %w", err)
	}
	if _, err := s.dealerRepo.GetByID(ctx, req.DealerID); err != nil {
		return nil, fmt.Errorf("dealer not found: %w", err)
	}

	purchaseType := req.PurchaseType
	if purchaseType == "" {
		purchaseType = domain.PurchaseTypeCash
	}

	deal := &domain.Deal{
		UserID:          userID,
		VehicleID:       req.VehicleID,
		DealerID:        req.DealerID,
		Status:          domain.DealStatusQuoteRequested,
		PurchaseType:    purchaseType,
		NegotiationMode: domain.NegotiationModeSalesPrice,
		AskingPrice:     req.AskingPrice,
		TargetPrice:     req.TargetPrice,
		BuyerZipCode:    req.BuyerZipCode,
		Notes:           req.Notes,
	}

	// Resolve an initial fee breakdown when both a price and a zip
	// code are already known.
	if deal.AskingPrice != nil && deal.BuyerZipCode != "" {
		if err := s.recalculateFees(ctx, deal); err != nil {
			s.logger.Warn("failed to resolve fees on deal creation", zap.Error(err))
		}
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	return s.getDTO(ctx, deal.ID)
}

func (s *DealService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DealDTO, error) {
	return s.getDTO(ctx, id)
}

func (s *DealService) List(ctx context.Context, page, pageSize int, filters *repository.DealFilters, sortBy repository.DealSortOption) (*domain.PaginatedResponse, error) {
	deals, total, err := s.dealRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       mapper.ToDealDTOs(deals),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *DealService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.dealRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.dealRepo.Delete(ctx, id)
}

// UpdatePrices applies price edits in the deal's current negotiation
// mode, recalculates the fee breakdown when it is not manually
// overridden, and reconciles the opposite price space before the
// record is saved.
func (s *DealService) UpdatePrices(ctx context.Context, id uuid.UUID, req *domain.UpdateDealPricesRequest) (*domain.DealDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}

	if req.BuyerZipCode != nil {
		deal.BuyerZipCode = *req.BuyerZipCode
	}

	if deal.NegotiationMode == domain.NegotiationModeOTD {
		if req.AskingPrice != nil {
			deal.OTDAskingPrice = req.AskingPrice
		}
		if req.CurrentOffer != nil {
			deal.OTDCurrentOffer = req.CurrentOffer
		}
		if req.TargetPrice != nil {
			deal.OTDTargetPrice = req.TargetPrice
		}
		// Sales-space mirrors must exist before fees can be
		// recalculated from the pre-tax price.
		pricing.Reconcile(deal, domain.NegotiationModeOTD)
	} else {
		if req.AskingPrice != nil {
			deal.AskingPrice = req.AskingPrice
		}
		if req.CurrentOffer != nil {
			deal.CurrentOffer = req.CurrentOffer
		}
		if req.TargetPrice != nil {
			deal.TargetPrice = req.TargetPrice
		}
	}

	if !deal.ManualFeesOverride && deal.BuyerZipCode != "" && effectiveSalesPrice(deal) != nil {
		if err := s.recalculateFees(ctx, deal); err != nil {
			return nil, err
		}
	}

	// Bring the opposite space in line with the edited one under the
	// (possibly fresh) fee breakdown.
	pricing.Reconcile(deal, deal.NegotiationMode)

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to update deal prices: %w", err)
	}

	return s.getDTO(ctx, deal.ID)
}

// ToggleNegotiationMode switches the deal between the sales-price and
// OTD spaces. Prices are synchronized and persisted before the mode
// flag flips, so a reader that observes the new mode always sees
// consistent values.
func (s *DealService) ToggleNegotiationMode(ctx context.Context, id uuid.UUID, target domain.NegotiationMode) (*domain.DealDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}

	if deal.NegotiationMode == target {
		return s.getDTO(ctx, deal.ID)
	}

	if err := pricing.PrepareToggle(deal, target); err != nil {
		return nil, err
	}

	// Two ordered writes: synchronized prices first, mode flag second.
	priceFields := map[string]interface{}{
		"asking_price":      deal.AskingPrice,
		"current_offer":     deal.CurrentOffer,
		"target_price":      deal.TargetPrice,
		"otd_asking_price":  deal.OTDAskingPrice,
		"otd_current_offer": deal.OTDCurrentOffer,
		"otd_target_price":  deal.OTDTargetPrice,
	}
	if err := s.dealRepo.UpdateFields(ctx, deal.ID, priceFields); err != nil {
		return nil, fmt.Errorf("failed to synchronize prices: %w", err)
	}
	if err := s.dealRepo.UpdateFields(ctx, deal.ID, map[string]interface{}{"negotiation_mode": target}); err != nil {
		return nil, fmt.Errorf("failed to switch negotiation mode: %w", err)
	}

	return s.getDTO(ctx, deal.ID)
}

// ResolveFees recalculates the deal's fee breakdown from its buyer zip
// code and current pre-tax price, then reconciles the OTD mirrors.
// Refused while a manual override is in place.
func (s *DealService) ResolveFees(ctx context.Context, id uuid.UUID) (*domain.DealDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}

	if deal.ManualFeesOverride {
		return nil, ErrManualFeesLocked
	}

	if err := s.recalculateFees(ctx, deal); err != nil {
		return nil, err
	}
	pricing.Reconcile(deal, domain.NegotiationModeSalesPrice)

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to save fee breakdown: %w", err)
	}

	return s.getDTO(ctx, deal.ID)
}

// SetManualFees stores user-entered fee figures and locks out
// automatic recalculation until the override is cleared.
func (s *DealService) SetManualFees(ctx context.Context, id uuid.UUID, req *domain.SetManualFeesRequest) (*domain.DealDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}

	salesPrice := 0.0
	if p := effectiveSalesPrice(deal); p != nil {
		salesPrice = *p
	}
	fb := pricing.ManualBreakdown(salesPrice, req.SalesTax, req.RegistrationFee, req.DocFee, req.TitleFee)
	pricing.ApplyBreakdown(deal, fb)
	deal.ManualFeesOverride = true
	pricing.Reconcile(deal, domain.NegotiationModeSalesPrice)

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to save manual fees: %w", err)
	}

	return s.getDTO(ctx, deal.ID)
}

// ClearManualFees removes the override and, when a zip code is on
// file, immediately resolves a fresh automatic breakdown.
func (s *DealService) ClearManualFees(ctx context.Context, id uuid.UUID) (*domain.DealDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}

	deal.ManualFeesOverride = false
	if deal.BuyerZipCode != "" && effectiveSalesPrice(deal) != nil {
		if err := s.recalculateFees(ctx, deal); err != nil {
			return nil, err
		}
		pricing.Reconcile(deal, domain.NegotiationModeSalesPrice)
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to clear manual fees: %w", err)
	}

	return s.getDTO(ctx, deal.ID)
}

// UpdateStatus moves the deal through the status state machine. Final
// prices land on accepted/completed transitions.
func (s *DealService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateDealStatusRequest) (*domain.DealDTO, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}

	if !isValidTransition(deal.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, deal.Status, req.Status)
	}

	deal.Status = req.Status
	if req.FinalPrice != nil {
		deal.FinalPrice = req.FinalPrice
		if deal.HasFeeBreakdown() {
			otd := pricing.ConvertSalesToOTD(*req.FinalPrice, deal.TotalFees())
			deal.OTDPrice = &otd
		}
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to update deal status: %w", err)
	}

	return s.getDTO(ctx, deal.ID)
}

// PreviewFees resolves a fee breakdown for a hypothetical price and
// zip code without touching any deal.
func (s *DealService) PreviewFees(ctx context.Context, req *domain.FeePreviewRequest) (*domain.FeeBreakdownDTO, error) {
	fb, err := s.resolver.Resolve(ctx, &req.SalesPrice, req.ZipCode)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidZipCode) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}
	dto := mapper.ToFeeBreakdownDTO(fb)
	return &dto, nil
}

func (s *DealService) recalculateFees(ctx context.Context, deal *domain.Deal) error {
	fb, err := s.resolver.Resolve(ctx, effectiveSalesPrice(deal), deal.BuyerZipCode)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidZipCode) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return fmt.Errorf("fee resolution failed: %w", err)
	}
	if fb.CalculationMethod == domain.FeeMethodNoPrice {
		return nil
	}
	pricing.ApplyBreakdown(deal, fb)
	return nil
}

func (s *DealService) getDTO(ctx context.Context, id uuid.UUID) (*domain.DealDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}
	dto := mapper.ToDealDTO(deal)
	return &dto, nil
}

// effectiveSalesPrice is the pre-tax figure fees are computed from:
// the current offer when one exists, otherwise the asking price.
func effectiveSalesPrice(d *domain.Deal) *float64 {
	if d.CurrentOffer != nil {
		return d.CurrentOffer
	}
	return d.AskingPrice
}

func isValidTransition(from, to domain.DealStatus) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/extract"
	"github.com/hagglehub/negotiation-api/internal/mapper"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MessageService struct {
	messageRepo *repository.MessageRepository
	dealRepo    *repository.DealRepository
	dealerRepo  *repository.DealerRepository
	vehicleRepo *repository.VehicleRepository
	engine      *extract.Engine
	logger      *zap.Logger
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	dealRepo *repository.DealRepository,
	dealerRepo *repository.DealerRepository,
	vehicleRepo *repository.VehicleRepository,
	engine *extract.Engine,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		dealRepo:    dealRepo,
		dealerRepo:  dealerRepo,
		vehicleRepo: vehicleRepo,
		engine:      engine,
		logger:      logger,
	}
}

// Create stores a message. Offer detection runs once here: the
// contains_offer flag and extracted price are derived from the content
// at creation time and never recomputed. A message without a deal or
// dealer lands on the user's synthetic "General Inbox" records.
func (s *MessageService) Create(ctx context.Context, userID string, req *domain.CreateMessageRequest) (*domain.MessageDTO, error) {
	channel := req.Channel
	if channel == "" {
		channel = domain.MessageChannelApp
	}

	dealID, dealerID, err := s.resolveThread(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	price, containsOffer := s.engine.ExtractOfferPrice(req.Content)

	message := &domain.Message{
		UserID:         userID,
		DealID:         dealID,
		DealerID:       dealerID,
		Content:        req.Content,
		Direction:      req.Direction,
		Channel:        channel,
		ContainsOffer:  containsOffer,
		ExtractedPrice: price,
		IsRead:         req.Direction == domain.MessageDirectionOutbound,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	// Any traffic on the thread counts as dealer contact for
	// staleness tracking.
	if err := s.dealRepo.TouchLastContact(ctx, dealID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update deal last contact date",
			zap.String("deal_id", dealID.String()),
			zap.Error(err),
		)
	}

	dto := mapper.ToMessageDTO(message)
	return &dto, nil
}

func (s *MessageService) GetByID(ctx context.Context, id uuid.UUID) (*domain.MessageDTO, error) {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	dto := mapper.ToMessageDTO(message)
	return &dto, nil
}

func (s *MessageService) List(ctx context.Context, page, pageSize int, filters *repository.MessageFilters) (*domain.PaginatedResponse, error) {
	messages, total, err := s.messageRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       mapper.ToMessageDTOs(messages),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetThread returns a deal's conversation oldest first.
func (s *MessageService) GetThread(ctx context.Context, dealID uuid.UUID) ([]domain.MessageDTO, error) {
	messages, err := s.messageRepo.GetThread(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	return mapper.ToMessageDTOs(messages), nil
}

func (s *MessageService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if _, err := s.messageRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.messageRepo.MarkRead(ctx, id)
}

func (s *MessageService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}

// resolveThread pins the message to a deal and dealer. Explicit IDs
// win; otherwise the user's fallback records hold the message until it
// can be re-attributed.
func (s *MessageService) resolveThread(ctx context.Context, userID string, req *domain.CreateMessageRequest) (uuid.UUID, uuid.UUID, error) {
	if req.DealID != nil {
		deal, err := s.dealRepo.GetByID(ctx, *req.DealID)
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("deal not found: %w", err)
		}
		return deal.ID, deal.DealerID, nil
	}

	dealerID := uuid.Nil
	if req.DealerID != nil {
		dealer, err := s.dealerRepo.GetByID(ctx, *req.DealerID)
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("dealer not found: %w", err)
		}
		dealerID = dealer.ID

		// Prefer the most recent active deal with that dealer.
		deals, err := s.dealRepo.GetByDealer(ctx, dealerID)
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("failed to look up dealer's deals: %w", err)
		}
		for i := range deals {
			if deals[i].UserID == userID && deals[i].Status.IsActive() {
				return deals[i].ID, dealerID, nil
			}
		}
	}

	fallbackDeal, err := s.ensureFallbackDeal(ctx, userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if dealerID == uuid.Nil {
		dealerID = fallbackDeal.DealerID
	}
	return fallbackDeal.ID, dealerID, nil
}

// ensureFallbackDeal returns the user's synthetic holding deal,
// creating the "General Inbox" dealer, a placeholder vehicle, and the
// deal itself on first use.
func (s *MessageService) ensureFallbackDeal(ctx context.Context, userID string) (*domain.Deal, error) {
	deal, err := s.dealRepo.GetFallbackByUser(ctx, userID)
	if err == nil {
		return deal, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up fallback deal: %w", err)
	}

	dealer, err := s.dealerRepo.GetFallbackByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dealer = &domain.Dealer{
			UserID:     userID,
			Name:       domain.FallbackDealerName,
			IsFallback: true,
		}
		if err := s.dealerRepo.Create(ctx, dealer); err != nil {
			return nil, fmt.Errorf("failed to create fallback dealer: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up fallback dealer: %w", err)
	}

	vehicle := &domain.Vehicle{
		UserID:    userID,
		Make:      "Unknown",
		Model:     "Vehicle",
		Condition: domain.VehicleConditionUsed,
	}
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to create placeholder vehicle: %w", err)
	}

	deal = &domain.Deal{
		UserID:          userID,
		VehicleID:       vehicle.ID,
		DealerID:        dealer.ID,
		Status:          domain.DealStatusQuoteRequested,
		PurchaseType:    domain.PurchaseTypeCash,
		NegotiationMode: domain.NegotiationModeSalesPrice,
		IsFallback:      true,
		Notes:           "Holds messages that could not be matched to a deal",
	}
	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create fallback deal: %w", err)
	}
	return deal, nil
}

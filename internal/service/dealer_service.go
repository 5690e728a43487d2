package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/mapper"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DealerService struct {
	dealerRepo *repository.DealerRepository
	logger     *zap.Logger
}

func NewDealerService(dealerRepo *repository.DealerRepository, logger *zap.Logger) *DealerService {
	return &DealerService{dealerRepo: dealerRepo, logger: logger}
}

func (s *DealerService) Create(ctx context.Context, userID string, req *domain.CreateDealerRequest) (*domain.DealerDTO, error) {
	existing, err := s.dealerRepo.GetByName(ctx, userID, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing dealer: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: dealer %q already exists", ErrConflict, req.Name)
	}

	dealer := &domain.Dealer{
		UserID:       userID,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Address:      req.Address,
		Website:      req.Website,
		SalesRepName: req.SalesRepName,
	}

	if err := s.dealerRepo.Create(ctx, dealer); err != nil {
		return nil, fmt.Errorf("failed to create dealer: %w", err)
	}

	dto := mapper.ToDealerDTO(dealer)
	return &dto, nil
}

func (s *DealerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DealerDTO, error) {
	dealer, err := s.dealerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load dealer: %w", err)
	}
	dto := mapper.ToDealerDTO(dealer)
	return &dto, nil
}

func (s *DealerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateDealerRequest) (*domain.DealerDTO, error) {
	dealer, err := s.dealerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load dealer: %w", err)
	}

	dealer.Name = req.Name
	dealer.ContactEmail = req.ContactEmail
	dealer.Phone = req.Phone
	dealer.Address = req.Address
	dealer.Website = req.Website
	dealer.SalesRepName = req.SalesRepName

	if err := s.dealerRepo.Update(ctx, dealer); err != nil {
		return nil, fmt.Errorf("failed to update dealer: %w", err)
	}

	dto := mapper.ToDealerDTO(dealer)
	return &dto, nil
}

func (s *DealerService) Delete(ctx context.Context, id uuid.UUID) error {
	dealer, err := s.dealerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if dealer.IsFallback {
		return fmt.Errorf("%w: the fallback dealer cannot be deleted", ErrInvalidInput)
	}
	return s.dealerRepo.Delete(ctx, id)
}

func (s *DealerService) List(ctx context.Context, userID string, page, pageSize int) (*domain.PaginatedResponse, error) {
	dealers, total, err := s.dealerRepo.List(ctx, userID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list dealers: %w", err)
	}

	dtos := make([]domain.DealerDTO, len(dealers))
	for i := range dealers {
		dtos[i] = mapper.ToDealerDTO(&dealers[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

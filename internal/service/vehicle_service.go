package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/mapper"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type VehicleService struct {
	vehicleRepo *repository.VehicleRepository
	logger      *zap.Logger
}

func NewVehicleService(vehicleRepo *repository.VehicleRepository, logger *zap.Logger) *VehicleService {
	return &VehicleService{vehicleRepo: vehicleRepo, logger: logger}
}

func (s *VehicleService) Create(ctx context.Context, userID string, req *domain.CreateVehicleRequest) (*domain.VehicleDTO, error) {
	condition := req.Condition
	if condition == "" {
		condition = domain.VehicleConditionUsed
	}

	vehicle := &domain.Vehicle{
		UserID:        userID,
		Year:          req.Year,
		Make:          req.Make,
		Model:         req.Model,
		Trim:          req.Trim,
		VIN:           strings.ToUpper(req.VIN),
		StockNumber:   req.StockNumber,
		Mileage:       req.Mileage,
		Condition:     condition,
		ExteriorColor: req.ExteriorColor,
		InteriorColor: req.InteriorColor,
		ListingURL:    req.ListingURL,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	dto := mapper.ToVehicleDTO(vehicle)
	return &dto, nil
}

func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.VehicleDTO, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load vehicle: %w", err)
	}
	dto := mapper.ToVehicleDTO(vehicle)
	return &dto, nil
}

func (s *VehicleService) Update(ctx context.Context, id uuid.UUID, req *domain.CreateVehicleRequest) (*domain.VehicleDTO, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load vehicle: %w", err)
	}

	vehicle.Year = req.Year
	vehicle.Make = req.Make
	vehicle.Model = req.Model
	vehicle.Trim = req.Trim
	vehicle.VIN = strings.ToUpper(req.VIN)
	vehicle.StockNumber = req.StockNumber
	vehicle.Mileage = req.Mileage
	if req.Condition != "" {
		vehicle.Condition = req.Condition
	}
	vehicle.ExteriorColor = req.ExteriorColor
	vehicle.InteriorColor = req.InteriorColor
	vehicle.ListingURL = req.ListingURL

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	dto := mapper.ToVehicleDTO(vehicle)
	return &dto, nil
}

func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.vehicleRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.vehicleRepo.Delete(ctx, id)
}

func (s *VehicleService) List(ctx context.Context, page, pageSize int, filters *repository.VehicleFilters) (*domain.PaginatedResponse, error) {
	vehicles, total, err := s.vehicleRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	dtos := make([]domain.VehicleDTO, len(vehicles))
	for i := range vehicles {
		dtos[i] = mapper.ToVehicleDTO(&vehicles[i])
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

package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"gorm.io/gorm"
)

// VehicleFilters contains all filter options for listing vehicles
type VehicleFilters struct {
	UserID      *string
	Make        *string
	Condition   *domain.VehicleCondition
	MinYear     *int
	MaxYear     *int
	SearchQuery *string
}

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// GetByVIN returns the user's vehicle with the given VIN, or nil when
// no such vehicle exists. Used to reuse vehicles across imports.
func (r *VehicleRepository) GetByVIN(ctx context.Context, userID, vin string) (*domain.Vehicle, error) {
	if vin == "" {
		return nil, nil
	}
	var vehicle domain.Vehicle
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND vin = ?", userID, strings.ToUpper(vin)).
		First(&vehicle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Vehicle{}, "id = ?", id).Error
}

func (r *VehicleRepository) List(ctx context.Context, page, pageSize int, filters *VehicleFilters) ([]domain.Vehicle, int64, error) {
	var vehicles []domain.Vehicle
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Vehicle{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&vehicles).Error

	return vehicles, total, err
}

func (r *VehicleRepository) applyFilters(query *gorm.DB, filters *VehicleFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Make != nil {
		query = query.Where("LOWER(make) = LOWER(?)", *filters.Make)
	}
	if filters.Condition != nil {
		query = query.Where("condition = ?", *filters.Condition)
	}
	if filters.MinYear != nil {
		query = query.Where("year >= ?", *filters.MinYear)
	}
	if filters.MaxYear != nil {
		query = query.Where("year <= ?", *filters.MaxYear)
	}
	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		search := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Where(
			"LOWER(make) LIKE ? OR LOWER(model) LIKE ? OR LOWER(trim) LIKE ? OR LOWER(vin) LIKE ?",
			search, search, search, search,
		)
	}
	return query
}

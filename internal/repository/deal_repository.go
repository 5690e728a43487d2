package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DealFilters contains all filter options for listing deals
type DealFilters struct {
	UserID        *string
	Status        *domain.DealStatus
	DealerID      *uuid.UUID
	VehicleID     *uuid.UUID
	PurchaseType  *domain.PurchaseType
	ActiveOnly    bool
	IsFallback    *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// DealSortOption represents available sort options
type DealSortOption string

const (
	DealSortByCreatedDesc      DealSortOption = "created_desc"
	DealSortByCreatedAsc       DealSortOption = "created_asc"
	DealSortByQuoteExpiresAsc  DealSortOption = "quote_expires_asc"
	DealSortByLastContactAsc   DealSortOption = "last_contact_asc"
	DealSortByAskingPriceDesc  DealSortOption = "asking_price_desc"
	DealSortByAskingPriceAsc   DealSortOption = "asking_price_asc"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Create(ctx context.Context, deal *domain.Deal) error {
	// Omit associations to avoid GORM trying to validate related records
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(deal).Error
}

func (r *DealRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Dealer").
		Where("id = ?", id).
		First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) Update(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(deal).Error
}

// UpdateFields persists only the named columns. The price-sync path
// uses this so a prices write and the later mode-flag write stay two
// separate, ordered statements.
func (r *DealRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&domain.Deal{}).Where("id = ?", id).Updates(fields).Error
}

func (r *DealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Deal{}, "id = ?", id).Error
}

func (r *DealRepository) List(ctx context.Context, page, pageSize int, filters *DealFilters, sortBy DealSortOption) ([]domain.Deal, int64, error) {
	var deals []domain.Deal
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Deal{}).Preload("Vehicle").Preload("Dealer")
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, sortBy)

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&deals).Error

	return deals, total, err
}

// GetActiveByUser returns the user's deals in an active status, the
// input set for insight trigger evaluation.
func (r *DealRepository) GetActiveByUser(ctx context.Context, userID string) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Dealer").
		Where("user_id = ? AND status IN ?", userID, activeStatuses()).
		Order("created_at DESC").
		Find(&deals).Error
	return deals, err
}

// GetByDealer returns all deals held with a specific dealer
func (r *DealRepository) GetByDealer(ctx context.Context, dealerID uuid.UUID) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Where("dealer_id = ?", dealerID).
		Order("created_at DESC").
		Find(&deals).Error
	return deals, err
}

// GetFallbackByUser returns the user's synthetic fallback deal, if one
// exists, for holding unattributed inbound messages.
func (r *DealRepository) GetFallbackByUser(ctx context.Context, userID string) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_fallback = ?", userID, true).
		Order("created_at ASC").
		First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

// ListActiveUserIDs returns the distinct users holding at least one
// deal in an active status.
func (r *DealRepository) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Distinct("user_id").
		Where("status IN ?", activeStatuses()).
		Order("user_id ASC").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// TouchLastContact stamps the deal's last contact date.
func (r *DealRepository) TouchLastContact(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("id = ?", id).
		Update("last_contact_date", at).Error
}

func (r *DealRepository) applyFilters(query *gorm.DB, filters *DealFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DealerID != nil {
		query = query.Where("dealer_id = ?", *filters.DealerID)
	}
	if filters.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filters.VehicleID)
	}
	if filters.PurchaseType != nil {
		query = query.Where("purchase_type = ?", *filters.PurchaseType)
	}
	if filters.ActiveOnly {
		query = query.Where("status IN ?", activeStatuses())
	}
	if filters.IsFallback != nil {
		query = query.Where("is_fallback = ?", *filters.IsFallback)
	}
	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}
	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}
	return query
}

func (r *DealRepository) applySorting(query *gorm.DB, sortBy DealSortOption) *gorm.DB {
	switch sortBy {
	case DealSortByCreatedAsc:
		return query.Order("created_at ASC")
	case DealSortByQuoteExpiresAsc:
		return query.Order("quote_expires ASC NULLS LAST")
	case DealSortByLastContactAsc:
		return query.Order("last_contact_date ASC NULLS FIRST")
	case DealSortByAskingPriceDesc:
		return query.Order("asking_price DESC NULLS LAST")
	case DealSortByAskingPriceAsc:
		return query.Order("asking_price ASC NULLS LAST")
	default:
		return query.Order("created_at DESC")
	}
}

func activeStatuses() []domain.DealStatus {
	return []domain.DealStatus{
		domain.DealStatusQuoteRequested,
		domain.DealStatusNegotiating,
		domain.DealStatusFinalOffer,
	}
}

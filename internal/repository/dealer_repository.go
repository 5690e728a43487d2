package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"gorm.io/gorm"
)

type DealerRepository struct {
	db *gorm.DB
}

func NewDealerRepository(db *gorm.DB) *DealerRepository {
	return &DealerRepository{db: db}
}

func (r *DealerRepository) Create(ctx context.Context, dealer *domain.Dealer) error {
	return r.db.WithContext(ctx).Create(dealer).Error
}

func (r *DealerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dealer, error) {
	var dealer domain.Dealer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dealer).Error
	if err != nil {
		return nil, err
	}
	return &dealer, nil
}

// GetByName returns the user's dealer matching the name
// case-insensitively, or nil when no match exists. Imports use this to
// avoid duplicating dealers.
func (r *DealerRepository) GetByName(ctx context.Context, userID, name string) (*domain.Dealer, error) {
	if name == "" {
		return nil, nil
	}
	var dealer domain.Dealer
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name)).
		First(&dealer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &dealer, nil
}

// GetByEmail matches an inbound message sender to a dealer by contact
// email, or returns nil.
func (r *DealerRepository) GetByEmail(ctx context.Context, userID, email string) (*domain.Dealer, error) {
	if email == "" {
		return nil, nil
	}
	var dealer domain.Dealer
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(contact_email) = ?", userID, strings.ToLower(email)).
		First(&dealer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &dealer, nil
}

// GetFallbackByUser returns the user's synthetic "General Inbox"
// dealer, if one exists.
func (r *DealerRepository) GetFallbackByUser(ctx context.Context, userID string) (*domain.Dealer, error) {
	var dealer domain.Dealer
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_fallback = ?", userID, true).
		Order("created_at ASC").
		First(&dealer).Error
	if err != nil {
		return nil, err
	}
	return &dealer, nil
}

func (r *DealerRepository) Update(ctx context.Context, dealer *domain.Dealer) error {
	return r.db.WithContext(ctx).Save(dealer).Error
}

func (r *DealerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Dealer{}, "id = ?", id).Error
}

func (r *DealerRepository) List(ctx context.Context, userID string, page, pageSize int) ([]domain.Dealer, int64, error) {
	var dealers []domain.Dealer
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Dealer{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&dealers).Error

	return dealers, total, err
}

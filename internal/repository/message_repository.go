package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageFilters contains all filter options for listing messages
type MessageFilters struct {
	UserID     *string
	DealID     *uuid.UUID
	DealerID   *uuid.UUID
	Direction  *domain.MessageDirection
	UnreadOnly bool
	OffersOnly bool
}

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error
}

func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	var message domain.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) List(ctx context.Context, page, pageSize int, filters *MessageFilters) ([]domain.Message, int64, error) {
	var messages []domain.Message
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Message{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&messages).Error

	return messages, total, err
}

// GetThread returns a deal's messages oldest first, the order a
// conversation reads in.
func (r *MessageRepository) GetThread(ctx context.Context, dealID uuid.UUID) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkRead flags a single message as read.
func (r *MessageRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// CountUnread returns the user's unread inbound message count.
func (r *MessageRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("user_id = ? AND direction = ? AND is_read = ?", userID, domain.MessageDirectionInbound, false).
		Count(&count).Error
	return count, err
}

func (r *MessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Message{}, "id = ?", id).Error
}

func (r *MessageRepository) applyFilters(query *gorm.DB, filters *MessageFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DealID != nil {
		query = query.Where("deal_id = ?", *filters.DealID)
	}
	if filters.DealerID != nil {
		query = query.Where("dealer_id = ?", *filters.DealerID)
	}
	if filters.Direction != nil {
		query = query.Where("direction = ?", *filters.Direction)
	}
	if filters.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if filters.OffersOnly {
		query = query.Where("contains_offer = ?", true)
	}
	return query
}

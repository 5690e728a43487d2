package repository

import (
	"context"
	"time"

	"github.com/hagglehub/negotiation-api/internal/domain"
	"gorm.io/gorm"
)

// InsightCacheRepository stores analysis results. Entries are
// append-only; "latest" is always created_at descending and expiry is
// a filter predicate, never a delete.
type InsightCacheRepository struct {
	db *gorm.DB
}

func NewInsightCacheRepository(db *gorm.DB) *InsightCacheRepository {
	return &InsightCacheRepository{db: db}
}

func (r *InsightCacheRepository) Create(ctx context.Context, entry *domain.InsightCacheEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetLatestValid returns the user's newest non-expired entry, or nil
// when every entry has expired.
func (r *InsightCacheRepository) GetLatestValid(ctx context.Context, userID string, now time.Time) (*domain.InsightCacheEntry, error) {
	var entry domain.InsightCacheEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND cache_expires_at >= ?", userID, now).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// GetLatest returns the user's newest entry regardless of expiry, or
// nil when the user has none.
func (r *InsightCacheRepository) GetLatest(ctx context.Context, userID string) (*domain.InsightCacheEntry, error) {
	var entry domain.InsightCacheEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// PurgeExpired deletes entries that expired before the cutoff. Expiry
// already filters reads; this only keeps the table from growing
// without bound.
func (r *InsightCacheRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cache_expires_at < ?", before).
		Delete(&domain.InsightCacheEntry{})
	return res.RowsAffected, res.Error
}

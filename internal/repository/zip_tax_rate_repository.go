package repository

import (
	"context"

	"github.com/hagglehub/negotiation-api/internal/domain"
	"gorm.io/gorm"
)

// ZipTaxRateRepository reads the jurisdiction tax reference table. The
// table is seeded by migrations and never written at runtime.
type ZipTaxRateRepository struct {
	db *gorm.DB
}

func NewZipTaxRateRepository(db *gorm.DB) *ZipTaxRateRepository {
	return &ZipTaxRateRepository{db: db}
}

// FindByZip looks up a zip code by exact match. A miss is (nil, nil),
// letting the fee resolver fall back to flat defaults without
// inspecting driver errors.
func (r *ZipTaxRateRepository) FindByZip(ctx context.Context, zipCode string) (*domain.ZipTaxRate, error) {
	var rate domain.ZipTaxRate
	err := r.db.WithContext(ctx).Where("zip_code = ?", zipCode).First(&rate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

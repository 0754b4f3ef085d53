package mysql

import (
	"context"

	propertyDomain "tokenestate-backend/internal/domain/property"

	"gorm.io/gorm"
)

type PropertyRepository struct{ db *gorm.DB }

func NewPropertyRepository(db *gorm.DB) *PropertyRepository { return &PropertyRepository{db: db} }

func (r *PropertyRepository) Create(ctx context.Context, p *propertyDomain.Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uint64) (*propertyDomain.Property, error) {
	var out propertyDomain.Property
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *PropertyRepository) ExistsByTicker(ctx context.Context, ticker string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&propertyDomain.Property{}).
		Where("ticker = ?", ticker).
		Count(&n).Error
	return n > 0, err
}

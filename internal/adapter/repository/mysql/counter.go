package mysql

import (
	"context"
	"errors"

	counterDomain "tokenestate-backend/internal/domain/counter"

	"gorm.io/gorm"
)

type CounterRepository struct{ db *gorm.DB }

func NewCounterRepository(db *gorm.DB) *CounterRepository { return &CounterRepository{db: db} }

func (r *CounterRepository) Next(ctx context.Context, name string) (uint64, error) {
	db := r.db.WithContext(ctx)
	var c counterDomain.Counter
	res := forUpdate(db).Where("name = ?", name).First(&c)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		if err := db.Create(&counterDomain.Counter{Name: name, Next: 2}).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}
	if res.Error != nil {
		return 0, res.Error
	}
	cur := c.Next
	err := db.Model(&counterDomain.Counter{}).
		Where("name = ?", name).
		UpdateColumn("next", gorm.Expr("next + 1")).Error
	if err != nil {
		return 0, err
	}
	return cur, nil
}

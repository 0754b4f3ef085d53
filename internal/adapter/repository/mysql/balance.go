package mysql

import (
	"context"
	"errors"

	ledgerDomain "tokenestate-backend/internal/domain/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BalanceRepository struct{ db *gorm.DB }

func NewBalanceRepository(db *gorm.DB) *BalanceRepository { return &BalanceRepository{db: db} }

func (r *BalanceRepository) Get(ctx context.Context, holder string, propertyID uint64) (decimal.Decimal, error) {
	var out ledgerDomain.Balance
	res := forUpdate(r.db.WithContext(ctx)).
		Where("holder = ? AND property_id = ?", holder, propertyID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	return out.Amount, nil
}

func (r *BalanceRepository) Set(ctx context.Context, holder string, propertyID uint64, amount decimal.Decimal) error {
	db := r.db.WithContext(ctx)
	if amount.IsZero() {
		return db.Where("holder = ? AND property_id = ?", holder, propertyID).
			Delete(&ledgerDomain.Balance{}).Error
	}
	b := ledgerDomain.Balance{Holder: holder, PropertyID: propertyID, Amount: amount}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "holder"}, {Name: "property_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&b).Error
}

func (r *BalanceRepository) ListByProperty(ctx context.Context, propertyID uint64) ([]ledgerDomain.Balance, error) {
	var out []ledgerDomain.Balance
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("holder ASC").
		Find(&out).Error
	return out, err
}

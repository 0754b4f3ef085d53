package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// Get returns zero for a missing entry.
	Get(ctx context.Context, holder string, propertyID uint64) (decimal.Decimal, error)
	// Set stores amount, deleting the entry when amount is zero.
	Set(ctx context.Context, holder string, propertyID uint64, amount decimal.Decimal) error
	ListByProperty(ctx context.Context, propertyID uint64) ([]Balance, error)
}

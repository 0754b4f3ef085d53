package loan

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository covers loans together with their investments and collateral.
// Lookups return gorm.ErrRecordNotFound when absent.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// GetByIDForUpdate row-locks the loan for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	Save(ctx context.Context, l *Loan) error

	// AddInvestment increments the investor's contribution, creating it on first use.
	AddInvestment(ctx context.Context, loanID uint64, investor string, amount decimal.Decimal) error
	GetInvestment(ctx context.Context, loanID uint64, investor string) (*Investment, error)
	// ListInvestments returns contributions in first-investment order.
	ListInvestments(ctx context.Context, loanID uint64) ([]Investment, error)
	TotalInvested(ctx context.Context, loanID uint64) (decimal.Decimal, error)

	CreateCollateral(ctx context.Context, c *Collateral) error
	GetCollateral(ctx context.Context, loanID uint64) (*Collateral, error)
	SaveCollateral(ctx context.Context, c *Collateral) error
}

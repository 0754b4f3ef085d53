package loanmock

import (
	"context"
	"errors"

	domain "tokenestate-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

// ErrNotImplemented is returned by lookups whose function field is unset.
var ErrNotImplemented = errors.New("loanmock: not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers are no-ops; unset readers return ErrNotImplemented.
type Repo struct {
	CreateFn           func(ctx context.Context, l *domain.Loan) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.Loan, error)
	SaveFn             func(ctx context.Context, l *domain.Loan) error

	AddInvestmentFn   func(ctx context.Context, loanID uint64, investor string, amount decimal.Decimal) error
	GetInvestmentFn   func(ctx context.Context, loanID uint64, investor string) (*domain.Investment, error)
	ListInvestmentsFn func(ctx context.Context, loanID uint64) ([]domain.Investment, error)
	TotalInvestedFn   func(ctx context.Context, loanID uint64) (decimal.Decimal, error)

	CreateCollateralFn func(ctx context.Context, c *domain.Collateral) error
	GetCollateralFn    func(ctx context.Context, loanID uint64) (*domain.Collateral, error)
	SaveCollateralFn   func(ctx context.Context, c *domain.Collateral) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) AddInvestment(ctx context.Context, loanID uint64, investor string, amount decimal.Decimal) error {
	if m.AddInvestmentFn != nil {
		return m.AddInvestmentFn(ctx, loanID, investor, amount)
	}
	return nil
}

func (m *Repo) GetInvestment(ctx context.Context, loanID uint64, investor string) (*domain.Investment, error) {
	if m.GetInvestmentFn != nil {
		return m.GetInvestmentFn(ctx, loanID, investor)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) ListInvestments(ctx context.Context, loanID uint64) ([]domain.Investment, error) {
	if m.ListInvestmentsFn != nil {
		return m.ListInvestmentsFn(ctx, loanID)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) TotalInvested(ctx context.Context, loanID uint64) (decimal.Decimal, error) {
	if m.TotalInvestedFn != nil {
		return m.TotalInvestedFn(ctx, loanID)
	}
	return decimal.Zero, ErrNotImplemented
}

func (m *Repo) CreateCollateral(ctx context.Context, c *domain.Collateral) error {
	if m.CreateCollateralFn != nil {
		return m.CreateCollateralFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetCollateral(ctx context.Context, loanID uint64) (*domain.Collateral, error) {
	if m.GetCollateralFn != nil {
		return m.GetCollateralFn(ctx, loanID)
	}
	return nil, ErrNotImplemented
}

func (m *Repo) SaveCollateral(ctx context.Context, c *domain.Collateral) error {
	if m.SaveCollateralFn != nil {
		return m.SaveCollateralFn(ctx, c)
	}
	return nil
}

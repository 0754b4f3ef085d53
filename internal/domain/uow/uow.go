package uow

import (
	"context"

	"tokenestate-backend/internal/domain/counter"
	"tokenestate-backend/internal/domain/event"
	"tokenestate-backend/internal/domain/ledger"
	"tokenestate-backend/internal/domain/loan"
	"tokenestate-backend/internal/domain/property"
)

// Repos is the state aggregate every operation works against. All members
// share one transaction.
type Repos struct {
	Properties property.Repository
	Balances   ledger.Repository
	Counters   counter.Repository
	Loans      loan.Repository
	Events     event.Repository
}

type UnitOfWork interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row first, then passes it in.
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}

// Package uowmock provides unit-of-work doubles for usecase tests that do not
// need a database.
package uowmock

import (
	"context"
	"errors"
	"sync"

	"tokenestate-backend/internal/domain/loan"
	"tokenestate-backend/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW dispatches to its function fields and records the loans it was asked
// to lock. Nil fields return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error

	mu       sync.Mutex
	txCalls  int
	loanLock []uint64
}

func New() *UoW { return &UoW{} }

// Failing returns a UoW whose every transaction fails with err before the
// callback runs, as a dropped database connection would.
func Failing(err error) *UoW {
	return &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error { return err },
		WithinLoanTxFn: func(context.Context, uint64, func(uow.Repos, *loan.Loan) error) error {
			return err
		},
	}
}

// Passthrough runs every callback directly against repos, without a transaction.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinLoanTxFn: func(ctx context.Context, loanID uint64, fn func(uow.Repos, *loan.Loan) error) error {
			l, err := repos.Loans.GetByIDForUpdate(ctx, loanID)
			if err != nil {
				return err
			}
			return fn(repos, l)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	m.mu.Lock()
	m.txCalls++
	m.mu.Unlock()
	if m.WithinTxFn == nil {
		return errUnimplemented
	}
	return m.WithinTxFn(ctx, fn)
}

func (m *UoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	m.mu.Lock()
	m.txCalls++
	m.loanLock = append(m.loanLock, loanID)
	m.mu.Unlock()
	if m.WithinLoanTxFn == nil {
		return errUnimplemented
	}
	return m.WithinLoanTxFn(ctx, loanID, fn)
}

// Transactions counts calls to either method.
func (m *UoW) Transactions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txCalls
}

// LockedLoans lists the loan ids passed to WithinLoanTx, in call order.
func (m *UoW) LockedLoans() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.loanLock...)
}

// Package escrow moves loan collateral between the builder, the escrow
// account and investors. Every method runs inside the caller's transaction.
package escrow

import (
	"context"
	"errors"
	"fmt"

	"tokenestate-backend/internal/domain/apperr"
	"tokenestate-backend/internal/domain/event"
	"tokenestate-backend/internal/domain/loan"
	"tokenestate-backend/internal/domain/uow"
	"tokenestate-backend/internal/usecase/ledger"
	"tokenestate-backend/pkg/clock"
	"tokenestate-backend/pkg/units"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Escrow struct {
	engine *ledger.Engine
	clock  clock.Clock
}

func New(e *ledger.Engine, c clock.Clock) *Escrow {
	if c == nil {
		c = clock.New()
	}
	return &Escrow{engine: e, clock: c}
}

// Payout is one investor's share of distributed collateral.
type Payout struct {
	Investor string          `json:"investor"`
	Amount   decimal.Decimal `json:"amount"`
}

// Lock moves the collateral from the builder into escrow. It succeeds once per loan.
func (e *Escrow) Lock(ctx context.Context, r uow.Repos, b *event.Batch, l *loan.Loan) error {
	c, err := e.collateral(ctx, r, l.ID)
	if err != nil {
		return err
	}
	if c.Locked {
		return apperr.ErrTokensAlreadyLocked
	}
	if _, err := e.engine.Move(ctx, r.Balances, ledger.Movement{
		From: l.Builder, To: e.engine.EscrowAccount(), PropertyID: c.PropertyID, Amount: c.Amount, FeeExempt: true,
	}); err != nil {
		return err
	}

	now := e.clock.Now().Unix()
	c.Locked, c.LockedAt = true, &now
	if err := r.Loans.SaveCollateral(ctx, c); err != nil {
		return fmt.Errorf("save collateral: %w", err)
	}
	return b.Record(event.TopicCollateralLocked, l.ID, map[string]any{
		"property_id": c.PropertyID,
		"builder":     l.Builder,
		"amount":      c.Amount.String(),
	})
}

// Release returns locked collateral to the builder.
func (e *Escrow) Release(ctx context.Context, r uow.Repos, b *event.Batch, l *loan.Loan) error {
	c, err := e.settleable(ctx, r, l.ID)
	if err != nil {
		return err
	}
	if _, err := e.engine.Move(ctx, r.Balances, ledger.Movement{
		From: e.engine.EscrowAccount(), To: l.Builder, PropertyID: c.PropertyID, Amount: c.Amount, FeeExempt: true,
	}); err != nil {
		return err
	}
	if err := e.settle(ctx, r, c); err != nil {
		return err
	}
	return b.Record(event.TopicCollateralReturned, l.ID, map[string]any{
		"property_id": c.PropertyID,
		"builder":     l.Builder,
		"amount":      c.Amount.String(),
	})
}

// Distribute pays each investor floor(investment * collateral / requested),
// in first-investment order. The truncation remainder stays in escrow.
func (e *Escrow) Distribute(ctx context.Context, r uow.Repos, b *event.Batch, l *loan.Loan) ([]Payout, error) {
	c, err := e.settleable(ctx, r, l.ID)
	if err != nil {
		return nil, err
	}
	investments, err := r.Loans.ListInvestments(ctx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	payouts := make([]Payout, 0, len(investments))
	for _, in := range investments {
		share := units.MulDiv(in.Amount, c.Amount, l.RequestedAmount)
		if !share.IsPositive() {
			continue
		}
		if _, err := e.engine.Move(ctx, r.Balances, ledger.Movement{
			From: e.engine.EscrowAccount(), To: in.Investor, PropertyID: c.PropertyID, Amount: share, FeeExempt: true,
		}); err != nil {
			return nil, err
		}
		if err := b.Record(event.TopicInvestorCompensated, l.ID, map[string]any{
			"property_id": c.PropertyID,
			"investor":    in.Investor,
			"amount":      share.String(),
		}); err != nil {
			return nil, err
		}
		payouts = append(payouts, Payout{Investor: in.Investor, Amount: share})
	}

	if err := e.settle(ctx, r, c); err != nil {
		return nil, err
	}
	return payouts, nil
}

func (e *Escrow) collateral(ctx context.Context, r uow.Repos, loanID uint64) (*loan.Collateral, error) {
	c, err := r.Loans.GetCollateral(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrCollateralNotSet
	}
	if err != nil {
		return nil, fmt.Errorf("load collateral: %w", err)
	}
	return c, nil
}

// settleable loads collateral that is locked and not yet paid out.
func (e *Escrow) settleable(ctx context.Context, r uow.Repos, loanID uint64) (*loan.Collateral, error) {
	c, err := e.collateral(ctx, r, loanID)
	if err != nil {
		return nil, err
	}
	if !c.Locked {
		return nil, apperr.ErrLoanNotFullyFunded
	}
	if c.Settled {
		return nil, apperr.ErrLoanAlreadyRepaid
	}
	return c, nil
}

func (e *Escrow) settle(ctx context.Context, r uow.Repos, c *loan.Collateral) error {
	now := e.clock.Now().Unix()
	c.Settled, c.SettledAt = true, &now
	if err := r.Loans.SaveCollateral(ctx, c); err != nil {
		return fmt.Errorf("save collateral: %w", err)
	}
	return nil
}

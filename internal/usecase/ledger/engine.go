package ledger

import (
	"context"
	"fmt"

	"tokenestate-backend/internal/domain/apperr"
	domain "tokenestate-backend/internal/domain/ledger"
	"tokenestate-backend/pkg/units"

	"github.com/shopspring/decimal"
)

type Config struct {
	FeeBps        uint32
	FeeWallet     string
	EscrowAccount string
}

// Movement is one balance transfer request handled by Engine.Move.
type Movement struct {
	From       string
	To         string
	PropertyID uint64
	Amount     decimal.Decimal
	// FeeExempt moves Amount exactly; escrow movements use it.
	FeeExempt bool
}

type Receipt struct {
	From       string
	To         string
	PropertyID uint64
	Amount     decimal.Decimal
	Fee        decimal.Decimal
	Net        decimal.Decimal
}

// Engine is the only writer of balances. It has no transaction of its own;
// callers pass the tx-bound repository from their unit of work.
type Engine struct{ cfg Config }

func NewEngine(cfg Config) *Engine { return &Engine{cfg: cfg} }

func (e *Engine) EscrowAccount() string { return e.cfg.EscrowAccount }

// Fee is floor(amount * feeBps / 10000), zero when no fee wallet is set.
func (e *Engine) Fee(amount decimal.Decimal) decimal.Decimal {
	if e.cfg.FeeWallet == "" {
		return decimal.Zero
	}
	return units.Bps(amount, e.cfg.FeeBps)
}

// Move debits From by Amount and credits the fee wallet and To so that the
// credits sum to the debit. All guards run before the first write.
func (e *Engine) Move(ctx context.Context, balances domain.Repository, m Movement) (Receipt, error) {
	if !units.Positive(m.Amount) {
		return Receipt{}, apperr.ErrInvalidAmount
	}
	from, err := balances.Get(ctx, m.From, m.PropertyID)
	if err != nil {
		return Receipt{}, fmt.Errorf("read balance: %w", err)
	}
	if from.LessThan(m.Amount) {
		return Receipt{}, apperr.ErrInsufficientBalance
	}

	fee := decimal.Zero
	if !m.FeeExempt {
		fee = e.Fee(m.Amount)
	}
	net := m.Amount.Sub(fee)

	if err := balances.Set(ctx, m.From, m.PropertyID, from.Sub(m.Amount)); err != nil {
		return Receipt{}, fmt.Errorf("debit %s: %w", m.From, err)
	}
	if fee.IsPositive() {
		if err := e.credit(ctx, balances, e.cfg.FeeWallet, m.PropertyID, fee); err != nil {
			return Receipt{}, err
		}
	}
	if net.IsPositive() {
		if err := e.credit(ctx, balances, m.To, m.PropertyID, net); err != nil {
			return Receipt{}, err
		}
	}

	return Receipt{From: m.From, To: m.To, PropertyID: m.PropertyID, Amount: m.Amount, Fee: fee, Net: net}, nil
}

// Mint credits newly created units. Only registration calls it, with the
// property's full supply.
func (e *Engine) Mint(ctx context.Context, balances domain.Repository, holder string, propertyID uint64, amount decimal.Decimal) error {
	if !units.Positive(amount) {
		return apperr.ErrInvalidAmount
	}
	return e.credit(ctx, balances, holder, propertyID, amount)
}

func (e *Engine) credit(ctx context.Context, balances domain.Repository, holder string, propertyID uint64, amount decimal.Decimal) error {
	cur, err := balances.Get(ctx, holder, propertyID)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	if err := balances.Set(ctx, holder, propertyID, cur.Add(amount)); err != nil {
		return fmt.Errorf("credit %s: %w", holder, err)
	}
	return nil
}

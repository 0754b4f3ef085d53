package loan

import (
	"context"
	"errors"
	"fmt"

	"tokenestate-backend/internal/domain/apperr"
	"tokenestate-backend/internal/domain/auth"
	"tokenestate-backend/internal/domain/counter"
	"tokenestate-backend/internal/domain/event"
	"tokenestate-backend/internal/domain/loan"
	"tokenestate-backend/internal/domain/uow"
	"tokenestate-backend/internal/logger"
	"tokenestate-backend/internal/usecase/escrow"
	"tokenestate-backend/pkg/clock"
	"tokenestate-backend/pkg/units"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultMaxDurationDays = 365

type Config struct {
	MaxDurationDays uint32
}

type Usecase struct {
	uow    uow.UnitOfWork
	auth   auth.Authorizer
	escrow *escrow.Escrow
	clock  clock.Clock
	pub    event.Publisher
	cfg    Config
}

func NewUsecase(tx uow.UnitOfWork, a auth.Authorizer, esc *escrow.Escrow, c clock.Clock, pub event.Publisher, cfg Config) *Usecase {
	if c == nil {
		c = clock.New()
	}
	if pub == nil {
		pub = event.NopPublisher{}
	}
	if cfg.MaxDurationDays == 0 {
		cfg.MaxDurationDays = DefaultMaxDurationDays
	}
	return &Usecase{uow: tx, auth: a, escrow: esc, clock: c, pub: pub, cfg: cfg}
}

// CreateBorrowRequest snapshots the property's terms into a new open loan and
// records its (unlocked) collateral.
func (u *Usecase) CreateBorrowRequest(ctx context.Context, in CreateBorrowInput) (*LoanDTO, error) {
	if err := u.auth.Authorize(ctx, in.Builder); err != nil {
		return nil, err
	}

	var (
		l     *loan.Loan
		batch event.Batch
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Properties.GetByID(ctx, in.PropertyID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrInvalidProperty
		}
		if err != nil {
			return fmt.Errorf("load property: %w", err)
		}
		if p.Builder != in.Builder {
			return apperr.ErrUnauthorized
		}

		requested := p.Wanted.Sub(p.Have)
		if in.RequestedAmount != nil {
			requested = *in.RequestedAmount
		}
		if !units.Positive(requested) {
			return apperr.New(apperr.KindInvalidTerms, "requested amount must be positive")
		}
		if in.DurationDays == 0 || in.DurationDays > u.cfg.MaxDurationDays {
			return apperr.New(apperr.KindInvalidTerms, fmt.Sprintf("duration must be 1..%d days", u.cfg.MaxDurationDays))
		}
		repayment := requested.Add(units.Bps(requested, in.APYBps))
		if !units.Valid(repayment) {
			return apperr.New(apperr.KindInvalidTerms, "repayment amount out of range")
		}

		collateral := p.UnitsFor(requested)
		if in.CollateralAmount != nil {
			collateral = *in.CollateralAmount
		}
		held, err := r.Balances.Get(ctx, in.Builder, p.ID)
		if err != nil {
			return fmt.Errorf("read builder balance: %w", err)
		}
		if !units.Positive(collateral) || collateral.GreaterThan(held) {
			return apperr.ErrInvalidCollateralAmount
		}

		id, err := r.Counters.Next(ctx, counter.Borrow)
		if err != nil {
			return fmt.Errorf("next borrow id: %w", err)
		}
		now := u.clock.Now().Unix()
		l = &loan.Loan{
			ID:              id,
			PropertyID:      p.ID,
			Builder:         in.Builder,
			RequestedAmount: requested,
			RepaymentAmount: repayment,
			DurationDays:    in.DurationDays,
			MaturityAt:      now + int64(in.DurationDays)*units.SecondsPerDay,
			APYBps:          in.APYBps,
			Price:           p.Price(),
			Percentual:      p.Percentual(),
			TotalSupply:     p.TotalSupply,
			Status:          loan.StatusOpen,
			StatusUpdatedAt: now,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.Loans.CreateCollateral(ctx, &loan.Collateral{
			LoanID: l.ID, PropertyID: p.ID, Amount: collateral,
		}); err != nil {
			return err
		}
		if err := batch.Record(event.TopicLoanCreated, l.ID, map[string]any{
			"property_id":       l.PropertyID,
			"builder":           l.Builder,
			"requested_amount":  l.RequestedAmount.String(),
			"repayment_amount":  l.RepaymentAmount.String(),
			"collateral_amount": collateral.String(),
			"maturity_at":       l.MaturityAt,
		}); err != nil {
			return err
		}
		return batch.Flush(ctx, r.Events)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "borrow request created",
		zap.Uint64("loan_id", l.ID),
		zap.Uint64("property_id", l.PropertyID),
		zap.String("requested_amount", l.RequestedAmount.String()),
		zap.Int64("maturity_at", l.MaturityAt))
	u.publish(ctx, &batch)
	return toDTO(l, decimal.Zero), nil
}

// Invest adds to an open loan. The investment that reaches the requested
// amount funds the loan and locks its collateral in the same transaction.
func (u *Usecase) Invest(ctx context.Context, in InvestInput) (*InvestResultDTO, error) {
	if err := u.auth.Authorize(ctx, in.Investor); err != nil {
		return nil, err
	}

	var (
		out   *InvestResultDTO
		batch event.Batch
	)
	err := u.withLoan(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusOpen {
			return apperr.ErrLoanNotActive
		}
		if !units.Positive(in.Amount) {
			return apperr.ErrInvalidAmount
		}
		total, err := r.Loans.TotalInvested(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("sum investments: %w", err)
		}
		total = total.Add(in.Amount)
		if total.GreaterThan(l.RequestedAmount) {
			return apperr.New(apperr.KindInvalidTerms, "investment exceeds requested amount")
		}

		if err := r.Loans.AddInvestment(ctx, l.ID, in.Investor, in.Amount); err != nil {
			return err
		}
		mine, err := r.Loans.GetInvestment(ctx, l.ID, in.Investor)
		if err != nil {
			return fmt.Errorf("load investment: %w", err)
		}
		if err := batch.Record(event.TopicInvestmentMade, l.ID, map[string]any{
			"investor":       in.Investor,
			"amount":         in.Amount.String(),
			"total_invested": total.String(),
		}); err != nil {
			return err
		}

		if total.Equal(l.RequestedAmount) {
			if err := u.transition(ctx, r, l, loan.StatusFunded); err != nil {
				return err
			}
			if err := u.escrow.Lock(ctx, r, &batch, l); err != nil {
				return err
			}
			if err := batch.Record(event.TopicLoanFullyFunded, l.ID, map[string]any{
				"requested_amount": l.RequestedAmount.String(),
			}); err != nil {
				return err
			}
		}

		out = &InvestResultDTO{
			InvestmentDTO: InvestmentDTO{LoanID: l.ID, Investor: in.Investor, Amount: mine.Amount},
			TotalInvested: total,
			Status:        string(l.Status),
		}
		return batch.Flush(ctx, r.Events)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "investment accepted",
		zap.Uint64("loan_id", in.LoanID),
		zap.String("investor", in.Investor),
		zap.String("amount", in.Amount.String()),
		zap.String("status", out.Status))
	u.publish(ctx, &batch)
	return out, nil
}

// Repay settles a funded loan and returns the collateral to the builder. It is
// accepted up to one day after maturity.
func (u *Usecase) Repay(ctx context.Context, builder string, loanID uint64) (*LoanDTO, error) {
	var (
		out   *LoanDTO
		batch event.Batch
	)
	err := u.withLoan(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := u.auth.Authorize(ctx, builder); err != nil {
			return err
		}
		if builder != l.Builder {
			return apperr.ErrUnauthorized
		}
		if l.Status != loan.StatusFunded {
			return apperr.ErrLoanNotActive
		}
		if u.clock.Now().Unix() > l.MaturityAt+units.SecondsPerDay {
			return apperr.New(apperr.KindInvalidTerms, "repayment window closed")
		}

		if err := u.transition(ctx, r, l, loan.StatusRepaid); err != nil {
			return err
		}
		if err := u.escrow.Release(ctx, r, &batch, l); err != nil {
			return err
		}
		if err := batch.Record(event.TopicLoanRepaid, l.ID, map[string]any{
			"builder":          l.Builder,
			"repayment_amount": l.RepaymentAmount.String(),
		}); err != nil {
			return err
		}
		total, err := r.Loans.TotalInvested(ctx, l.ID)
		if err != nil {
			return err
		}
		out = toDTO(l, total)
		return batch.Flush(ctx, r.Events)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "loan repaid", zap.Uint64("loan_id", loanID), zap.String("builder", builder))
	u.publish(ctx, &batch)
	return out, nil
}

// ExecuteDefault distributes the collateral of a funded loan past maturity.
// Anyone may call it.
func (u *Usecase) ExecuteDefault(ctx context.Context, loanID uint64) (*DefaultResultDTO, error) {
	var (
		out   *DefaultResultDTO
		batch event.Batch
	)
	err := u.withLoan(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusFunded {
			return apperr.ErrLoanNotActive
		}
		if u.clock.Now().Unix() <= l.MaturityAt {
			return apperr.ErrLoanNotMatured
		}

		if err := u.transition(ctx, r, l, loan.StatusDefaulted); err != nil {
			return err
		}
		payouts, err := u.escrow.Distribute(ctx, r, &batch, l)
		if err != nil {
			return err
		}
		paid := decimal.Zero
		for _, p := range payouts {
			paid = paid.Add(p.Amount)
		}
		if err := batch.Record(event.TopicCollateralExecuted, l.ID, map[string]any{
			"investors":   len(payouts),
			"distributed": paid.String(),
		}); err != nil {
			return err
		}

		total, err := r.Loans.TotalInvested(ctx, l.ID)
		if err != nil {
			return err
		}
		out = &DefaultResultDTO{Loan: *toDTO(l, total), Payouts: make([]PayoutDTO, 0, len(payouts))}
		for _, p := range payouts {
			out.Payouts = append(out.Payouts, PayoutDTO{Investor: p.Investor, Amount: p.Amount})
		}
		return batch.Flush(ctx, r.Events)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "loan defaulted", zap.Uint64("loan_id", loanID), zap.Int("payouts", len(out.Payouts)))
	u.publish(ctx, &batch)
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	var out *LoanDTO
	err := u.read(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		total, err := r.Loans.TotalInvested(ctx, l.ID)
		if err != nil {
			return err
		}
		out = toDTO(l, total)
		return nil
	})
	return out, err
}

// Investors lists contributions in first-investment order.
func (u *Usecase) Investors(ctx context.Context, loanID uint64) ([]InvestmentDTO, error) {
	var out []InvestmentDTO
	err := u.read(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		rows, err := r.Loans.ListInvestments(ctx, l.ID)
		if err != nil {
			return err
		}
		out = make([]InvestmentDTO, 0, len(rows))
		for _, in := range rows {
			out = append(out, InvestmentDTO{LoanID: in.LoanID, Investor: in.Investor, Amount: in.Amount})
		}
		return nil
	})
	return out, err
}

// Investment returns one investor's contribution, zero when there is none.
func (u *Usecase) Investment(ctx context.Context, loanID uint64, investor string) (*InvestmentDTO, error) {
	out := &InvestmentDTO{LoanID: loanID, Investor: investor, Amount: decimal.Zero}
	err := u.read(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		in, err := r.Loans.GetInvestment(ctx, l.ID, investor)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out.Amount = in.Amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) Collateral(ctx context.Context, loanID uint64) (*CollateralDTO, error) {
	var out *CollateralDTO
	err := u.read(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		c, err := r.Loans.GetCollateral(ctx, l.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrCollateralNotSet
		}
		if err != nil {
			return err
		}
		out = &CollateralDTO{
			LoanID: c.LoanID, PropertyID: c.PropertyID, Amount: c.Amount,
			Locked: c.Locked, Settled: c.Settled, LockedAt: c.LockedAt, SettledAt: c.SettledAt,
		}
		return nil
	})
	return out, err
}

func (u *Usecase) transition(ctx context.Context, r uow.Repos, l *loan.Loan, next loan.Status) error {
	if !l.Status.CanTransitionTo(next) {
		return apperr.ErrLoanNotActive
	}
	l.Status = next
	l.StatusUpdatedAt = u.clock.Now().Unix()
	if err := r.Loans.Save(ctx, l); err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	return nil
}

// withLoan runs fn with the loan row locked.
func (u *Usecase) withLoan(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	err := u.uow.WithinLoanTx(ctx, loanID, fn)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrLoanNotFound
	}
	return err
}

func (u *Usecase) read(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByID(ctx, loanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrLoanNotFound
		}
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

func (u *Usecase) publish(ctx context.Context, b *event.Batch) {
	if err := b.Publish(ctx, u.pub); err != nil {
		logger.WarnCtx(ctx, "publish events failed", zap.Error(err), zap.Int("count", b.Len()))
	}
}

func toDTO(l *loan.Loan, invested decimal.Decimal) *LoanDTO {
	return &LoanDTO{
		ID:              l.ID,
		PropertyID:      l.PropertyID,
		Builder:         l.Builder,
		RequestedAmount: l.RequestedAmount,
		RepaymentAmount: l.RepaymentAmount,
		TotalInvested:   invested,
		DurationDays:    l.DurationDays,
		MaturityAt:      l.MaturityAt,
		APYBps:          l.APYBps,
		Price:           l.Price,
		Percentual:      l.Percentual,
		TotalSupply:     l.TotalSupply,
		Status:          string(l.Status),
		StatusUpdatedAt: l.StatusUpdatedAt,
		CreatedAt:       l.CreatedAt,
	}
}

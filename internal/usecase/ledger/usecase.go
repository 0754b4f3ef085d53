package ledger

import (
	"context"
	"errors"
	"fmt"

	"tokenestate-backend/internal/domain/apperr"
	"tokenestate-backend/internal/domain/auth"
	"tokenestate-backend/internal/domain/event"
	"tokenestate-backend/internal/domain/uow"
	"tokenestate-backend/internal/logger"
	"tokenestate-backend/pkg/units"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Usecase struct {
	uow    uow.UnitOfWork
	auth   auth.Authorizer
	engine *Engine
	pub    event.Publisher
}

func NewUsecase(tx uow.UnitOfWork, a auth.Authorizer, e *Engine, pub event.Publisher) *Usecase {
	if pub == nil {
		pub = event.NopPublisher{}
	}
	return &Usecase{uow: tx, auth: a, engine: e, pub: pub}
}

func (u *Usecase) Transfer(ctx context.Context, in TransferInput) (*ReceiptDTO, error) {
	if err := u.auth.Authorize(ctx, in.From); err != nil {
		return nil, err
	}
	// escrowed collateral only leaves through the loan lifecycle
	if esc := u.engine.EscrowAccount(); esc != "" && in.From == esc {
		return nil, apperr.ErrUnauthorized
	}
	if !units.Positive(in.Amount) {
		return nil, apperr.ErrInvalidAmount
	}

	var (
		rc    Receipt
		batch event.Batch
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := propertyExists(ctx, r, in.PropertyID); err != nil {
			return err
		}
		var err error
		rc, err = u.engine.Move(ctx, r.Balances, Movement{
			From: in.From, To: in.To, PropertyID: in.PropertyID, Amount: in.Amount,
		})
		if err != nil {
			return err
		}
		if err := batch.Record(event.TopicPropertyTransfer, in.PropertyID, map[string]any{
			"from":   rc.From,
			"to":     rc.To,
			"amount": rc.Amount.String(),
			"fee":    rc.Fee.String(),
		}); err != nil {
			return err
		}
		return batch.Flush(ctx, r.Events)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "units transferred",
		zap.Uint64("property_id", rc.PropertyID),
		zap.String("from", rc.From),
		zap.String("to", rc.To),
		zap.String("amount", rc.Amount.String()),
		zap.String("fee", rc.Fee.String()))
	u.publish(ctx, &batch)

	return &ReceiptDTO{
		From: rc.From, To: rc.To, PropertyID: rc.PropertyID,
		Amount: rc.Amount, Fee: rc.Fee, Net: rc.Net,
	}, nil
}

func (u *Usecase) BalanceOf(ctx context.Context, holder string, propertyID uint64) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := propertyExists(ctx, r, propertyID); err != nil {
			return err
		}
		var err error
		out, err = r.Balances.Get(ctx, holder, propertyID)
		return err
	})
	return out, err
}

// Holders lists every non-zero balance of a property, ordered by holder.
func (u *Usecase) Holders(ctx context.Context, propertyID uint64) ([]BalanceDTO, error) {
	var out []BalanceDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := propertyExists(ctx, r, propertyID); err != nil {
			return err
		}
		rows, err := r.Balances.ListByProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		out = make([]BalanceDTO, 0, len(rows))
		for _, b := range rows {
			out = append(out, BalanceDTO{Holder: b.Holder, PropertyID: b.PropertyID, Amount: b.Amount})
		}
		return nil
	})
	return out, err
}

func (u *Usecase) publish(ctx context.Context, b *event.Batch) {
	if err := b.Publish(ctx, u.pub); err != nil {
		logger.WarnCtx(ctx, "publish events failed", zap.Error(err), zap.Int("count", b.Len()))
	}
}

func propertyExists(ctx context.Context, r uow.Repos, propertyID uint64) error {
	_, err := r.Properties.GetByID(ctx, propertyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrInvalidProperty
	}
	if err != nil {
		return fmt.Errorf("load property %d: %w", propertyID, err)
	}
	return nil
}

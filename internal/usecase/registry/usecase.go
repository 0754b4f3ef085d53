package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tokenestate-backend/internal/domain/apperr"
	"tokenestate-backend/internal/domain/auth"
	"tokenestate-backend/internal/domain/counter"
	"tokenestate-backend/internal/domain/event"
	"tokenestate-backend/internal/domain/property"
	"tokenestate-backend/internal/domain/uow"
	"tokenestate-backend/internal/logger"
	"tokenestate-backend/internal/usecase/ledger"
	"tokenestate-backend/pkg/units"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Usecase struct {
	uow    uow.UnitOfWork
	auth   auth.Authorizer
	policy auth.RegistrationPolicy
	engine *ledger.Engine
	pub    event.Publisher
}

func NewUsecase(tx uow.UnitOfWork, a auth.Authorizer, policy auth.RegistrationPolicy, e *ledger.Engine, pub event.Publisher) *Usecase {
	if pub == nil {
		pub = event.NopPublisher{}
	}
	return &Usecase{uow: tx, auth: a, policy: policy, engine: e, pub: pub}
}

// Register creates a property and mints its whole supply to the builder.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*PropertyDTO, error) {
	if err := u.auth.Authorize(ctx, in.Builder); err != nil {
		return nil, err
	}
	if !u.policy.Allows(in.Builder) {
		return nil, apperr.ErrUnauthorized
	}
	if !units.Positive(in.TotalSupply) || !units.Positive(in.Wanted) ||
		!units.Valid(in.Have) || in.Have.IsNegative() {
		return nil, apperr.ErrInvalidProperty
	}
	ticker := strings.TrimSpace(in.Ticker)

	var (
		p     *property.Property
		batch event.Batch
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if ticker != "" {
			taken, err := r.Properties.ExistsByTicker(ctx, ticker)
			if err != nil {
				return fmt.Errorf("check ticker: %w", err)
			}
			if taken {
				return apperr.ErrPropertyExists
			}
		}

		id, err := r.Counters.Next(ctx, counter.Property)
		if err != nil {
			return fmt.Errorf("next property id: %w", err)
		}
		p = &property.Property{
			ID:          id,
			Builder:     in.Builder,
			Name:        in.Name,
			Wanted:      in.Wanted,
			Have:        in.Have,
			TotalSupply: in.TotalSupply,
			BuilderName: in.BuilderName,
			ExternalRef: in.ExternalRef,
			Ticker:      nullable(ticker),
		}
		if err := r.Properties.Create(ctx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrPropertyExists
			}
			return err
		}
		if err := u.engine.Mint(ctx, r.Balances, p.Builder, p.ID, p.TotalSupply); err != nil {
			return err
		}
		if err := batch.Record(event.TopicPropertyRegistered, p.ID, map[string]any{
			"builder":      p.Builder,
			"name":         p.Name,
			"total_supply": p.TotalSupply.String(),
		}); err != nil {
			return err
		}
		return batch.Flush(ctx, r.Events)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "property registered",
		zap.Uint64("property_id", p.ID),
		zap.String("builder", p.Builder),
		zap.String("total_supply", p.TotalSupply.String()))
	if err := batch.Publish(ctx, u.pub); err != nil {
		logger.WarnCtx(ctx, "publish events failed", zap.Error(err), zap.Uint64("property_id", p.ID))
	}
	return toDTO(p), nil
}

func (u *Usecase) Get(ctx context.Context, propertyID uint64) (*PropertyDTO, error) {
	p, err := u.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return toDTO(p), nil
}

// Quote returns the derived price and percentual of a property.
func (u *Usecase) Quote(ctx context.Context, propertyID uint64) (*QuoteDTO, error) {
	p, err := u.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return &QuoteDTO{PropertyID: p.ID, Price: p.Price(), Percentual: p.Percentual()}, nil
}

// UnitsFor returns how many units an investment covers at the property's valuation.
func (u *Usecase) UnitsFor(ctx context.Context, propertyID uint64, investment decimal.Decimal) (decimal.Decimal, error) {
	if !units.Valid(investment) || investment.IsNegative() {
		return decimal.Zero, apperr.ErrInvalidAmount
	}
	p, err := u.load(ctx, propertyID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.UnitsFor(investment), nil
}

func (u *Usecase) load(ctx context.Context, propertyID uint64) (*property.Property, error) {
	var p *property.Property
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		p, err = r.Properties.GetByID(ctx, propertyID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrInvalidProperty
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// nullable stores an empty ticker as NULL so the unique index skips it.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toDTO(p *property.Property) *PropertyDTO {
	var ticker string
	if p.Ticker != nil {
		ticker = *p.Ticker
	}
	return &PropertyDTO{
		ID:          p.ID,
		Builder:     p.Builder,
		Name:        p.Name,
		Wanted:      p.Wanted,
		Have:        p.Have,
		TotalSupply: p.TotalSupply,
		BuilderName: p.BuilderName,
		ExternalRef: p.ExternalRef,
		Ticker:      ticker,
		CreatedAt:   p.CreatedAt,
	}
}

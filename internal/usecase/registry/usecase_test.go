package registry

import (
	"context"
	"errors"
	"testing"

	"tokenestate-backend/internal/adapter/repository/mysql"
	"tokenestate-backend/internal/domain/apperr"
	"tokenestate-backend/internal/domain/auth"
	"tokenestate-backend/internal/domain/event"
	"tokenestate-backend/internal/domain/property"
	"tokenestate-backend/internal/domain/uow"
	"tokenestate-backend/internal/testutil/eventmock"
	"tokenestate-backend/internal/testutil/testdb"
	"tokenestate-backend/internal/testutil/uowmock"
	"tokenestate-backend/internal/usecase/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const admin = "GADMIN"

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func as(principal string) context.Context {
	return auth.WithPrincipal(context.Background(), principal)
}

func newUsecase(t *testing.T) (*Usecase, *gorm.DB, *eventmock.Publisher) {
	t.Helper()
	db := testdb.Open(t)
	pub := eventmock.New()
	policy := auth.NewRegistrationPolicy(admin, []string{"GBUILDER"})
	eng := ledger.NewEngine(ledger.Config{})
	return NewUsecase(mysql.NewGormUoW(db), auth.ContextAuthorizer{}, policy, eng, pub), db, pub
}

func tower(builder string) RegisterInput {
	return RegisterInput{
		Builder: builder, Name: "Tower A",
		Wanted: d(1_000_000), Have: d(250_000), TotalSupply: d(1000),
		BuilderName: "Acme Construction", ExternalRef: "ipfs://bafy", Ticker: "TWA",
	}
}

func TestRegister_MintsSupplyToBuilder(t *testing.T) {
	uc, db, pub := newUsecase(t)
	ctx := as("GBUILDER")

	p, err := uc.Register(ctx, tower("GBUILDER"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.ID)
	assert.Equal(t, "Acme Construction", p.BuilderName)

	rows, err := mysql.NewBalanceRepository(db).ListByProperty(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "GBUILDER", rows[0].Holder)
	assert.Equal(t, "1000", rows[0].Amount.String())

	in := tower("GBUILDER")
	in.Ticker = "TWB"
	p2, err := uc.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), p2.ID, "ids are monotonic")

	assert.Equal(t, []string{event.TopicPropertyRegistered, event.TopicPropertyRegistered}, pub.Topics())
}

func TestRegister_AdminAllowed(t *testing.T) {
	uc, _, _ := newUsecase(t)
	_, err := uc.Register(as(admin), tower(admin))
	require.NoError(t, err)
}

func TestRegister_RejectsWithoutStateChange(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		mutate func(*RegisterInput)
		want   error
	}{
		{"caller is not builder", as("GOTHER"), func(in *RegisterInput) { in.Builder = "GBUILDER" }, apperr.ErrUnauthorized},
		{"builder not whitelisted", as("GOTHER"), func(in *RegisterInput) { in.Builder = "GOTHER" }, apperr.ErrUnauthorized},
		{"anonymous", context.Background(), func(*RegisterInput) {}, apperr.ErrUnauthorized},
		{"zero supply", as("GBUILDER"), func(in *RegisterInput) { in.TotalSupply = d(0) }, apperr.ErrInvalidProperty},
		{"zero wanted", as("GBUILDER"), func(in *RegisterInput) { in.Wanted = d(0) }, apperr.ErrInvalidProperty},
		{"negative have", as("GBUILDER"), func(in *RegisterInput) { in.Have = d(-1) }, apperr.ErrInvalidProperty},
		{"fractional supply", as("GBUILDER"), func(in *RegisterInput) { in.TotalSupply = decimal.RequireFromString("10.5") }, apperr.ErrInvalidProperty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, db, pub := newUsecase(t)
			in := tower("GBUILDER")
			tt.mutate(&in)

			_, err := uc.Register(tt.ctx, in)
			require.True(t, errors.Is(err, tt.want), "want %v, got %v", tt.want, err)

			_, err = uc.Get(context.Background(), 1)
			assert.ErrorIs(t, err, apperr.ErrInvalidProperty)
			rows, _ := mysql.NewBalanceRepository(db).ListByProperty(context.Background(), 1)
			assert.Empty(t, rows)
			assert.Zero(t, pub.Batches())
		})
	}
}

func TestRegister_DuplicateTicker(t *testing.T) {
	uc, db, _ := newUsecase(t)
	ctx := as("GBUILDER")
	_, err := uc.Register(ctx, tower("GBUILDER"))
	require.NoError(t, err)

	_, err = uc.Register(ctx, tower("GBUILDER"))
	require.ErrorIs(t, err, apperr.ErrPropertyExists)

	// the rejected call must not burn an id
	in := tower("GBUILDER")
	in.Ticker = ""
	p, err := uc.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), p.ID)

	// empty tickers never collide
	p, err = uc.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), p.ID)

	var n int64
	require.NoError(t, db.Table("properties").Count(&n).Error)
	assert.Equal(t, int64(3), n)
}

// staleTickers answers every ticker lookup with "free", as a concurrent
// registration that commits between the check and the insert would.
type staleTickers struct{ property.Repository }

func (staleTickers) ExistsByTicker(context.Context, string) (bool, error) { return false, nil }

func TestRegister_TickerRaceMapsToPropertyExists(t *testing.T) {
	db := testdb.Open(t)
	repos := uow.Repos{
		Properties: staleTickers{mysql.NewPropertyRepository(db)},
		Balances:   mysql.NewBalanceRepository(db),
		Counters:   mysql.NewCounterRepository(db),
		Loans:      mysql.NewLoanRepository(db),
		Events:     mysql.NewEventRepository(db),
	}
	policy := auth.NewRegistrationPolicy(admin, []string{"GBUILDER"})
	uc := NewUsecase(uowmock.Passthrough(repos), auth.ContextAuthorizer{}, policy, ledger.NewEngine(ledger.Config{}), eventmock.New())
	ctx := as("GBUILDER")

	_, err := uc.Register(ctx, tower("GBUILDER"))
	require.NoError(t, err)

	_, err = uc.Register(ctx, tower("GBUILDER"))
	require.ErrorIs(t, err, apperr.ErrPropertyExists)
}

func TestQuoteAndUnitsFor(t *testing.T) {
	uc, _, _ := newUsecase(t)
	in := tower("GBUILDER")
	in.Wanted, in.Have, in.TotalSupply = d(300), d(600), d(31)
	p, err := uc.Register(as("GBUILDER"), in)
	require.NoError(t, err)

	q, err := uc.Quote(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "9", q.Price.String())
	assert.Equal(t, "2", q.Percentual.String())

	n, err := uc.UnitsFor(context.Background(), p.ID, d(100))
	require.NoError(t, err)
	assert.Equal(t, "10", n.String())

	_, err = uc.UnitsFor(context.Background(), p.ID, d(-1))
	assert.ErrorIs(t, err, apperr.ErrInvalidAmount)
	_, err = uc.Quote(context.Background(), 99)
	assert.ErrorIs(t, err, apperr.ErrInvalidProperty)
}

func TestRegister_InfrastructureErrorPropagates(t *testing.T) {
	sentinel := errors.New("db down")
	m := uowmock.Failing(sentinel)
	uc := NewUsecase(m, auth.ContextAuthorizer{}, auth.NewRegistrationPolicy(admin, nil), ledger.NewEngine(ledger.Config{}), nil)

	_, err := uc.Register(as(admin), tower(admin))
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, apperr.KindUnknown, apperr.KindOf(err))
	assert.Equal(t, 1, m.Transactions())
}

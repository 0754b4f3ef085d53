package mysql_test

import (
	"context"
	"errors"
	"testing"

	"tokenestate-backend/internal/adapter/repository/mysql"
	"tokenestate-backend/internal/domain/counter"
	"tokenestate-backend/internal/domain/event"
	"tokenestate-backend/internal/domain/loan"
	"tokenestate-backend/internal/domain/property"
	"tokenestate-backend/internal/testutil/testdb"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func strPtr(s string) *string { return &s }

func TestPropertyRepository_CreateGetTicker(t *testing.T) {
	db := testdb.Open(t)
	repo := mysql.NewPropertyRepository(db)
	ctx := context.Background()

	p := &property.Property{
		ID: 1, Builder: "GB", Name: "Tower A",
		Wanted: d(1_000_000), Have: d(250_000), TotalSupply: d(1000),
		Ticker: strPtr("TWA"),
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Tower A" || !got.TotalSupply.Equal(d(1000)) {
		t.Fatalf("unexpected property: %+v", got)
	}
	if _, err := repo.GetByID(ctx, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}

	ok, err := repo.ExistsByTicker(ctx, "TWA")
	if err != nil || !ok {
		t.Fatalf("ExistsByTicker(TWA) = %v, %v", ok, err)
	}
	ok, err = repo.ExistsByTicker(ctx, "NOPE")
	if err != nil || ok {
		t.Fatalf("ExistsByTicker(NOPE) = %v, %v", ok, err)
	}
}

func TestPropertyRepository_TickerUnique(t *testing.T) {
	db := testdb.Open(t)
	repo := mysql.NewPropertyRepository(db)
	ctx := context.Background()

	mk := func(id uint64, ticker *string) *property.Property {
		return &property.Property{
			ID: id, Builder: "GB", Name: "Tower",
			Wanted: d(300), Have: d(0), TotalSupply: d(31),
			Ticker: ticker,
		}
	}
	if err := repo.Create(ctx, mk(1, strPtr("TWA"))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, mk(2, strPtr("TWA"))); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("want ErrDuplicatedKey, got %v", err)
	}

	// untickered properties never collide
	for id := uint64(3); id <= 4; id++ {
		if err := repo.Create(ctx, mk(id, nil)); err != nil {
			t.Fatalf("Create(%d) without ticker: %v", id, err)
		}
	}
	var n int64
	if err := db.Model(&property.Property{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("rows = %d, want 3", n)
	}
}

func TestBalanceRepository_SparseUpsert(t *testing.T) {
	db := testdb.Open(t)
	repo := mysql.NewBalanceRepository(db)
	ctx := context.Background()

	got, err := repo.Get(ctx, "alice", 7)
	if err != nil || !got.IsZero() {
		t.Fatalf("missing entry: %s, %v", got, err)
	}

	if err := repo.Set(ctx, "alice", 7, d(40)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set(ctx, "alice", 7, d(55)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if err := repo.Set(ctx, "bob", 7, d(5)); err != nil {
		t.Fatalf("Set bob: %v", err)
	}
	if got, _ := repo.Get(ctx, "alice", 7); !got.Equal(d(55)) {
		t.Fatalf("alice = %s, want 55", got)
	}

	if err := repo.Set(ctx, "bob", 7, decimal.Zero); err != nil {
		t.Fatalf("Set zero: %v", err)
	}
	rows, err := repo.ListByProperty(ctx, 7)
	if err != nil {
		t.Fatalf("ListByProperty: %v", err)
	}
	if len(rows) != 1 || rows[0].Holder != "alice" {
		t.Fatalf("zero entry must be removed, got %+v", rows)
	}
}

func TestCounterRepository_Next(t *testing.T) {
	db := testdb.Open(t)
	repo := mysql.NewCounterRepository(db)
	ctx := context.Background()

	for want := uint64(1); want <= 4; want++ {
		got, err := repo.Next(ctx, counter.Property)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != want {
			t.Fatalf("Next = %d, want %d", got, want)
		}
	}
	// sequences are independent
	if got, _ := repo.Next(ctx, counter.Borrow); got != 1 {
		t.Fatalf("borrow Next = %d, want 1", got)
	}
	if got, _ := repo.Next(ctx, counter.Property); got != 5 {
		t.Fatalf("property Next after borrow = %d, want 5", got)
	}

	var c counter.Counter
	if err := db.Where("name = ?", counter.Property).First(&c).Error; err != nil {
		t.Fatal(err)
	}
	if c.Next != 6 {
		t.Fatalf("stored next = %d, want 6", c.Next)
	}
}

func TestLoanRepository_InvestmentsKeepFirstOrder(t *testing.T) {
	db := testdb.Open(t)
	repo := mysql.NewLoanRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &loan.Loan{
		ID: 1, PropertyID: 1, Builder: "GB",
		RequestedAmount: d(300), RepaymentAmount: d(330),
		Price: d(1), Percentual: d(0), TotalSupply: d(1000),
		Status: loan.StatusOpen,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, step := range []struct {
		who string
		amt int64
	}{{"bob", 50}, {"alice", 100}, {"bob", 150}} {
		if err := repo.AddInvestment(ctx, 1, step.who, d(step.amt)); err != nil {
			t.Fatalf("AddInvestment(%s): %v", step.who, err)
		}
	}

	list, err := repo.ListInvestments(ctx, 1)
	if err != nil {
		t.Fatalf("ListInvestments: %v", err)
	}
	if len(list) != 2 || list[0].Investor != "bob" || list[1].Investor != "alice" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if !list[0].Amount.Equal(d(200)) {
		t.Fatalf("bob = %s, want 200", list[0].Amount)
	}
	total, err := repo.TotalInvested(ctx, 1)
	if err != nil || !total.Equal(d(300)) {
		t.Fatalf("TotalInvested = %s, %v", total, err)
	}
	if _, err := repo.GetInvestment(ctx, 1, "carol"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}

func TestLoanRepository_Collateral(t *testing.T) {
	db := testdb.Open(t)
	repo := mysql.NewLoanRepository(db)
	ctx := context.Background()

	if _, err := repo.GetCollateral(ctx, 9); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
	c := &loan.Collateral{LoanID: 9, PropertyID: 1, Amount: d(31)}
	if err := repo.CreateCollateral(ctx, c); err != nil {
		t.Fatalf("CreateCollateral: %v", err)
	}
	at := int64(1_700_000_000)
	c.Locked, c.LockedAt = true, &at
	if err := repo.SaveCollateral(ctx, c); err != nil {
		t.Fatalf("SaveCollateral: %v", err)
	}
	got, err := repo.GetCollateral(ctx, 9)
	if err != nil {
		t.Fatalf("GetCollateral: %v", err)
	}
	if !got.Locked || got.Settled || got.LockedAt == nil || *got.LockedAt != at {
		t.Fatalf("unexpected collateral: %+v", got)
	}
}

func TestEventRepository_AppendAndList(t *testing.T) {
	db := testdb.Open(t)
	repo := mysql.NewEventRepository(db)
	ctx := context.Background()

	var b event.Batch
	if err := b.Record(event.TopicLoanCreated, 3, map[string]any{"builder": "GB"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Record(event.TopicInvestmentMade, 3, map[string]any{"investor": "alice", "amount": "10"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Flush(ctx, repo); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	all, err := repo.ListBySubject(ctx, "", 3)
	if err != nil {
		t.Fatalf("ListBySubject: %v", err)
	}
	if len(all) != 2 || all[0].Topic != event.TopicLoanCreated || all[1].Topic != event.TopicInvestmentMade {
		t.Fatalf("unexpected events: %+v", all)
	}
	only, _ := repo.ListBySubject(ctx, event.TopicInvestmentMade, 3)
	if len(only) != 1 {
		t.Fatalf("topic filter: got %d events", len(only))
	}
}

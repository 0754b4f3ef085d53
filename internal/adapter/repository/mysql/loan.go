package mysql

import (
	"context"
	"errors"

	loanDomain "tokenestate-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) AddInvestment(ctx context.Context, loanID uint64, investor string, amount decimal.Decimal) error {
	db := r.db.WithContext(ctx)
	var cur loanDomain.Investment
	res := forUpdate(db).Where("loan_id = ? AND investor = ?", loanID, investor).First(&cur)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return db.Create(&loanDomain.Investment{LoanID: loanID, Investor: investor, Amount: amount}).Error
	}
	if res.Error != nil {
		return res.Error
	}
	return db.Model(&cur).Update("amount", cur.Amount.Add(amount)).Error
}

func (r *LoanRepository) GetInvestment(ctx context.Context, loanID uint64, investor string) (*loanDomain.Investment, error) {
	var out loanDomain.Investment
	res := r.db.WithContext(ctx).Where("loan_id = ? AND investor = ?", loanID, investor).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListInvestments(ctx context.Context, loanID uint64) ([]loanDomain.Investment, error) {
	var out []loanDomain.Investment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// TotalInvested sums in Go; SQL SUM over decimal(39,0) is not exact on every driver.
func (r *LoanRepository) TotalInvested(ctx context.Context, loanID uint64) (decimal.Decimal, error) {
	invs, err := r.ListInvestments(ctx, loanID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, in := range invs {
		total = total.Add(in.Amount)
	}
	return total, nil
}

func (r *LoanRepository) CreateCollateral(ctx context.Context, c *loanDomain.Collateral) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *LoanRepository) GetCollateral(ctx context.Context, loanID uint64) (*loanDomain.Collateral, error) {
	var out loanDomain.Collateral
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) SaveCollateral(ctx context.Context, c *loanDomain.Collateral) error {
	return r.db.WithContext(ctx).Save(c).Error
}

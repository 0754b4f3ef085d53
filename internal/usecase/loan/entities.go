package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateBorrowInput struct {
	Builder      string `json:"builder"`
	PropertyID   uint64 `json:"property_id"`
	DurationDays uint32 `json:"duration_days"`
	APYBps       uint32 `json:"apy_bps"`
	// Optional overrides. RequestedAmount defaults to the property's funding
	// gap (wanted - have); CollateralAmount to the units it covers.
	RequestedAmount  *decimal.Decimal `json:"requested_amount,omitempty"`
	CollateralAmount *decimal.Decimal `json:"collateral_amount,omitempty"`
}

type InvestInput struct {
	Investor string          `json:"investor"`
	LoanID   uint64          `json:"loan_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type LoanDTO struct {
	ID              uint64          `json:"id"`
	PropertyID      uint64          `json:"property_id"`
	Builder         string          `json:"builder"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	RepaymentAmount decimal.Decimal `json:"repayment_amount"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	DurationDays    uint32          `json:"duration_days"`
	MaturityAt      int64           `json:"maturity_at"`
	APYBps          uint32          `json:"apy_bps"`
	Price           decimal.Decimal `json:"price"`
	Percentual      decimal.Decimal `json:"percentual"`
	TotalSupply     decimal.Decimal `json:"total_supply"`
	Status          string          `json:"status"`
	StatusUpdatedAt int64           `json:"status_updated_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

type InvestmentDTO struct {
	LoanID   uint64          `json:"loan_id"`
	Investor string          `json:"investor"`
	Amount   decimal.Decimal `json:"amount"`
}

type InvestResultDTO struct {
	InvestmentDTO
	TotalInvested decimal.Decimal `json:"total_invested"`
	Status        string          `json:"status"`
}

type CollateralDTO struct {
	LoanID     uint64          `json:"loan_id"`
	PropertyID uint64          `json:"property_id"`
	Amount     decimal.Decimal `json:"amount"`
	Locked     bool            `json:"locked"`
	Settled    bool            `json:"settled"`
	LockedAt   *int64          `json:"locked_at,omitempty"`
	SettledAt  *int64          `json:"settled_at,omitempty"`
}

type PayoutDTO struct {
	Investor string          `json:"investor"`
	Amount   decimal.Decimal `json:"amount"`
}

type DefaultResultDTO struct {
	Loan    LoanDTO     `json:"loan"`
	Payouts []PayoutDTO `json:"payouts"`
}

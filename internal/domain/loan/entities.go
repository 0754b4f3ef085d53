package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusFunded    Status = "funded"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
)

var transitions = map[Status][]Status{
	StatusOpen:   {StatusFunded},
	StatusFunded: {StatusRepaid, StatusDefaulted},
}

// CanTransitionTo reports whether the lifecycle allows s -> next.
// Repaid and defaulted are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool { return len(transitions[s]) == 0 }

// Loan is the borrow request and the loan it becomes once funded. Terms are
// copied from the property at creation and never re-derived.
type Loan struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement:false;column:id" json:"id"`
	PropertyID      uint64          `gorm:"not null;index;column:property_id" json:"property_id"`
	Builder         string          `gorm:"size:64;not null;index;column:builder" json:"builder"`
	RequestedAmount decimal.Decimal `gorm:"type:decimal(39,0);not null;column:requested_amount" json:"requested_amount"`
	RepaymentAmount decimal.Decimal `gorm:"type:decimal(39,0);not null;column:repayment_amount" json:"repayment_amount"`
	DurationDays    uint32          `gorm:"not null;column:duration_days" json:"duration_days"`
	MaturityAt      int64           `gorm:"not null;column:maturity_at" json:"maturity_at"`
	APYBps          uint32          `gorm:"not null;column:apy_bps" json:"apy_bps"`
	Price           decimal.Decimal `gorm:"type:decimal(39,0);not null;column:price" json:"price"`
	Percentual      decimal.Decimal `gorm:"type:decimal(39,0);not null;column:percentual" json:"percentual"`
	TotalSupply     decimal.Decimal `gorm:"type:decimal(39,0);not null;column:total_supply" json:"total_supply"`
	Status          Status          `gorm:"size:16;not null;default:'open';index;column:status" json:"status"`
	StatusUpdatedAt int64           `gorm:"not null;column:status_updated_at" json:"status_updated_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Investment is one investor's cumulative contribution to a loan. ID keeps
// first-investment order.
type Investment struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement;column:id" json:"-"`
	LoanID    uint64          `gorm:"not null;uniqueIndex:ux_investments_loan_investor;column:loan_id" json:"loan_id"`
	Investor  string          `gorm:"size:64;not null;uniqueIndex:ux_investments_loan_investor;column:investor" json:"investor"`
	Amount    decimal.Decimal `gorm:"type:decimal(39,0);not null;column:amount" json:"amount"`
	CreatedAt time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Investment) TableName() string { return "investments" }

// Collateral is the escrow record of a loan. Locked and Settled each flip
// false -> true at most once.
type Collateral struct {
	LoanID     uint64          `gorm:"primaryKey;autoIncrement:false;column:loan_id" json:"loan_id"`
	PropertyID uint64          `gorm:"not null;column:property_id" json:"property_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(39,0);not null;column:amount" json:"amount"`
	Locked     bool            `gorm:"not null;default:false;column:locked" json:"locked"`
	Settled    bool            `gorm:"not null;default:false;column:settled" json:"settled"`
	LockedAt   *int64          `gorm:"column:locked_at" json:"locked_at,omitempty"`
	SettledAt  *int64          `gorm:"column:settled_at" json:"settled_at,omitempty"`
}

func (Collateral) TableName() string { return "collateral" }

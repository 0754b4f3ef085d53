package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is one (holder, property) entry. Zero balances are not stored.
type Balance struct {
	Holder     string          `gorm:"primaryKey;size:64;column:holder" json:"holder"`
	PropertyID uint64          `gorm:"primaryKey;autoIncrement:false;index;column:property_id" json:"property_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(39,0);not null;column:amount" json:"amount"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Balance) TableName() string { return "balances" }

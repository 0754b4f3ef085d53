package property

import (
	"time"

	"github.com/shopspring/decimal"

	"tokenestate-backend/pkg/units"
)

// Property is a tokenized real-world asset. Rows are written once at
// registration and never updated; ownership changes live in the ledger.
type Property struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement:false;column:id" json:"id"`
	Builder     string          `gorm:"size:64;not null;index;column:builder" json:"builder"`
	Name        string          `gorm:"size:255;not null;column:name" json:"name"`
	Wanted      decimal.Decimal `gorm:"type:decimal(39,0);not null;column:wanted" json:"wanted"`
	Have        decimal.Decimal `gorm:"type:decimal(39,0);not null;column:have" json:"have"`
	TotalSupply decimal.Decimal `gorm:"type:decimal(39,0);not null;column:total_supply" json:"total_supply"`
	BuilderName string          `gorm:"size:255;column:builder_name" json:"builder_name"`
	ExternalRef string          `gorm:"type:text;column:external_ref" json:"external_ref"`
	Ticker      *string         `gorm:"size:16;uniqueIndex;column:ticker" json:"ticker,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Property) TableName() string { return "properties" }

// Price is the valuation per unit: wanted / total_supply, truncated.
func (p Property) Price() decimal.Decimal { return units.Quo(p.Wanted, p.TotalSupply) }

// Percentual is have / wanted, truncated.
func (p Property) Percentual() decimal.Decimal { return units.Quo(p.Have, p.Wanted) }

// UnitsFor converts an investment into the number of units it covers at this
// property's valuation. It avoids dividing by a truncated price.
func (p Property) UnitsFor(investment decimal.Decimal) decimal.Decimal {
	return units.MulDiv(investment, p.TotalSupply, p.Wanted)
}

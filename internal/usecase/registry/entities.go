package registry

import (
	"time"

	"github.com/shopspring/decimal"
)

type RegisterInput struct {
	Builder     string          `json:"builder"`
	Name        string          `json:"name"`
	Wanted      decimal.Decimal `json:"wanted"`
	Have        decimal.Decimal `json:"have"`
	TotalSupply decimal.Decimal `json:"total_supply"`
	BuilderName string          `json:"builder_name"`
	ExternalRef string          `json:"external_ref"`
	Ticker      string          `json:"ticker"`
}

type PropertyDTO struct {
	ID          uint64          `json:"id"`
	Builder     string          `json:"builder"`
	Name        string          `json:"name"`
	Wanted      decimal.Decimal `json:"wanted"`
	Have        decimal.Decimal `json:"have"`
	TotalSupply decimal.Decimal `json:"total_supply"`
	BuilderName string          `json:"builder_name"`
	ExternalRef string          `json:"external_ref"`
	Ticker      string          `json:"ticker"`
	CreatedAt   time.Time       `json:"created_at"`
}

type QuoteDTO struct {
	PropertyID uint64          `json:"property_id"`
	Price      decimal.Decimal `json:"price"`
	Percentual decimal.Decimal `json:"percentual"`
}

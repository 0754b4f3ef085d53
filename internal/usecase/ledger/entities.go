package ledger

import "github.com/shopspring/decimal"

type TransferInput struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	PropertyID uint64          `json:"property_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type ReceiptDTO struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	PropertyID uint64          `json:"property_id"`
	Amount     decimal.Decimal `json:"amount"`
	Fee        decimal.Decimal `json:"fee"`
	Net        decimal.Decimal `json:"net"`
}

type BalanceDTO struct {
	Holder     string          `json:"holder"`
	PropertyID uint64          `json:"property_id"`
	Amount     decimal.Decimal `json:"amount"`
}

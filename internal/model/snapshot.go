package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProviderShare is one LP ledger entry inside a snapshot.
type ProviderShare struct {
	Provider string          `json:"provider"`
	Shares   decimal.Decimal `json:"shares"`
}

// PoolSnapshot captures one pool's full state for external persistence.
type PoolSnapshot struct {
	Asset        Asset           `json:"asset"`
	ReserveBase  decimal.Decimal `json:"reserve_base"`
	ReserveQuote decimal.Decimal `json:"reserve_quote"`
	FeeRate      decimal.Decimal `json:"fee_rate"`
	TotalShares  decimal.Decimal `json:"total_shares"`
	Providers    []ProviderShare `json:"providers"`
	TakenAt      time.Time       `json:"taken_at"`
}

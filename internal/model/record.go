package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind classifies a history entry.
type RecordKind string

const (
	KindBuy             RecordKind = "buy"
	KindSell            RecordKind = "sell"
	KindAddLiquidity    RecordKind = "add_liquidity"
	KindRemoveLiquidity RecordKind = "remove_liquidity"
)

// IsSwap reports whether the record moved value through a swap rather than
// a liquidity operation. Only swap records count toward volume.
func (k RecordKind) IsSwap() bool {
	return k == KindBuy || k == KindSell
}

// SwapRecord is an immutable history entry. Records are append-only; the
// core never mutates or deletes them.
type SwapRecord struct {
	Kind         RecordKind      `json:"kind"`
	User         string          `json:"user"`
	InputAsset   Asset           `json:"input_asset"`
	InputAmount  decimal.Decimal `json:"input_amount"`
	OutputAsset  Asset           `json:"output_asset"`
	OutputAmount decimal.Decimal `json:"output_amount"`
	Fee          decimal.Decimal `json:"fee"`
	PriceImpact  decimal.Decimal `json:"price_impact"`
	Timestamp    time.Time       `json:"timestamp"`
	Reference    string          `json:"reference"`
}

// ImpactLevel buckets a quote's price impact for display warnings.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// Quote prices a prospective swap without mutating any pool.
type Quote struct {
	InputAsset      Asset           `json:"input_asset"`
	InputAmount     decimal.Decimal `json:"input_amount"`
	OutputAsset     Asset           `json:"output_asset"`
	OutputAmount    decimal.Decimal `json:"output_amount"`
	EffectiveRate   decimal.Decimal `json:"effective_rate"`
	PriceImpact     decimal.Decimal `json:"price_impact"`
	ImpactLevel     ImpactLevel     `json:"impact_level,omitempty"`
	MinimumReceived decimal.Decimal `json:"minimum_received"`
	Fee             decimal.Decimal `json:"fee"`
}

// AddLiquidityResult reports the amounts actually credited after any ratio
// adjustment, plus the shares minted for them.
type AddLiquidityResult struct {
	ActualAmountBase  decimal.Decimal `json:"actual_amount_base"`
	ActualAmountQuote decimal.Decimal `json:"actual_amount_quote"`
	SharesMinted      decimal.Decimal `json:"shares_minted"`
	PoolShare         decimal.Decimal `json:"pool_share"`
	Reference         string          `json:"reference"`
	Timestamp         time.Time       `json:"timestamp"`
}

// RemoveLiquidityResult reports the amounts paid out for burned shares.
type RemoveLiquidityResult struct {
	AmountBase   decimal.Decimal `json:"amount_base"`
	AmountQuote  decimal.Decimal `json:"amount_quote"`
	SharesBurned decimal.Decimal `json:"shares_burned"`
	Reference    string          `json:"reference"`
	Timestamp    time.Time       `json:"timestamp"`
}

// PricePoint is one execution-price observation derived from history.
type PricePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}

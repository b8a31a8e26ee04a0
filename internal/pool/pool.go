// Package pool implements a constant-product liquidity pool: swap pricing
// and execution, proportional liquidity provisioning, and LP share
// accounting. All token arithmetic uses decimal fixed-point values.
package pool

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"nthExchange/internal/model"
)

// Config seeds a pool. The base side always holds the platform token; the
// quote side holds the counter asset the pool is named after.
type Config struct {
	QuoteAsset        model.Asset
	ReserveBase       decimal.Decimal
	ReserveQuote      decimal.Decimal
	FeeRate           decimal.Decimal
	SlippageTolerance decimal.Decimal
	RatioTolerance    decimal.Decimal
}

// Pool holds one pair's reserves, fee parameters, and LP share ledger.
// Every mutation runs under the write lock; reads take the read lock, so
// callers always observe a consistent snapshot. A pool lives for the
// process lifetime and is never destroyed.
type Pool struct {
	mu sync.RWMutex

	quoteAsset        model.Asset
	reserveBase       decimal.Decimal
	reserveQuote      decimal.Decimal
	feeRate           decimal.Decimal
	slippageTolerance decimal.Decimal
	ratioTolerance    decimal.Decimal

	ledger      map[string]decimal.Decimal
	totalShares decimal.Decimal

	logger *zap.Logger
	now    func() time.Time
}

// New constructs a pool from seed reserves. Seeded reserves carry no share
// supply; the first liquidity provider sets the opening share scale.
func New(cfg Config, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pool{
		quoteAsset:        cfg.QuoteAsset,
		reserveBase:       cfg.ReserveBase,
		reserveQuote:      cfg.ReserveQuote,
		feeRate:           cfg.FeeRate,
		slippageTolerance: cfg.SlippageTolerance,
		ratioTolerance:    cfg.RatioTolerance,
		ledger:            make(map[string]decimal.Decimal),
		totalShares:       decimal.Zero,
		logger:            logger.With(zap.String("pool", cfg.QuoteAsset.String())),
		now:               time.Now,
	}
}

// QuoteAsset returns the counter asset this pool trades against NTH.
func (p *Pool) QuoteAsset() model.Asset {
	return p.quoteAsset
}

// Price returns the current quote-per-base price, or zero for a drained
// pool.
func (p *Pool) Price() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.reserveBase.Sign() <= 0 {
		return decimal.Zero
	}
	return p.reserveQuote.Div(p.reserveBase)
}

// K returns the reserve product.
func (p *Pool) K() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.reserveBase.Mul(p.reserveQuote)
}

// Reserves returns the base and quote reserves.
func (p *Pool) Reserves() (base, quote decimal.Decimal) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.reserveBase, p.reserveQuote
}

// SharesOf returns a provider's LP share balance, zero if absent.
func (p *Pool) SharesOf(provider string) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.ledger[provider]
}

// TotalShares returns the outstanding LP share supply.
func (p *Pool) TotalShares() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.totalShares
}

// ProviderCount returns the number of ledger entries.
func (p *Pool) ProviderCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.ledger)
}

// SlippageTolerance returns the tolerance applied to minimum-received.
func (p *Pool) SlippageTolerance() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.slippageTolerance
}

// SetSlippageTolerance updates the tolerance; it must lie in [0, 0.2].
func (p *Pool) SetSlippageTolerance(tolerance decimal.Decimal) error {
	if tolerance.Sign() < 0 || tolerance.GreaterThan(decimal.NewFromFloat(0.2)) {
		return fmt.Errorf("%w: slippage tolerance must be between 0 and 0.2, got %s",
			model.ErrInvalidAmount, tolerance)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.slippageTolerance = tolerance
	return nil
}

// Snapshot captures the pool's full state for external persistence.
func (p *Pool) Snapshot() model.PoolSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	providers := make([]model.ProviderShare, 0, len(p.ledger))
	for provider, shares := range p.ledger {
		providers = append(providers, model.ProviderShare{Provider: provider, Shares: shares})
	}
	sort.Slice(providers, func(i, j int) bool {
		return providers[i].Provider < providers[j].Provider
	})

	return model.PoolSnapshot{
		Asset:        p.quoteAsset,
		ReserveBase:  p.reserveBase,
		ReserveQuote: p.reserveQuote,
		FeeRate:      p.feeRate,
		TotalShares:  p.totalShares,
		Providers:    providers,
		TakenAt:      p.now().UTC(),
	}
}

// Package exchange routes quotes, swaps, and liquidity operations to the
// pool registered for each counter asset, and keeps the shared swap
// history those pools feed.
package exchange

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"nthExchange/internal/model"
	"nthExchange/internal/pool"
)

// HistorySink receives every committed record, typically for durable
// append-only storage. Sink failures are logged, never propagated: the
// swap has already committed.
type HistorySink interface {
	Append(records []model.SwapRecord) error
}

// Observer receives committed records and pool gauge updates.
type Observer interface {
	ObserveRecord(record model.SwapRecord)
	ObservePool(snapshot model.PoolSnapshot)
}

// Seed describes one pool at process start.
type Seed struct {
	Asset          model.Asset
	ReserveBase    decimal.Decimal
	ReserveQuote   decimal.Decimal
	ReferencePrice decimal.Decimal
}

// Config carries exchange-wide pricing parameters and pool seeds.
type Config struct {
	FeeRate           decimal.Decimal
	SlippageTolerance decimal.Decimal
	RatioTolerance    decimal.Decimal
	MediumImpact      decimal.Decimal
	HighImpact        decimal.Decimal
	Seeds             []Seed
}

// Exchange owns one pool per counter asset. It is the only registry: the
// host constructs it once and passes it by handle, no package globals.
type Exchange struct {
	pools        map[model.Asset]*pool.Pool
	refPrices    map[model.Asset]decimal.Decimal
	mediumImpact decimal.Decimal
	highImpact   decimal.Decimal

	mu      sync.Mutex
	history []model.SwapRecord

	sink     HistorySink
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes an Exchange.
type Option func(*Exchange)

// WithHistorySink attaches a durable sink for committed records.
func WithHistorySink(sink HistorySink) Option {
	return func(e *Exchange) { e.sink = sink }
}

// WithObserver attaches a metrics observer.
func WithObserver(observer Observer) Option {
	return func(e *Exchange) { e.observer = observer }
}

// New builds the exchange and its pools from seeds.
func New(cfg Config, logger *zap.Logger, opts ...Option) (*Exchange, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Seeds) == 0 {
		return nil, fmt.Errorf("at least one pool seed is required")
	}

	e := &Exchange{
		pools:        make(map[model.Asset]*pool.Pool, len(cfg.Seeds)),
		refPrices:    make(map[model.Asset]decimal.Decimal, len(cfg.Seeds)),
		mediumImpact: cfg.MediumImpact,
		highImpact:   cfg.HighImpact,
		logger:       logger,
		now:          time.Now,
	}

	for _, seed := range cfg.Seeds {
		if seed.Asset == model.AssetUnknown || seed.Asset == model.AssetNTH {
			return nil, fmt.Errorf("%w: %s cannot seed a pool", model.ErrUnsupportedAsset, seed.Asset)
		}
		if _, exists := e.pools[seed.Asset]; exists {
			return nil, fmt.Errorf("duplicate pool seed for %s", seed.Asset)
		}
		e.pools[seed.Asset] = pool.New(pool.Config{
			QuoteAsset:        seed.Asset,
			ReserveBase:       seed.ReserveBase,
			ReserveQuote:      seed.ReserveQuote,
			FeeRate:           cfg.FeeRate,
			SlippageTolerance: cfg.SlippageTolerance,
			RatioTolerance:    cfg.RatioTolerance,
		}, logger)
		e.refPrices[seed.Asset] = seed.ReferencePrice
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Pool returns the pool registered for a counter asset.
func (e *Exchange) Pool(asset model.Asset) (*pool.Pool, error) {
	p, ok := e.pools[asset]
	if !ok {
		return nil, fmt.Errorf("%w: no pool for %s", model.ErrUnsupportedAsset, asset)
	}
	return p, nil
}

// QuoteBuy prices buying NTH by spending the counter asset.
func (e *Exchange) QuoteBuy(asset model.Asset, amount decimal.Decimal) (model.Quote, error) {
	p, err := e.Pool(asset)
	if err != nil {
		return model.Quote{}, err
	}
	q, err := p.Quote(asset, amount)
	if err != nil {
		return model.Quote{}, err
	}
	q.ImpactLevel = e.classifyImpact(q.PriceImpact)
	return q, nil
}

// QuoteSell prices selling NTH for the counter asset.
func (e *Exchange) QuoteSell(asset model.Asset, amount decimal.Decimal) (model.Quote, error) {
	p, err := e.Pool(asset)
	if err != nil {
		return model.Quote{}, err
	}
	q, err := p.Quote(model.AssetNTH, amount)
	if err != nil {
		return model.Quote{}, err
	}
	q.ImpactLevel = e.classifyImpact(q.PriceImpact)
	return q, nil
}

// Buy executes a buy of NTH with the counter asset and records it.
func (e *Exchange) Buy(asset model.Asset, amount decimal.Decimal, user string) (model.SwapRecord, error) {
	p, err := e.Pool(asset)
	if err != nil {
		return model.SwapRecord{}, err
	}
	record, err := p.Swap(asset, amount, user)
	if err != nil {
		return model.SwapRecord{}, err
	}
	e.append(record, p)
	return record, nil
}

// Sell executes a sale of NTH for the counter asset and records it.
func (e *Exchange) Sell(asset model.Asset, amount decimal.Decimal, user string) (model.SwapRecord, error) {
	p, err := e.Pool(asset)
	if err != nil {
		return model.SwapRecord{}, err
	}
	record, err := p.Swap(model.AssetNTH, amount, user)
	if err != nil {
		return model.SwapRecord{}, err
	}
	e.append(record, p)
	return record, nil
}

// AddLiquidity routes a contribution to the asset's pool and records it.
func (e *Exchange) AddLiquidity(asset model.Asset, amountBase, amountQuote decimal.Decimal, provider string) (model.AddLiquidityResult, error) {
	p, err := e.Pool(asset)
	if err != nil {
		return model.AddLiquidityResult{}, err
	}
	result, err := p.AddLiquidity(amountBase, amountQuote, provider)
	if err != nil {
		return model.AddLiquidityResult{}, err
	}
	e.append(model.SwapRecord{
		Kind:         model.KindAddLiquidity,
		User:         provider,
		InputAsset:   asset,
		InputAmount:  result.ActualAmountQuote,
		OutputAsset:  model.AssetNTH,
		OutputAmount: result.ActualAmountBase,
		Timestamp:    result.Timestamp,
		Reference:    result.Reference,
	}, p)
	return result, nil
}

// RemoveLiquidity routes a withdrawal to the asset's pool and records it.
func (e *Exchange) RemoveLiquidity(asset model.Asset, shares decimal.Decimal, provider string) (model.RemoveLiquidityResult, error) {
	p, err := e.Pool(asset)
	if err != nil {
		return model.RemoveLiquidityResult{}, err
	}
	result, err := p.RemoveLiquidity(shares, provider)
	if err != nil {
		return model.RemoveLiquidityResult{}, err
	}
	e.append(model.SwapRecord{
		Kind:         model.KindRemoveLiquidity,
		User:         provider,
		InputAsset:   asset,
		InputAmount:  result.AmountQuote,
		OutputAsset:  model.AssetNTH,
		OutputAmount: result.AmountBase,
		Timestamp:    result.Timestamp,
		Reference:    result.Reference,
	}, p)
	return result, nil
}

func (e *Exchange) classifyImpact(impact decimal.Decimal) model.ImpactLevel {
	switch {
	case impact.GreaterThan(e.highImpact):
		return model.ImpactHigh
	case impact.GreaterThan(e.mediumImpact):
		return model.ImpactMedium
	default:
		return model.ImpactLow
	}
}

// append adds a record to the shared history and notifies sink and
// observer. The record has already committed, so sink errors only log.
func (e *Exchange) append(record model.SwapRecord, p *pool.Pool) {
	e.mu.Lock()
	e.history = append(e.history, record)
	e.mu.Unlock()

	if e.sink != nil {
		if err := e.sink.Append([]model.SwapRecord{record}); err != nil {
			e.logger.Error("history sink append failed",
				zap.String("reference", record.Reference), zap.Error(err))
		}
	}
	if e.observer != nil {
		e.observer.ObserveRecord(record)
		e.observer.ObservePool(p.Snapshot())
	}
}

// Snapshots captures every pool's state, sorted by asset. Each pool is
// snapshotted under its own lock; no two locks are held together.
func (e *Exchange) Snapshots() []model.PoolSnapshot {
	snapshots := make([]model.PoolSnapshot, 0, len(e.pools))
	for _, p := range e.pools {
		snapshots = append(snapshots, p.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Asset < snapshots[j].Asset
	})
	return snapshots
}

// History returns a copy of the shared record history.
func (e *Exchange) History() []model.SwapRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.SwapRecord, len(e.history))
	copy(out, e.history)
	return out
}

package exchange

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"nthExchange/internal/model"
)

const volumeWindow = 24 * time.Hour

var two = decimal.NewFromInt(2)

// AssetStats is the per-pool slice of a stats snapshot.
type AssetStats struct {
	Asset          model.Asset     `json:"asset"`
	Price          decimal.Decimal `json:"price"`
	ReserveBase    decimal.Decimal `json:"reserve_base"`
	ReserveQuote   decimal.Decimal `json:"reserve_quote"`
	TotalShares    decimal.Decimal `json:"total_shares"`
	Providers      int             `json:"providers"`
	Volume24h      decimal.Decimal `json:"volume_24h"`
	LiquidityValue decimal.Decimal `json:"liquidity_value"`
}

// StatsSnapshot aggregates every pool plus platform totals. Values are
// priced with the externally supplied reference prices; they are
// illustrative, not authoritative.
type StatsSnapshot struct {
	TakenAt        time.Time       `json:"taken_at"`
	Assets         []AssetStats    `json:"assets"`
	TotalLiquidity decimal.Decimal `json:"total_liquidity"`
	TotalVolume24h decimal.Decimal `json:"total_volume_24h"`
}

// Stats derives a read-only snapshot of every pool and the trailing 24h
// volume. It never mutates pool state or history, and holds at most one
// pool's lock at a time.
func (e *Exchange) Stats(now time.Time) StatsSnapshot {
	cutoff := now.Add(-volumeWindow)
	volumes := e.volumeSince(cutoff)

	snapshot := StatsSnapshot{
		TakenAt:        now.UTC(),
		Assets:         make([]AssetStats, 0, len(e.pools)),
		TotalLiquidity: decimal.Zero,
		TotalVolume24h: decimal.Zero,
	}

	for asset, p := range e.pools {
		base, quote := p.Reserves()
		ref := e.refPrices[asset]

		// Counter-side value doubled: the base side backs it one-to-one
		// at the pool price.
		liquidity := quote.Mul(ref).Mul(two)
		volume := volumes[asset].Mul(ref)

		snapshot.Assets = append(snapshot.Assets, AssetStats{
			Asset:          asset,
			Price:          p.Price(),
			ReserveBase:    base,
			ReserveQuote:   quote,
			TotalShares:    p.TotalShares(),
			Providers:      p.ProviderCount(),
			Volume24h:      volume,
			LiquidityValue: liquidity,
		})
		snapshot.TotalLiquidity = snapshot.TotalLiquidity.Add(liquidity)
		snapshot.TotalVolume24h = snapshot.TotalVolume24h.Add(volume)
	}

	sort.Slice(snapshot.Assets, func(i, j int) bool {
		return snapshot.Assets[i].Asset < snapshot.Assets[j].Asset
	})

	return snapshot
}

// volumeSince sums the counter-asset leg of swap records at or after the
// cutoff, keyed by counter asset.
func (e *Exchange) volumeSince(cutoff time.Time) map[model.Asset]decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()

	volumes := make(map[model.Asset]decimal.Decimal, len(e.pools))
	for _, record := range e.history {
		if !record.Kind.IsSwap() || record.Timestamp.Before(cutoff) {
			continue
		}
		switch record.Kind {
		case model.KindBuy:
			volumes[record.InputAsset] = volumes[record.InputAsset].Add(record.InputAmount)
		case model.KindSell:
			volumes[record.OutputAsset] = volumes[record.OutputAsset].Add(record.OutputAmount)
		}
	}
	return volumes
}

// PriceHistory lists execution prices (quote per base) for one pool's
// swaps at or after the cutoff, oldest first.
func (e *Exchange) PriceHistory(asset model.Asset, since time.Time) ([]model.PricePoint, error) {
	if _, err := e.Pool(asset); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var points []model.PricePoint
	for _, record := range e.history {
		if !record.Kind.IsSwap() || record.Timestamp.Before(since) {
			continue
		}

		var price decimal.Decimal
		switch {
		case record.Kind == model.KindBuy && record.InputAsset == asset:
			if record.OutputAmount.Sign() <= 0 {
				continue
			}
			price = record.InputAmount.Div(record.OutputAmount)
		case record.Kind == model.KindSell && record.OutputAsset == asset:
			if record.InputAmount.Sign() <= 0 {
				continue
			}
			price = record.OutputAmount.Div(record.InputAmount)
		default:
			continue
		}

		points = append(points, model.PricePoint{Timestamp: record.Timestamp, Price: price})
	}
	return points, nil
}

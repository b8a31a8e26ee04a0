// Package metrics exposes Prometheus instrumentation for the exchange.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nthExchange/internal/model"
)

// Metrics holds the exchange's Prometheus collectors. It satisfies
// exchange.Observer.
type Metrics struct {
	SwapsTotal       *prometheus.CounterVec
	SwapVolume       *prometheus.CounterVec
	SwapFees         *prometheus.CounterVec
	LiquidityAdds    *prometheus.CounterVec
	LiquidityRemoves *prometheus.CounterVec
	PoolReserves     *prometheus.GaugeVec
	ShareSupply      *prometheus.GaugeVec
}

// New registers the collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SwapsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exchange_swaps_total",
			Help: "Executed swaps by counter asset and kind.",
		}, []string{"asset", "kind"}),
		SwapVolume: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exchange_swap_volume",
			Help: "Swap input volume by input asset.",
		}, []string{"asset"}),
		SwapFees: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exchange_swap_fees",
			Help: "Fees charged on swap inputs by input asset.",
		}, []string{"asset"}),
		LiquidityAdds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exchange_liquidity_adds_total",
			Help: "Liquidity contributions by counter asset.",
		}, []string{"asset"}),
		LiquidityRemoves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exchange_liquidity_removes_total",
			Help: "Liquidity withdrawals by counter asset.",
		}, []string{"asset"}),
		PoolReserves: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "exchange_pool_reserves",
			Help: "Current pool reserves by counter asset and side.",
		}, []string{"asset", "side"}),
		ShareSupply: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "exchange_lp_share_supply",
			Help: "Outstanding LP shares by counter asset.",
		}, []string{"asset"}),
	}
}

// ObserveRecord counts one committed history record.
func (m *Metrics) ObserveRecord(record model.SwapRecord) {
	switch record.Kind {
	case model.KindBuy, model.KindSell:
		asset := counterAsset(record)
		m.SwapsTotal.WithLabelValues(asset, string(record.Kind)).Inc()
		m.SwapVolume.WithLabelValues(record.InputAsset.String()).Add(record.InputAmount.InexactFloat64())
		m.SwapFees.WithLabelValues(record.InputAsset.String()).Add(record.Fee.InexactFloat64())
	case model.KindAddLiquidity:
		m.LiquidityAdds.WithLabelValues(counterAsset(record)).Inc()
	case model.KindRemoveLiquidity:
		m.LiquidityRemoves.WithLabelValues(counterAsset(record)).Inc()
	}
}

// ObservePool refreshes gauges from a pool snapshot.
func (m *Metrics) ObservePool(snapshot model.PoolSnapshot) {
	asset := snapshot.Asset.String()
	m.PoolReserves.WithLabelValues(asset, "base").Set(snapshot.ReserveBase.InexactFloat64())
	m.PoolReserves.WithLabelValues(asset, "quote").Set(snapshot.ReserveQuote.InexactFloat64())
	m.ShareSupply.WithLabelValues(asset).Set(snapshot.TotalShares.InexactFloat64())
}

func counterAsset(record model.SwapRecord) string {
	if record.InputAsset == model.AssetNTH {
		return record.OutputAsset.String()
	}
	return record.InputAsset.String()
}

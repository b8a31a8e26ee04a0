package exchange

import (
	"testing"
	"time"

	"nthExchange/internal/model"
)

func TestStatsVolumeWindow(t *testing.T) {
	ex := newTestExchange(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ex.history = []model.SwapRecord{
		{
			Kind:        model.KindBuy,
			InputAsset:  model.AssetAVAX,
			InputAmount: dec("100"),
			OutputAsset: model.AssetNTH,
			Timestamp:   now.Add(-time.Hour),
			Reference:   "r1",
		},
		{
			// Outside the 24h window.
			Kind:        model.KindBuy,
			InputAsset:  model.AssetAVAX,
			InputAmount: dec("4000"),
			OutputAsset: model.AssetNTH,
			Timestamp:   now.Add(-25 * time.Hour),
			Reference:   "r2",
		},
		{
			Kind:         model.KindSell,
			InputAsset:   model.AssetNTH,
			OutputAsset:  model.AssetETH,
			OutputAmount: dec("2"),
			Timestamp:    now.Add(-2 * time.Hour),
			Reference:    "r3",
		},
		{
			// Liquidity records never count toward volume.
			Kind:        model.KindAddLiquidity,
			InputAsset:  model.AssetAVAX,
			InputAmount: dec("9999"),
			OutputAsset: model.AssetNTH,
			Timestamp:   now.Add(-time.Hour),
			Reference:   "r4",
		},
	}

	stats := ex.Stats(now)

	if len(stats.Assets) != 2 {
		t.Fatalf("asset count %d, want 2", len(stats.Assets))
	}

	avax, eth := stats.Assets[0], stats.Assets[1]
	if avax.Asset != model.AssetAVAX || eth.Asset != model.AssetETH {
		t.Fatalf("asset order mismatch: %s, %s", avax.Asset, eth.Asset)
	}

	// 100 avax * ref 30; the 25h-old buy and the liquidity record are
	// excluded.
	if !avax.Volume24h.Equal(dec("3000")) {
		t.Fatalf("avax volume mismatch: got %s, want 3000", avax.Volume24h)
	}
	// 2 eth * ref 3000.
	if !eth.Volume24h.Equal(dec("6000")) {
		t.Fatalf("eth volume mismatch: got %s, want 6000", eth.Volume24h)
	}
	if !stats.TotalVolume24h.Equal(dec("9000")) {
		t.Fatalf("total volume mismatch: got %s", stats.TotalVolume24h)
	}
}

func TestStatsLiquidityValuation(t *testing.T) {
	ex := newTestExchange(t)

	stats := ex.Stats(time.Now())

	// avax: 10000 * 30 * 2; eth: 1000 * 3000 * 2.
	avax, eth := stats.Assets[0], stats.Assets[1]
	if !avax.LiquidityValue.Equal(dec("600000")) {
		t.Fatalf("avax liquidity mismatch: got %s", avax.LiquidityValue)
	}
	if !eth.LiquidityValue.Equal(dec("6000000")) {
		t.Fatalf("eth liquidity mismatch: got %s", eth.LiquidityValue)
	}
	if !stats.TotalLiquidity.Equal(dec("6600000")) {
		t.Fatalf("total liquidity mismatch: got %s", stats.TotalLiquidity)
	}

	// Prices come straight from the reserves.
	if !avax.Price.Equal(dec("0.05")) {
		t.Fatalf("avax price mismatch: got %s", avax.Price)
	}
	if !eth.Price.Equal(dec("0.004")) {
		t.Fatalf("eth price mismatch: got %s", eth.Price)
	}
}

func TestStatsReadOnly(t *testing.T) {
	ex := newTestExchange(t)

	if _, err := ex.Buy(model.AssetAVAX, dec("100"), "user-1"); err != nil {
		t.Fatalf("buy: %v", err)
	}

	avaxPool, _ := ex.Pool(model.AssetAVAX)
	kBefore := avaxPool.K()
	historyBefore := len(ex.History())

	_ = ex.Stats(time.Now())

	if !avaxPool.K().Equal(kBefore) {
		t.Fatalf("stats mutated pool state")
	}
	if len(ex.History()) != historyBefore {
		t.Fatalf("stats mutated history")
	}
}

func TestPriceHistory(t *testing.T) {
	ex := newTestExchange(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ex.history = []model.SwapRecord{
		{
			Kind:         model.KindBuy,
			InputAsset:   model.AssetAVAX,
			InputAmount:  dec("100"),
			OutputAsset:  model.AssetNTH,
			OutputAmount: dec("2000"),
			Timestamp:    now.Add(-time.Hour),
			Reference:    "r1",
		},
		{
			Kind:         model.KindSell,
			InputAsset:   model.AssetNTH,
			InputAmount:  dec("1000"),
			OutputAsset:  model.AssetAVAX,
			OutputAmount: dec("48"),
			Timestamp:    now.Add(-30 * time.Minute),
			Reference:    "r2",
		},
		{
			// Different pool, excluded.
			Kind:         model.KindBuy,
			InputAsset:   model.AssetETH,
			InputAmount:  dec("1"),
			OutputAsset:  model.AssetNTH,
			OutputAmount: dec("240"),
			Timestamp:    now.Add(-time.Hour),
			Reference:    "r3",
		},
	}

	points, err := ex.PriceHistory(model.AssetAVAX, now.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("price history: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("point count %d, want 2", len(points))
	}
	if !points[0].Price.Equal(dec("0.05")) {
		t.Fatalf("buy price mismatch: got %s", points[0].Price)
	}
	if !points[1].Price.Equal(dec("0.048")) {
		t.Fatalf("sell price mismatch: got %s", points[1].Price)
	}

	if _, err := ex.PriceHistory(model.AssetNTH, now); err == nil {
		t.Fatalf("expected error for platform token")
	}
}

package pool

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"nthExchange/internal/model"
)

func drawAmount(t *rapid.T, label string, min, max float64) decimal.Decimal {
	f := rapid.Float64Range(min, max).Draw(t, label)
	return decimal.NewFromFloat(f)
}

// The reserve product must never decrease across any valid swap sequence.
func TestPropSwapKMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := New(Config{
			QuoteAsset:        model.AssetAVAX,
			ReserveBase:       drawAmount(t, "reserveBase", 1_000, 1_000_000),
			ReserveQuote:      drawAmount(t, "reserveQuote", 1_000, 1_000_000),
			FeeRate:           dec("0.003"),
			SlippageTolerance: dec("0.01"),
			RatioTolerance:    dec("0.01"),
		}, zap.NewNop())

		k := p.K()
		steps := rapid.IntRange(1, 25).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			asset := model.AssetAVAX
			if rapid.Bool().Draw(t, fmt.Sprintf("sell%d", i)) {
				asset = model.AssetNTH
			}
			amount := drawAmount(t, fmt.Sprintf("amount%d", i), 0.01, 50_000)

			outAsset := model.AssetNTH
			if asset == model.AssetNTH {
				outAsset = model.AssetAVAX
			}
			outReserve := reserveFor(p, outAsset)

			record, err := p.Swap(asset, amount, "prop-user")
			if err != nil {
				t.Fatalf("swap failed: %v", err)
			}

			// Output is strictly positive and strictly below the
			// pre-swap output reserve.
			if record.OutputAmount.Sign() <= 0 {
				t.Fatalf("non-positive output %s", record.OutputAmount)
			}
			if record.OutputAmount.GreaterThanOrEqual(outReserve) {
				t.Fatalf("output %s >= reserve %s", record.OutputAmount, outReserve)
			}

			next := p.K()
			if next.LessThan(k) {
				t.Fatalf("k decreased: %s < %s", next, k)
			}
			k = next
		}
	})
}

func reserveFor(p *Pool, asset model.Asset) decimal.Decimal {
	base, quote := p.Reserves()
	if asset == model.AssetNTH {
		return base
	}
	return quote
}

// The LP ledger must sum to the total share supply after any sequence of
// deposits and withdrawals.
func TestPropLedgerSumMatchesSupply(t *testing.T) {
	providers := []string{"alice", "bob", "carol"}

	rapid.Check(t, func(t *rapid.T) {
		p := New(Config{
			QuoteAsset:        model.AssetAVAX,
			ReserveBase:       decimal.Zero,
			ReserveQuote:      decimal.Zero,
			FeeRate:           dec("0.003"),
			SlippageTolerance: dec("0.01"),
			RatioTolerance:    dec("0.01"),
		}, zap.NewNop())

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			provider := rapid.SampledFrom(providers).Draw(t, fmt.Sprintf("provider%d", i))

			if rapid.Bool().Draw(t, fmt.Sprintf("deposit%d", i)) {
				base := drawAmount(t, fmt.Sprintf("base%d", i), 1, 10_000)
				quote := drawAmount(t, fmt.Sprintf("quote%d", i), 1, 10_000)
				if _, err := p.AddLiquidity(base, quote, provider); err != nil {
					t.Fatalf("add failed: %v", err)
				}
			} else {
				balance := p.SharesOf(provider)
				if balance.Sign() == 0 {
					continue
				}
				fraction := drawAmount(t, fmt.Sprintf("fraction%d", i), 0.1, 1.0)
				shares := balance.Mul(fraction).Truncate(8)
				if shares.Sign() <= 0 {
					continue
				}
				if _, err := p.RemoveLiquidity(shares, provider); err != nil {
					t.Fatalf("remove failed: %v", err)
				}
			}

			sum := decimal.Zero
			for _, name := range providers {
				sum = sum.Add(p.SharesOf(name))
			}
			if !sum.Equal(p.TotalShares()) {
				t.Fatalf("ledger sum %s != supply %s", sum, p.TotalShares())
			}
		}
	})
}

// Depositing and immediately withdrawing the minted shares returns the
// contribution within epsilon, absent intervening swaps.
func TestPropAddRemoveRoundTrip(t *testing.T) {
	epsilon := dec("0.00000001")

	rapid.Check(t, func(t *rapid.T) {
		p := New(Config{
			QuoteAsset:        model.AssetAVAX,
			ReserveBase:       decimal.Zero,
			ReserveQuote:      decimal.Zero,
			FeeRate:           dec("0.003"),
			SlippageTolerance: dec("0.01"),
			RatioTolerance:    dec("0.01"),
		}, zap.NewNop())

		base := drawAmount(t, "base", 1, 1_000_000)
		quote := drawAmount(t, "quote", 1, 1_000_000)

		added, err := p.AddLiquidity(base, quote, "alice")
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}

		removed, err := p.RemoveLiquidity(added.SharesMinted, "alice")
		if err != nil {
			t.Fatalf("remove failed: %v", err)
		}

		if removed.AmountBase.Sub(added.ActualAmountBase).Abs().GreaterThan(epsilon) {
			t.Fatalf("base round-trip drift: put %s, got %s", added.ActualAmountBase, removed.AmountBase)
		}
		if removed.AmountQuote.Sub(added.ActualAmountQuote).Abs().GreaterThan(epsilon) {
			t.Fatalf("quote round-trip drift: put %s, got %s", added.ActualAmountQuote, removed.AmountQuote)
		}
	})
}

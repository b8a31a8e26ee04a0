package pool

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"nthExchange/internal/model"
)

// shareScale is the number of fractional digits carried by minted shares.
const shareScale = 16

var hundred = decimal.NewFromInt(100)

// AddLiquidity credits proportional liquidity. The first deposit mints
// sqrt(base*quote) shares and implicitly sets the opening price. Later
// deposits are checked against the pool ratio: if the provided ratio
// deviates by more than the configured tolerance, the over-supplied side is
// shrunk to match — amounts are never adjusted upward, so a provider can
// never be credited for more than they submitted.
func (p *Pool) AddLiquidity(amountBase, amountQuote decimal.Decimal, provider string) (model.AddLiquidityResult, error) {
	if amountBase.Sign() <= 0 || amountQuote.Sign() <= 0 {
		return model.AddLiquidityResult{}, fmt.Errorf("%w: liquidity amounts must be positive",
			model.ErrInvalidAmount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	actualBase, actualQuote := amountBase, amountQuote

	var minted decimal.Decimal
	if p.totalShares.Sign() == 0 {
		minted = sqrtDecimal(actualBase.Mul(actualQuote))
		if minted.Sign() <= 0 {
			return model.AddLiquidityResult{}, fmt.Errorf("%w: initial amounts too small to mint shares",
				model.ErrInvalidAmount)
		}
	} else {
		if p.reserveBase.Sign() <= 0 || p.reserveQuote.Sign() <= 0 {
			return model.AddLiquidityResult{}, fmt.Errorf("%w: pool %s has shares but a depleted reserve",
				model.ErrInvariant, p.quoteAsset)
		}

		actualBase, actualQuote = p.fitToRatio(amountBase, amountQuote)

		mintBase, _ := actualBase.Mul(p.totalShares).QuoRem(p.reserveBase, shareScale)
		mintQuote, _ := actualQuote.Mul(p.totalShares).QuoRem(p.reserveQuote, shareScale)
		minted = decimal.Min(mintBase, mintQuote)
		if minted.Sign() <= 0 {
			return model.AddLiquidityResult{}, fmt.Errorf("%w: contribution too small to mint shares",
				model.ErrInvalidAmount)
		}
	}

	p.reserveBase = p.reserveBase.Add(actualBase)
	p.reserveQuote = p.reserveQuote.Add(actualQuote)
	p.totalShares = p.totalShares.Add(minted)
	p.ledger[provider] = p.ledger[provider].Add(minted)

	poolShare := minted.Div(p.totalShares).Mul(hundred)

	p.logger.Info("liquidity added",
		zap.String("provider", provider),
		zap.String("base", actualBase.String()),
		zap.String("quote", actualQuote.String()),
		zap.String("shares", minted.String()),
	)

	return model.AddLiquidityResult{
		ActualAmountBase:  actualBase,
		ActualAmountQuote: actualQuote,
		SharesMinted:      minted,
		PoolShare:         poolShare,
		Reference:         uuid.NewString(),
		Timestamp:         p.now().UTC(),
	}, nil
}

// fitToRatio shrinks the over-supplied side of a contribution so it matches
// the pool ratio within tolerance. Called with the write lock held and both
// reserves positive.
func (p *Pool) fitToRatio(amountBase, amountQuote decimal.Decimal) (base, quote decimal.Decimal) {
	currentRatio := p.reserveQuote.Div(p.reserveBase)
	providedRatio := amountQuote.Div(amountBase)

	deviation := providedRatio.Sub(currentRatio).Abs().Div(currentRatio)
	if deviation.LessThanOrEqual(p.ratioTolerance) {
		return amountBase, amountQuote
	}

	if providedRatio.GreaterThan(currentRatio) {
		adjusted := amountBase.Mul(currentRatio)
		p.logger.Info("ratio deviation, quote amount adjusted",
			zap.String("submitted", amountQuote.String()),
			zap.String("adjusted", adjusted.String()),
			zap.String("deviation", deviation.String()),
		)
		return amountBase, adjusted
	}

	adjusted := amountQuote.Div(currentRatio)
	p.logger.Info("ratio deviation, base amount adjusted",
		zap.String("submitted", amountBase.String()),
		zap.String("adjusted", adjusted.String()),
		zap.String("deviation", deviation.String()),
	)
	return adjusted, amountQuote
}

// RemoveLiquidity burns shares and pays out the proportional slice of both
// reserves. Burning the entire supply drains the pool to (0, 0); further
// swaps then fail with ErrNoLiquidity until liquidity is re-added.
func (p *Pool) RemoveLiquidity(shares decimal.Decimal, provider string) (model.RemoveLiquidityResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalShares.Sign() == 0 {
		return model.RemoveLiquidityResult{}, fmt.Errorf("%w: pool %s has no share supply",
			model.ErrNoLiquidity, p.quoteAsset)
	}

	balance := p.ledger[provider]
	if shares.Sign() <= 0 || shares.GreaterThan(balance) {
		return model.RemoveLiquidityResult{}, fmt.Errorf("%w: requested %s, balance %s",
			model.ErrInsufficientLPBalance, shares, balance)
	}

	share, _ := shares.QuoRem(p.totalShares, shareScale)
	amountBase := p.reserveBase.Mul(share)
	amountQuote := p.reserveQuote.Mul(share)

	// Burning the full supply pays out the full reserves exactly.
	if shares.Equal(p.totalShares) {
		amountBase = p.reserveBase
		amountQuote = p.reserveQuote
	}

	newBase := p.reserveBase.Sub(amountBase)
	newQuote := p.reserveQuote.Sub(amountQuote)
	if newBase.Sign() < 0 || newQuote.Sign() < 0 {
		return model.RemoveLiquidityResult{}, fmt.Errorf("%w: withdrawal exceeds reserves",
			model.ErrInvariant)
	}

	p.reserveBase = newBase
	p.reserveQuote = newQuote
	p.totalShares = p.totalShares.Sub(shares)

	remaining := balance.Sub(shares)
	if remaining.Sign() == 0 {
		delete(p.ledger, provider)
	} else {
		p.ledger[provider] = remaining
	}

	if p.totalShares.Sign() == 0 {
		p.logger.Warn("pool drained", zap.String("pool", p.quoteAsset.String()))
	}

	p.logger.Info("liquidity removed",
		zap.String("provider", provider),
		zap.String("base", amountBase.String()),
		zap.String("quote", amountQuote.String()),
		zap.String("shares", shares.String()),
	)

	return model.RemoveLiquidityResult{
		AmountBase:   amountBase,
		AmountQuote:  amountQuote,
		SharesBurned: shares,
		Reference:    uuid.NewString(),
		Timestamp:    p.now().UTC(),
	}, nil
}

// sqrtDecimal computes a square root with shareScale exact fractional
// digits: the value is scaled by 10^(2*shareScale), rooted as an integer,
// and scaled back. Deterministic, no float conversion.
func sqrtDecimal(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}
	scaled := d.Shift(2 * shareScale).BigInt()
	root := new(big.Int).Sqrt(scaled)
	return decimal.NewFromBigInt(root, -shareScale)
}

package pool

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"nthExchange/internal/model"
)

// outputScale is the number of fractional digits carried by swap outputs.
// The quotient is truncated, never rounded up, so the reserve product can
// only grow across a swap.
const outputScale = 16

var one = decimal.NewFromInt(1)

// swapPlan is a fully validated swap ready to commit.
type swapPlan struct {
	inputAsset      model.Asset
	outputAsset     model.Asset
	kind            model.RecordKind
	amountIn        decimal.Decimal
	amountInWithFee decimal.Decimal
	amountOut       decimal.Decimal
	fee             decimal.Decimal
	priceImpact     decimal.Decimal
}

// planSwap prices a swap against the current reserves. Callers must hold
// the lock in at least read mode.
func (p *Pool) planSwap(inputAsset model.Asset, amount decimal.Decimal) (swapPlan, error) {
	if amount.Sign() <= 0 {
		return swapPlan{}, fmt.Errorf("%w: input amount must be positive, got %s",
			model.ErrInvalidAmount, amount)
	}

	var plan swapPlan
	switch inputAsset {
	case p.quoteAsset:
		plan.inputAsset = p.quoteAsset
		plan.outputAsset = model.AssetNTH
		plan.kind = model.KindBuy
	case model.AssetNTH:
		plan.inputAsset = model.AssetNTH
		plan.outputAsset = p.quoteAsset
		plan.kind = model.KindSell
	default:
		return swapPlan{}, fmt.Errorf("%w: %s is not a side of the %s pool",
			model.ErrUnsupportedAsset, inputAsset, p.quoteAsset)
	}

	inputReserve, outputReserve := p.reserveQuote, p.reserveBase
	if plan.kind == model.KindSell {
		inputReserve, outputReserve = p.reserveBase, p.reserveQuote
	}

	if p.totalShares.Sign() == 0 && p.reserveBase.Sign() <= 0 && p.reserveQuote.Sign() <= 0 {
		return swapPlan{}, fmt.Errorf("%w: pool %s holds no reserves",
			model.ErrNoLiquidity, p.quoteAsset)
	}
	if inputReserve.Sign() <= 0 || outputReserve.Sign() <= 0 {
		return swapPlan{}, fmt.Errorf("%w: pool %s has a depleted reserve",
			model.ErrPoolExhausted, p.quoteAsset)
	}

	plan.amountIn = amount
	plan.amountInWithFee = amount.Mul(one.Sub(p.feeRate))
	plan.fee = amount.Mul(p.feeRate)

	numerator := plan.amountInWithFee.Mul(outputReserve)
	denominator := inputReserve.Add(plan.amountInWithFee)
	out, _ := numerator.QuoRem(denominator, outputScale)
	plan.amountOut = out

	if plan.amountOut.Sign() <= 0 {
		return swapPlan{}, fmt.Errorf("%w: input %s is too small to price",
			model.ErrInvalidAmount, amount)
	}

	// Impact is computed on the pre-fee amount; the discrepancy with the
	// fee-adjusted execution path is a documented simplification.
	plan.priceImpact = amount.Div(inputReserve.Add(amount))

	return plan, nil
}

// Quote prices a prospective swap without mutating the pool.
func (p *Pool) Quote(inputAsset model.Asset, amount decimal.Decimal) (model.Quote, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	plan, err := p.planSwap(inputAsset, amount)
	if err != nil {
		return model.Quote{}, err
	}

	return model.Quote{
		InputAsset:      plan.inputAsset,
		InputAmount:     plan.amountIn,
		OutputAsset:     plan.outputAsset,
		OutputAmount:    plan.amountOut,
		EffectiveRate:   plan.amountOut.Div(plan.amountIn),
		PriceImpact:     plan.priceImpact,
		MinimumReceived: plan.amountOut.Mul(one.Sub(p.slippageTolerance)),
		Fee:             plan.fee,
	}, nil
}

// Swap validates, then commits a swap in one atomic step: the fee-adjusted
// input is added to one reserve, the output subtracted from the other, and
// the record produced, all under the write lock. Nothing mutates if
// validation fails.
func (p *Pool) Swap(inputAsset model.Asset, amount decimal.Decimal, user string) (model.SwapRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	plan, err := p.planSwap(inputAsset, amount)
	if err != nil {
		return model.SwapRecord{}, err
	}

	newIn, newOut := p.commitReserves(plan)
	if newOut.Sign() < 0 {
		// Constant-product output is strictly below the reserve, so this
		// only fires on arithmetic gone wrong. Refuse to commit.
		return model.SwapRecord{}, fmt.Errorf("%w: output %s exceeds reserve",
			model.ErrReserveUnderflow, plan.amountOut)
	}
	if newIn.Sign() <= 0 {
		return model.SwapRecord{}, fmt.Errorf("%w: swap produced non-positive input reserve",
			model.ErrInvariant)
	}

	if plan.kind == model.KindBuy {
		p.reserveQuote, p.reserveBase = newIn, newOut
	} else {
		p.reserveBase, p.reserveQuote = newIn, newOut
	}

	record := model.SwapRecord{
		Kind:         plan.kind,
		User:         user,
		InputAsset:   plan.inputAsset,
		InputAmount:  plan.amountIn,
		OutputAsset:  plan.outputAsset,
		OutputAmount: plan.amountOut,
		Fee:          plan.fee,
		PriceImpact:  plan.priceImpact,
		Timestamp:    p.now().UTC(),
		Reference:    uuid.NewString(),
	}

	p.logger.Debug("swap executed",
		zap.String("kind", string(record.Kind)),
		zap.String("user", user),
		zap.String("in", plan.amountIn.String()),
		zap.String("out", plan.amountOut.String()),
		zap.String("fee", plan.fee.String()),
	)

	return record, nil
}

// commitReserves computes the post-swap input and output reserves without
// storing them.
func (p *Pool) commitReserves(plan swapPlan) (newIn, newOut decimal.Decimal) {
	inputReserve, outputReserve := p.reserveQuote, p.reserveBase
	if plan.kind == model.KindSell {
		inputReserve, outputReserve = p.reserveBase, p.reserveQuote
	}
	return inputReserve.Add(plan.amountInWithFee), outputReserve.Sub(plan.amountOut)
}

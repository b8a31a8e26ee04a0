package model

import "errors"

// Sentinel errors returned by the exchange core. Callers match them with
// errors.Is; detail is attached at the call site via fmt.Errorf("%w: ...").
var (
	// ErrInvalidAmount covers non-positive or otherwise unusable amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnsupportedAsset covers symbols outside the closed asset set.
	ErrUnsupportedAsset = errors.New("unsupported asset")

	// ErrPoolExhausted means an operation hit a pool with a degenerate
	// (non-positive) reserve on one side.
	ErrPoolExhausted = errors.New("pool exhausted")

	// ErrReserveUnderflow means a swap would drive a reserve below zero.
	ErrReserveUnderflow = errors.New("reserve underflow")

	// ErrInsufficientLPBalance means a provider asked to burn more shares
	// than they hold.
	ErrInsufficientLPBalance = errors.New("insufficient lp balance")

	// ErrNoLiquidity means the pool holds no reserves or no share supply.
	ErrNoLiquidity = errors.New("no liquidity")

	// ErrInvariant signals arithmetic produced a state the engine refuses
	// to commit (negative reserve, negative share count).
	ErrInvariant = errors.New("invariant violation")
)

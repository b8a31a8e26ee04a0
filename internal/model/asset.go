package model

import (
	"fmt"
	"strings"
)

// Asset identifies a token supported by the exchange. The set is closed:
// every pool pairs a counter asset against the platform token NTH.
type Asset uint8

const (
	AssetUnknown Asset = iota
	AssetNTH
	AssetAVAX
	AssetETH
)

// CounterAssets lists every asset that has a pool against NTH.
var CounterAssets = []Asset{AssetAVAX, AssetETH}

// ParseAsset resolves a case-insensitive symbol to an Asset.
func ParseAsset(symbol string) (Asset, error) {
	switch strings.ToLower(strings.TrimSpace(symbol)) {
	case "nth":
		return AssetNTH, nil
	case "avax":
		return AssetAVAX, nil
	case "eth":
		return AssetETH, nil
	default:
		return AssetUnknown, fmt.Errorf("%w: %q", ErrUnsupportedAsset, symbol)
	}
}

func (a Asset) String() string {
	switch a {
	case AssetNTH:
		return "nth"
	case AssetAVAX:
		return "avax"
	case AssetETH:
		return "eth"
	default:
		return "unknown"
	}
}

// MarshalText renders the lowercase symbol so assets serialize as strings
// in JSON records and API payloads.
func (a Asset) MarshalText() ([]byte, error) {
	if a == AssetUnknown {
		return nil, fmt.Errorf("%w: unknown asset", ErrUnsupportedAsset)
	}
	return []byte(a.String()), nil
}

func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

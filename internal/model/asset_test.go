package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAsset(t *testing.T) {
	cases := []struct {
		in   string
		want Asset
	}{
		{"nth", AssetNTH},
		{"avax", AssetAVAX},
		{"eth", AssetETH},
		{"AVAX", AssetAVAX},
		{"  Eth ", AssetETH},
	}

	for _, tc := range cases {
		got, err := ParseAsset(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseAssetUnknown(t *testing.T) {
	for _, in := range []string{"", "btc", "nthh"} {
		if _, err := ParseAsset(in); !errors.Is(err, ErrUnsupportedAsset) {
			t.Fatalf("parse %q: expected ErrUnsupportedAsset, got %v", in, err)
		}
	}
}

func TestAssetJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(AssetAVAX)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `"avax"` {
		t.Fatalf("marshal mismatch: got %s", b)
	}

	var decoded Asset
	if err := json.Unmarshal([]byte(`"ETH"`), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded != AssetETH {
		t.Fatalf("unmarshal mismatch: got %s", decoded)
	}

	if _, err := json.Marshal(AssetUnknown); err == nil {
		t.Fatalf("expected error marshaling unknown asset")
	}
}

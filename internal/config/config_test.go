package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("listen mismatch: %s", cfg.ListenAddr)
	}
	if cfg.FeeRate != 0.003 {
		t.Fatalf("fee rate mismatch: %v", cfg.FeeRate)
	}
	if cfg.MediumImpact != 0.005 || cfg.HighImpact != 0.02 {
		t.Fatalf("impact thresholds mismatch: %v / %v", cfg.MediumImpact, cfg.HighImpact)
	}
	if cfg.SnapshotInterval != time.Minute {
		t.Fatalf("snapshot interval mismatch: %v", cfg.SnapshotInterval)
	}
	if len(cfg.Pools) != 2 {
		t.Fatalf("default pool count %d, want 2", len(cfg.Pools))
	}
	if cfg.Pools[0].Asset != "avax" || cfg.Pools[1].Asset != "eth" {
		t.Fatalf("default pool assets mismatch: %+v", cfg.Pools)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
listen: ":9090"
fee-rate: 0.005
pools:
  - asset: avax
    reserve_base: 1000
    reserve_quote: 50
    reference_price: 25
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Fatalf("listen mismatch: %s", cfg.ListenAddr)
	}
	if cfg.FeeRate != 0.005 {
		t.Fatalf("fee rate mismatch: %v", cfg.FeeRate)
	}
	if len(cfg.Pools) != 1 || cfg.Pools[0].ReserveQuote != 50 {
		t.Fatalf("pools mismatch: %+v", cfg.Pools)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("fee-rate: 1.5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path, nil); err == nil {
		t.Fatalf("expected error for fee rate above 1")
	}
}

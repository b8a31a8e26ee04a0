package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// PoolSeed configures one pool's opening reserves and the external
// reference price used for stats valuation.
type PoolSeed struct {
	Asset          string  `mapstructure:"asset"`
	ReserveBase    float64 `mapstructure:"reserve_base"`
	ReserveQuote   float64 `mapstructure:"reserve_quote"`
	ReferencePrice float64 `mapstructure:"reference_price"`
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	ListenAddr        string
	FeeRate           float64
	SlippageTolerance float64
	RatioTolerance    float64
	MediumImpact      float64
	HighImpact        float64
	HistoryPath       string
	PGDSN             string
	SnapshotInterval  time.Duration
	LogLevel          string
	Pools             []PoolSeed
}

// DefaultSeeds mirror the exchange's launch pools: counter-asset reserves
// paired against the platform token.
func DefaultSeeds() []PoolSeed {
	return []PoolSeed{
		{Asset: "avax", ReserveBase: 200000, ReserveQuote: 10000, ReferencePrice: 30},
		{Asset: "eth", ReserveBase: 250000, ReserveQuote: 1000, ReferencePrice: 3000},
	}
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EXCHANGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", ":8080")
	v.SetDefault("fee-rate", 0.003)
	v.SetDefault("slippage-tolerance", 0.01)
	v.SetDefault("ratio-tolerance", 0.01)
	v.SetDefault("medium-impact", 0.005)
	v.SetDefault("high-impact", 0.02)
	v.SetDefault("history", "./data/history.jsonl")
	v.SetDefault("snapshot-interval", time.Minute)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		ListenAddr:        v.GetString("listen"),
		FeeRate:           v.GetFloat64("fee-rate"),
		SlippageTolerance: v.GetFloat64("slippage-tolerance"),
		RatioTolerance:    v.GetFloat64("ratio-tolerance"),
		MediumImpact:      v.GetFloat64("medium-impact"),
		HighImpact:        v.GetFloat64("high-impact"),
		HistoryPath:       v.GetString("history"),
		PGDSN:             v.GetString("pg-dsn"),
		SnapshotInterval:  v.GetDuration("snapshot-interval"),
		LogLevel:          v.GetString("log-level"),
	}

	if v.IsSet("pools") {
		if err := v.UnmarshalKey("pools", &cfg.Pools); err != nil {
			return Config{}, fmt.Errorf("parse pools: %w", err)
		}
	}
	if len(cfg.Pools) == 0 {
		cfg.Pools = DefaultSeeds()
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.FeeRate < 0 || c.FeeRate >= 1 {
		return fmt.Errorf("fee rate must be in [0, 1), got %v", c.FeeRate)
	}
	if c.SlippageTolerance < 0 || c.SlippageTolerance > 0.2 {
		return fmt.Errorf("slippage tolerance must be in [0, 0.2], got %v", c.SlippageTolerance)
	}
	if c.MediumImpact <= 0 || c.HighImpact <= c.MediumImpact {
		return fmt.Errorf("impact thresholds must satisfy 0 < medium < high, got %v / %v",
			c.MediumImpact, c.HighImpact)
	}
	for _, seed := range c.Pools {
		if seed.ReserveBase <= 0 || seed.ReserveQuote <= 0 {
			return fmt.Errorf("pool %s seed reserves must be positive", seed.Asset)
		}
	}
	return nil
}

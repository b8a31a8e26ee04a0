package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nthExchange/internal/config"
	"nthExchange/internal/exchange"
	"nthExchange/internal/metrics"
	"nthExchange/internal/model"
	"nthExchange/internal/server"
	"nthExchange/internal/storage"
	"nthExchange/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "exchange",
		Short:        "Constant-product token exchange",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the exchange HTTP server",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Float64("fee-rate", 0.003, "swap fee rate")
	serveCmd.Flags().Float64("slippage-tolerance", 0.01, "slippage tolerance for minimum-received")
	serveCmd.Flags().Float64("ratio-tolerance", 0.01, "allowed liquidity ratio deviation")
	serveCmd.Flags().Float64("medium-impact", 0.005, "medium price-impact threshold")
	serveCmd.Flags().Float64("high-impact", 0.02, "high price-impact threshold")
	serveCmd.Flags().String("history", "./data/history.jsonl", "swap history JSONL path")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for snapshots (optional)")
	serveCmd.Flags().Duration("snapshot-interval", time.Minute, "pool snapshot interval")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a swap against the seed reserves",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("asset", "", "counter asset symbol")
	quoteCmd.Flags().String("side", "buy", "buy or sell")
	quoteCmd.Flags().String("amount", "", "input amount")
	quoteCmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	observer := metrics.New(registry)

	sinks := storage.Fanout{storage.NewJsonlHistory(cfg.HistoryPath)}

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, &pgHistory{store: store})
	}

	ex, err := exchange.New(exchangeConfig(cfg), logger,
		exchange.WithHistorySink(sinks),
		exchange.WithObserver(observer),
	)
	if err != nil {
		return err
	}

	if store != nil {
		go snapshotLoop(ctx, ex, store, cfg.SnapshotInterval, logger)
	}

	logger.Info("exchange start",
		zap.String("listen", cfg.ListenAddr),
		zap.Float64("fee_rate", cfg.FeeRate),
		zap.Int("pools", len(cfg.Pools)),
		zap.String("history", cfg.HistoryPath),
		zap.Bool("postgres", store != nil),
	)

	return server.New(cfg.ListenAddr, ex, logger, registry).Run(ctx)
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	assetStr, _ := cmd.Flags().GetString("asset")
	side, _ := cmd.Flags().GetString("side")
	amountStr, _ := cmd.Flags().GetString("amount")

	asset, err := model.ParseAsset(assetStr)
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}

	ex, err := exchange.New(exchangeConfig(cfg), logger)
	if err != nil {
		return err
	}

	var quote model.Quote
	switch side {
	case "buy":
		quote, err = ex.QuoteBuy(asset, amount)
	case "sell":
		quote, err = ex.QuoteSell(asset, amount)
	default:
		return fmt.Errorf("side must be buy or sell, got %q", side)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(quote, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// exchangeConfig converts loaded config into engine parameters. Asset
// symbols were validated at parse time; unknown symbols fail in New.
func exchangeConfig(cfg config.Config) exchange.Config {
	seeds := make([]exchange.Seed, 0, len(cfg.Pools))
	for _, seed := range cfg.Pools {
		asset, err := model.ParseAsset(seed.Asset)
		if err != nil {
			asset = model.AssetUnknown
		}
		seeds = append(seeds, exchange.Seed{
			Asset:          asset,
			ReserveBase:    decimal.NewFromFloat(seed.ReserveBase),
			ReserveQuote:   decimal.NewFromFloat(seed.ReserveQuote),
			ReferencePrice: decimal.NewFromFloat(seed.ReferencePrice),
		})
	}

	return exchange.Config{
		FeeRate:           decimal.NewFromFloat(cfg.FeeRate),
		SlippageTolerance: decimal.NewFromFloat(cfg.SlippageTolerance),
		RatioTolerance:    decimal.NewFromFloat(cfg.RatioTolerance),
		MediumImpact:      decimal.NewFromFloat(cfg.MediumImpact),
		HighImpact:        decimal.NewFromFloat(cfg.HighImpact),
		Seeds:             seeds,
	}
}

// snapshotLoop periodically persists every pool's state.
func snapshotLoop(ctx context.Context, ex *exchange.Exchange, store *postgres.Store, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := store.UpsertSnapshots(snapCtx, ex.Snapshots())
			cancel()
			if err != nil {
				logger.Error("snapshot upsert failed", zap.Error(err))
			}
		}
	}
}

// pgHistory adapts the Postgres store to the history sink interface.
type pgHistory struct {
	store *postgres.Store
}

func (h *pgHistory) Append(records []model.SwapRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return h.store.InsertRecords(ctx, records)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

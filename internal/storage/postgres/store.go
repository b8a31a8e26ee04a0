package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nthExchange/internal/model"
)

// Store provides Postgres persistence for pool snapshots and the swap
// history tail.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertSnapshots inserts or updates one row per pool.
func (s *Store) UpsertSnapshots(ctx context.Context, snapshots []model.PoolSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		providers, err := json.Marshal(snap.Providers)
		if err != nil {
			return fmt.Errorf("marshal providers: %w", err)
		}
		batch.Queue(`
			INSERT INTO pool_snapshots (
				asset, reserve_base, reserve_quote, fee_rate, total_shares, providers, taken_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (asset)
			DO UPDATE SET
				reserve_base = EXCLUDED.reserve_base,
				reserve_quote = EXCLUDED.reserve_quote,
				fee_rate = EXCLUDED.fee_rate,
				total_shares = EXCLUDED.total_shares,
				providers = EXCLUDED.providers,
				taken_at = EXCLUDED.taken_at,
				updated_at = now()
		`,
			snap.Asset.String(),
			snap.ReserveBase.String(),
			snap.ReserveQuote.String(),
			snap.FeeRate.String(),
			snap.TotalShares.String(),
			providers,
			snap.TakenAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertRecords appends history records, skipping references already
// stored.
func (s *Store) InsertRecords(ctx context.Context, records []model.SwapRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO swap_history (
				reference, kind, user_id, input_asset, input_amount,
				output_asset, output_amount, fee, price_impact, executed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (reference) DO NOTHING
		`,
			record.Reference,
			string(record.Kind),
			record.User,
			record.InputAsset.String(),
			record.InputAmount.String(),
			record.OutputAsset.String(),
			record.OutputAmount.String(),
			record.Fee.String(),
			record.PriceImpact.String(),
			record.Timestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

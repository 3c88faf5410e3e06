package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tickermap/mapping"
	"tickermap/storage"
	"tickermap/ticker"
)

// MappingStore is a PostgreSQL implementation of storage.MappingStore.
// Rows live in ticker_mappings, one per reference ticker.
type MappingStore struct {
	pool *Pool
}

// NewMappingStore creates a new PostgreSQL mapping store.
func NewMappingStore(pool *Pool) *MappingStore {
	return &MappingStore{pool: pool}
}

var _ storage.MappingStore = (*MappingStore)(nil)

// Load returns every row ordered by reference ticker.
func (s *MappingStore) Load(ctx context.Context) (*mapping.Mapping, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT reference_ticker, status, target_ticker, secondary_ticker
		FROM ticker_mappings
		ORDER BY reference_ticker COLLATE "C"
	`)
	if err != nil {
		return nil, fmt.Errorf("query ticker mappings: %w", err)
	}
	defer rows.Close()

	m := mapping.New()
	for rows.Next() {
		var (
			reference, status string
			target, secondary *string
		)
		if err := rows.Scan(&reference, &status, &target, &secondary); err != nil {
			return nil, fmt.Errorf("scan ticker mapping: %w", err)
		}
		rec, err := decodeRecord(reference, status, deref(target))
		if err != nil {
			return nil, err
		}
		m.Put(rec.WithSecondary(deref(secondary)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticker mappings: %w", err)
	}

	if m.Len() == 0 {
		return nil, storage.ErrNotFound
	}
	return m, nil
}

// Save upserts every record in one transaction.
func (s *MappingStore) Save(ctx context.Context, m *mapping.Mapping) error {
	if m == nil {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range m.Records() {
		batch.Queue(`
			INSERT INTO ticker_mappings (reference_ticker, status, target_ticker, secondary_ticker, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (reference_ticker) DO UPDATE
			SET status = EXCLUDED.status,
			    target_ticker = EXCLUDED.target_ticker,
			    secondary_ticker = EXCLUDED.secondary_ticker,
			    updated_at = NOW()
			WHERE ticker_mappings.status IS DISTINCT FROM EXCLUDED.status
			   OR ticker_mappings.target_ticker IS DISTINCT FROM EXCLUDED.target_ticker
			   OR ticker_mappings.secondary_ticker IS DISTINCT FROM EXCLUDED.secondary_ticker
		`, rec.Reference, rec.Status.String(), nullable(rec.Target), nullable(rec.Secondary))
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert ticker mappings: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ticker mappings: %w", err)
	}
	return nil
}

func decodeRecord(reference, status, target string) (ticker.Record, error) {
	st, ok := ticker.ParseStatus(status)
	if !ok {
		return ticker.Record{}, fmt.Errorf("%w: unknown status %q for %s", storage.ErrInvalidInput, status, reference)
	}
	switch st {
	case ticker.StatusResolved:
		return ticker.Resolved(reference, target), nil
	case ticker.StatusUnsupported:
		return ticker.Unsupported(reference), nil
	case ticker.StatusNotFound:
		return ticker.NotFound(reference), nil
	case ticker.StatusTimedOut:
		return ticker.TimedOut(reference), nil
	default:
		return ticker.Unresolved(reference), nil
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

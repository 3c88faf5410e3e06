package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tickermap/scraper"
	"tickermap/storage"
)

// CompanyStore is a PostgreSQL implementation of storage.CompanyStore.
type CompanyStore struct {
	pool *Pool
}

// NewCompanyStore creates a new PostgreSQL company store.
func NewCompanyStore(pool *Pool) *CompanyStore {
	return &CompanyStore{pool: pool}
}

var _ storage.CompanyStore = (*CompanyStore)(nil)

// References returns the stored reference tickers.
func (s *CompanyStore) References(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT reference_ticker FROM companies`)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	refs := make(map[string]struct{})
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs[ref] = struct{}{}
	}
	return refs, rows.Err()
}

// Append inserts companies, skipping references already stored.
func (s *CompanyStore) Append(ctx context.Context, companies []scraper.Company) error {
	for _, c := range companies {
		if c.Reference == "" {
			return storage.ErrInvalidInput
		}
	}
	if len(companies) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range companies {
		batch.Queue(`
			INSERT INTO companies (reference_ticker, company_name, address, sector, industry, found, scraped_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (reference_ticker) DO NOTHING
		`, c.Reference, nullable(c.Name), nullable(c.Address), nullable(c.Sector), nullable(c.Industry), c.Found)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert companies: %w", err)
	}
	return nil
}

// All returns every stored company in insertion order.
func (s *CompanyStore) All(ctx context.Context) ([]scraper.Company, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT reference_ticker, company_name, address, sector, industry, found
		FROM companies
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var companies []scraper.Company
	for rows.Next() {
		var (
			c                               scraper.Company
			name, address, sector, industry *string
		)
		if err := rows.Scan(&c.Reference, &name, &address, &sector, &industry, &c.Found); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		c.Name, c.Address, c.Sector, c.Industry = deref(name), deref(address), deref(sector), deref(industry)
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

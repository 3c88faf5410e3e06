package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"tickermap/scraper"
	"tickermap/storage"
)

var companyHeader = []string{"company_name", "address", "sector", "industry", ColumnReference}

// CompanyFile is a storage.CompanyStore backed by one CSV file.
// Rows are appended; the file is rewritten atomically on each Append.
type CompanyFile struct {
	mu   sync.Mutex
	path string
}

// NewCompanyFile returns a store for the file at path.
func NewCompanyFile(path string) *CompanyFile {
	return &CompanyFile{path: path}
}

var _ storage.CompanyStore = (*CompanyFile)(nil)

// References returns the reference tickers already in the file.
func (f *CompanyFile) References(ctx context.Context) (map[string]struct{}, error) {
	all, err := f.All(ctx)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]struct{}, len(all))
	for _, c := range all {
		refs[c.Reference] = struct{}{}
	}
	return refs, nil
}

// All reads every company. A missing file holds none.
func (f *CompanyFile) All(_ context.Context) ([]scraper.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *CompanyFile) read() ([]scraper.Company, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open company data: %w", err)
	}
	defer file.Close()

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	ref, ok := cols[ColumnReference]
	if !ok {
		return nil, fmt.Errorf("%w: company data has no %s column", storage.ErrInvalidInput, ColumnReference)
	}

	var companies []scraper.Company
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read company data: %w", err)
		}
		c := scraper.Company{
			Reference: field(row, ref),
			Name:      field(row, col(cols, "company_name")),
			Address:   field(row, col(cols, "address")),
			Sector:    field(row, col(cols, "sector")),
			Industry:  field(row, col(cols, "industry")),
		}
		if c.Reference == "" {
			continue
		}
		c.Found = c.Complete()
		companies = append(companies, c)
	}
	return companies, nil
}

// Append adds companies whose reference is not in the file yet.
func (f *CompanyFile) Append(_ context.Context, companies []scraper.Company) error {
	for _, c := range companies {
		if c.Reference == "" {
			return storage.ErrInvalidInput
		}
	}
	if len(companies) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	existing, err := f.read()
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(existing)+len(companies))
	for _, c := range existing {
		seen[c.Reference] = struct{}{}
	}
	for _, c := range companies {
		if _, ok := seen[c.Reference]; ok {
			continue
		}
		seen[c.Reference] = struct{}{}
		existing = append(existing, c)
	}

	return writeAtomic(f.path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(companyHeader); err != nil {
			return err
		}
		for _, c := range existing {
			if err := cw.Write([]string{c.Name, c.Address, c.Sector, c.Industry, c.Reference}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// Package csvfile stores the ticker mapping and company data as CSV files.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tickermap/mapping"
	"tickermap/storage"
	"tickermap/ticker"
)

// Mapping file columns.
const (
	ColumnReference = "reference_ticker"
	ColumnTarget    = "target_ticker"
	ColumnSecondary = "secondary_ticker"
)

// Sentinels written in place of a ticker.
const (
	SentinelUnsupported = "UNSUPPORTED"
	SentinelNotFound    = "NOT_FOUND"
	SentinelTimedOut    = "TIMED_OUT"

	legacyNotFound = "SYMBOL_NOT_FOUND"
	legacyTimeout  = "TIMEOUT"
)

// Older files named the columns after the providers.
var columnAliases = map[string]string{
	"bloomberg_ticker": ColumnReference,
	"alpha_vantage":    ColumnTarget,
	"yahoo":            ColumnSecondary,
}

// MappingFile is a storage.MappingStore backed by one CSV file.
type MappingFile struct {
	path string
}

// NewMappingFile returns a store for the file at path.
func NewMappingFile(path string) *MappingFile {
	return &MappingFile{path: path}
}

var _ storage.MappingStore = (*MappingFile)(nil)

// Path returns the file path.
func (f *MappingFile) Path() string {
	return f.path
}

// Load reads the mapping. A missing file yields storage.ErrNotFound.
func (f *MappingFile) Load(_ context.Context) (*mapping.Mapping, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open mapping: %w", err)
	}
	defer file.Close()

	return ReadMapping(file)
}

// ReadMapping decodes a mapping CSV.
func ReadMapping(r io.Reader) (*mapping.Mapping, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return mapping.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := columnIndex(header)
	ref, ok := cols[ColumnReference]
	if !ok {
		return nil, fmt.Errorf("%w: mapping has no %s column", storage.ErrInvalidInput, ColumnReference)
	}
	target, hasTarget := cols[ColumnTarget]
	secondary, hasSecondary := cols[ColumnSecondary]

	m := mapping.New()
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		reference := field(row, ref)
		if reference == "" {
			continue
		}
		rec := ticker.Unresolved(reference)
		if hasTarget {
			rec = decodeTarget(reference, field(row, target))
		}
		if hasSecondary {
			rec = rec.WithSecondary(decodeSecondary(field(row, secondary)))
		}
		m.Put(rec)
	}
	return m, nil
}

// Save writes the mapping sorted by reference, replacing the file atomically.
func (f *MappingFile) Save(_ context.Context, m *mapping.Mapping) error {
	if m == nil {
		return storage.ErrInvalidInput
	}
	return writeAtomic(f.path, func(w io.Writer) error {
		return WriteMapping(w, m)
	})
}

// WriteMapping encodes m sorted by reference.
func WriteMapping(w io.Writer, m *mapping.Mapping) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnReference, ColumnTarget, ColumnSecondary}); err != nil {
		return err
	}
	for _, rec := range m.Sorted() {
		if err := cw.Write([]string{rec.Reference, encodeTarget(rec), encodeSecondary(rec.Secondary)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func decodeTarget(reference, s string) ticker.Record {
	switch s {
	case "", legacyNotFound:
		return ticker.Unresolved(reference)
	case SentinelUnsupported:
		return ticker.Unsupported(reference)
	case SentinelNotFound:
		return ticker.NotFound(reference)
	case SentinelTimedOut, legacyTimeout:
		return ticker.TimedOut(reference)
	default:
		return ticker.Resolved(reference, s)
	}
}

func encodeTarget(rec ticker.Record) string {
	switch rec.Status {
	case ticker.StatusResolved:
		return rec.Target
	case ticker.StatusUnsupported:
		return SentinelUnsupported
	case ticker.StatusNotFound:
		return SentinelNotFound
	case ticker.StatusTimedOut:
		return SentinelTimedOut
	default:
		return ""
	}
}

func decodeSecondary(s string) string {
	if s == SentinelNotFound || s == legacyNotFound {
		return ""
	}
	return s
}

func encodeSecondary(s string) string {
	if s == "" {
		return SentinelNotFound
	}
	return s
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

// col returns the index of name, or -1.
func col(cols map[string]int, name string) int {
	if i, ok := cols[name]; ok {
		return i
	}
	return -1
}

func field(row []string, i int) string {
	if i >= 0 && i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// writeAtomic writes through a temp file in the target directory and
// renames it over path, so readers never see a partial file.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

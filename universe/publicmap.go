package universe

import (
	"context"
	"strings"
)

const secondaryColumn = "yahoo"

// Known defects in the public map's secondary column.
var secondaryFixes = map[string]string{
	"BT/A.L": "BT-A.L",
}

// PublicMap is the public reference-to-secondary ticker table.
type PublicMap struct {
	source
}

// NewPublicMap returns a map reading the bloomberg_ticker and yahoo columns of
// the CSV at url.
func NewPublicMap(url string, opts ...Option) *PublicMap {
	return &PublicMap{source: newSource(url, opts)}
}

// Table is a loaded public map.
type Table struct {
	// References lists the reference tickers in file order.
	References []string
	// Secondary maps reference to secondary ticker; rows without one are absent.
	Secondary map[string]string
}

// Load downloads and cleans the map. The first row for a reference wins.
func (p *PublicMap) Load(ctx context.Context) (Table, error) {
	rows, err := p.table(ctx, referenceColumn, secondaryColumn)
	if err != nil {
		return Table{}, err
	}

	t := Table{Secondary: make(map[string]string, len(rows))}
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		ref, sec := row[0], CleanSecondary(row[1])
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		t.References = append(t.References, ref)
		if sec != "" {
			t.Secondary[ref] = sec
		}
	}

	p.logger.Info("public ticker map loaded",
		"url", p.url,
		"references", len(t.References),
		"with_secondary", len(t.Secondary),
	)
	return t, nil
}

// CleanSecondary repairs the formatting defects known in the public map.
func CleanSecondary(s string) string {
	s = strings.ReplaceAll(s, "/.", ".")
	if fixed, ok := secondaryFixes[s]; ok {
		return fixed
	}
	return s
}

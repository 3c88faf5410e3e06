package mapping

import (
	"fmt"

	"tickermap/ticker"
)

// Coverage counts how many rows carry a usable ticker in each column.
type Coverage struct {
	Total     int
	Target    int
	Secondary int
	ByStatus  map[ticker.Status]int
}

// Stats computes the coverage of m.
func Stats(m *Mapping) Coverage {
	c := Coverage{Total: m.Len(), ByStatus: make(map[ticker.Status]int)}
	for _, r := range m.records {
		c.ByStatus[r.Status]++
		if r.Target != "" {
			c.Target++
		}
		if r.Secondary != "" {
			c.Secondary++
		}
	}
	return c
}

// Describe renders the coverage line for one column, e.g.
// "target covers 93.10% (12 of 174 tickers unavailable)".
func (c Coverage) Describe(column string, found int) string {
	if c.Total == 0 {
		return fmt.Sprintf("%s covers 0.00%%", column)
	}
	missing := c.Total - found
	pct := 100 * float64(found) / float64(c.Total)
	if missing == 0 {
		return fmt.Sprintf("%s covers %.2f%%", column, pct)
	}
	return fmt.Sprintf("%s covers %.2f%% (%d of %d tickers unavailable)", column, pct, missing, c.Total)
}

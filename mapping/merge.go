package mapping

import "tickermap/ticker"

// Merge folds the records of a fresh run into the previous mapping.
//
// For a reference present in both, the previous record wins when its status
// is stable (RESOLVED, UNSUPPORTED, NOT_FOUND); otherwise the fresh record is
// adopted, which may again be TIMED_OUT. The result holds every reference of
// both inputs exactly once: previous order first, then fresh-only references.
// Neither input is modified.
func Merge(previous, fresh *Mapping) *Mapping {
	out := New()

	for _, prev := range previous.records {
		if prev.Status.Stable() {
			out.Put(prev)
			continue
		}
		if cur, ok := fresh.Get(prev.Reference); ok {
			out.Put(cur)
			continue
		}
		out.Put(prev)
	}

	for _, cur := range fresh.records {
		if !out.Has(cur.Reference) {
			out.Put(cur)
		}
	}

	return out
}

// Seed inserts every reference of the universe feed that m does not know yet
// as an UNRESOLVED row. It returns the number of rows inserted.
func Seed(m *Mapping, universe []string) int {
	added := 0
	for _, ref := range universe {
		if ref == "" || m.Has(ref) {
			continue
		}
		m.Put(ticker.Unresolved(ref))
		added++
	}
	return added
}

// AttachSecondary left-merges the secondary ticker table into m. References
// missing from the table keep the secondary value they already have.
func AttachSecondary(m *Mapping, table map[string]string) int {
	attached := 0
	for i, r := range m.records {
		secondary, ok := table[r.Reference]
		if !ok || secondary == "" {
			continue
		}
		m.records[i] = r.WithSecondary(secondary)
		attached++
	}
	return attached
}

// Package mapping holds the ticker mapping table and the operations that
// carry it from one run to the next.
package mapping

import (
	"sort"

	"tickermap/ticker"
)

// Mapping is an ordered set of records keyed by reference ticker.
// The zero value is not usable; call New.
type Mapping struct {
	index   map[string]int
	records []ticker.Record
}

// New returns an empty mapping.
func New() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// FromRecords builds a mapping; a later record replaces an earlier one with
// the same reference.
func FromRecords(records []ticker.Record) *Mapping {
	m := New()
	for _, r := range records {
		m.Put(r)
	}
	return m
}

// Put inserts r or replaces the record with the same reference, keeping the
// position where the reference was first seen.
func (m *Mapping) Put(r ticker.Record) {
	if i, ok := m.index[r.Reference]; ok {
		m.records[i] = r
		return
	}
	m.index[r.Reference] = len(m.records)
	m.records = append(m.records, r)
}

// Get returns the record for reference.
func (m *Mapping) Get(reference string) (ticker.Record, bool) {
	i, ok := m.index[reference]
	if !ok {
		return ticker.Record{}, false
	}
	return m.records[i], true
}

// Has reports whether reference is in the mapping.
func (m *Mapping) Has(reference string) bool {
	_, ok := m.index[reference]
	return ok
}

// Len returns the number of records.
func (m *Mapping) Len() int {
	return len(m.records)
}

// Keys returns references in insertion order.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.records))
	for i, r := range m.records {
		keys[i] = r.Reference
	}
	return keys
}

// Records returns a copy of the records in insertion order.
func (m *Mapping) Records() []ticker.Record {
	out := make([]ticker.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Sorted returns a copy of the records ordered by reference.
func (m *Mapping) Sorted() []ticker.Record {
	out := m.Records()
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })
	return out
}

// Clone returns an independent copy.
func (m *Mapping) Clone() *Mapping {
	return FromRecords(m.records)
}

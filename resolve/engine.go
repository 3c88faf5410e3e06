// Package resolve applies the market suffix rules to a whole mapping.
package resolve

import (
	"tickermap/mapping"
	"tickermap/market"
	"tickermap/ticker"
)

// Resolve maps a single reference ticker by its market code. Deny-listed and
// unknown markets are UNSUPPORTED.
func Resolve(reference string) ticker.Record {
	rule := market.SuffixFor(reference)
	if rule.Kind != market.Mapped {
		return ticker.Unsupported(reference)
	}
	root, _ := ticker.Split(reference)
	return ticker.Resolved(reference, market.Normalize(root+rule.Suffix))
}

// Engine resolves every pending row of a mapping in one pass.
type Engine struct {
	// DeferUnknown leaves rows with an unknown market code UNRESOLVED and
	// reports them in Result.Deferred instead of marking them UNSUPPORTED.
	DeferUnknown bool
}

// Result is the outcome of Engine.Run.
type Result struct {
	// Fresh holds one record per pending row of the input.
	Fresh *mapping.Mapping

	// Deferred lists references left for the symbol search, in input order.
	Deferred []string

	Resolved    int
	Unsupported int
}

// Run resolves every row of m that is not stable. Stable rows are skipped
// and do not appear in Result.Fresh. m is not modified.
func (e Engine) Run(m *mapping.Mapping) Result {
	res := Result{Fresh: mapping.New()}

	for _, rec := range m.Records() {
		if rec.Status.Stable() {
			continue
		}

		rule := market.SuffixFor(rec.Reference)
		if rule.Kind == market.Unknown && e.DeferUnknown {
			res.Fresh.Put(ticker.Unresolved(rec.Reference).WithSecondary(rec.Secondary))
			res.Deferred = append(res.Deferred, rec.Reference)
			continue
		}

		out := Resolve(rec.Reference).WithSecondary(rec.Secondary)
		switch out.Status {
		case ticker.StatusResolved:
			res.Resolved++
		case ticker.StatusUnsupported:
			res.Unsupported++
		}
		res.Fresh.Put(out)
	}

	return res
}

// Package ticker holds the mapping row model shared by the resolution pipeline.
//
// A reference ticker has the form "ROOT XX": a root symbol, one space and a
// market code. Every reference handed to this module must follow that form;
// references without a market code are routed as an unknown market.
package ticker

import "strings"

// Record is one row of the ticker mapping.
//
// Target is non-empty iff Status is StatusResolved. Records are built through
// the constructors below so that invariant holds everywhere.
type Record struct {
	Reference string
	Status    Status
	Target    string
	Secondary string
}

// Unresolved returns a fresh row awaiting resolution.
func Unresolved(reference string) Record {
	return Record{Reference: reference, Status: StatusUnresolved}
}

// Resolved returns a row mapped to target. An empty target yields NOT_FOUND.
func Resolved(reference, target string) Record {
	if target == "" {
		return NotFound(reference)
	}
	return Record{Reference: reference, Status: StatusResolved, Target: target}
}

// Unsupported returns a row that is permanently out of reach of the provider.
func Unsupported(reference string) Record {
	return Record{Reference: reference, Status: StatusUnsupported}
}

// NotFound returns a row for which the provider had no confident match.
func NotFound(reference string) Record {
	return Record{Reference: reference, Status: StatusNotFound}
}

// TimedOut returns a row that hit the provider rate limit and is retried on the next run.
func TimedOut(reference string) Record {
	return Record{Reference: reference, Status: StatusTimedOut}
}

// WithSecondary returns a copy of r carrying the secondary ticker.
func (r Record) WithSecondary(secondary string) Record {
	r.Secondary = secondary
	return r
}

// Root returns the reference with its market code stripped.
func (r Record) Root() string {
	root, _ := Split(r.Reference)
	return root
}

// Split splits a reference ticker into root symbol and market code.
// The code is whatever follows the last space; no space means no code.
func Split(reference string) (root, code string) {
	i := strings.LastIndexByte(reference, ' ')
	if i < 0 {
		return reference, ""
	}
	return reference[:i], reference[i+1:]
}

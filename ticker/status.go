package ticker

//go:generate go tool stringer -type=Status -linecomment -output=status_string.go

// Status is the resolution state of a mapping row.
type Status int

const (
	StatusUnresolved  Status = iota // UNRESOLVED
	StatusResolved                  // RESOLVED
	StatusUnsupported               // UNSUPPORTED
	StatusNotFound                  // NOT_FOUND
	StatusTimedOut                  // TIMED_OUT
)

// Stable reports whether a row in this status must be carried over unchanged
// into later runs. TIMED_OUT and UNRESOLVED rows are picked up again.
func (s Status) Stable() bool {
	switch s {
	case StatusResolved, StatusUnsupported, StatusNotFound:
		return true
	default:
		return false
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, bool) {
	for st := StatusUnresolved; st <= StatusTimedOut; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return StatusUnresolved, false
}

// Package market routes reference tickers to destination-provider symbols by
// their market code, and rewrites the result into the provider's format.
package market

import "tickermap/ticker"

// Kind classifies a market code.
type Kind int

const (
	// Unknown codes are in neither table. Callers treat them as unsupported
	// unless they can fall back to a symbol search.
	Unknown Kind = iota
	Mapped
	Unsupported
)

// Rule is the routing decision for one reference ticker.
type Rule struct {
	Kind   Kind
	Code   string // market code, empty when the reference has none
	Suffix string // destination suffix, set for Mapped only
}

// destinationSuffixes maps market codes to the destination-provider suffix.
var destinationSuffixes = map[string]string{
	"US": "",     // United States, domestic
	"NA": ".AMS", // Amsterdam
	"CA": ".TRT", // Toronto
	"BB": ".BRU", // Brussels
	"FP": ".PAR", // Paris
	"GR": ".DEX", // Xetra
	"PL": ".LIS", // Lisbon
	"LN": ".LON", // London
	"BZ": ".SAO", // Sao Paulo
}

// unsupportedCodes are markets the destination provider does not carry.
var unsupportedCodes = map[string]struct{}{
	"PW": {}, "CP": {}, "TB": {}, "HB": {}, "IT": {}, "ID": {}, "PM": {},
	"SP": {}, "FH": {}, "AV": {}, "GA": {}, "DC": {}, "NZ": {}, "TI": {},
	"NO": {}, "SM": {}, "IJ": {}, "MF": {}, "SJ": {}, "AU": {}, "SW": {},
	"SS": {}, "KS": {}, "MK": {}, "IM": {}, "JP": {}, "TT": {}, "HK": {},
}

// SuffixFor returns the routing rule for a reference ticker. The deny list
// is consulted first, so a code in both tables is unsupported.
func SuffixFor(reference string) Rule {
	_, code := ticker.Split(reference)
	if code == "" {
		return Rule{Kind: Unknown}
	}
	if _, denied := unsupportedCodes[code]; denied {
		return Rule{Kind: Unsupported, Code: code}
	}
	if suffix, ok := destinationSuffixes[code]; ok {
		return Rule{Kind: Mapped, Code: code, Suffix: suffix}
	}
	return Rule{Kind: Unknown, Code: code}
}

// MappedCodes returns the market codes with a destination suffix.
func MappedCodes() []string {
	codes := make([]string, 0, len(destinationSuffixes))
	for code := range destinationSuffixes {
		codes = append(codes, code)
	}
	return codes
}

// UnsupportedCodes returns the denied market codes.
func UnsupportedCodes() []string {
	codes := make([]string, 0, len(unsupportedCodes))
	for code := range unsupportedCodes {
		codes = append(codes, code)
	}
	return codes
}

package market

import "strings"

const londonSuffix = ".LON"

// Normalize rewrites a suffixed ticker into the destination format, which
// does not allow '/'. The London rules are specific to how share classes are
// listed there: "BT/A.LON" becomes "BT-A.LON" while "RDSB/.LON" or "X*.LON"
// lose the marker characters entirely.
func Normalize(t string) string {
	switch {
	case strings.HasSuffix(t, "/A"+londonSuffix):
		t = strings.ReplaceAll(t, "/", "-")
		return strings.ReplaceAll(t, "*", "")
	case strings.HasSuffix(t, "LON"):
		t = strings.ReplaceAll(t, "/", "")
		return strings.ReplaceAll(t, "*", "")
	case strings.Contains(t, "/"):
		return strings.ReplaceAll(t, "/", "-")
	default:
		return t
	}
}

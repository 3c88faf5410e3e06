package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuffixFor_Mapped(t *testing.T) {
	tests := []struct {
		reference string
		want      string
	}{
		{"AAPL US", ""},
		{"ASML NA", ".AMS"},
		{"RY CA", ".TRT"},
		{"ABI BB", ".BRU"},
		{"MC FP", ".PAR"},
		{"SAP GR", ".DEX"},
		{"EDP PL", ".LIS"},
		{"BT/A LN", ".LON"},
		{"VALE3 BZ", ".SAO"},
	}

	for _, tt := range tests {
		t.Run(tt.reference, func(t *testing.T) {
			rule := SuffixFor(tt.reference)
			require.Equal(t, Mapped, rule.Kind)
			assert.Equal(t, tt.want, rule.Suffix)
		})
	}
}

func TestSuffixFor_DenyListAlwaysUnsupported(t *testing.T) {
	roots := []string{"700", "A", "BT/A", "X*Y", "ÄÖÜ", "LONG ROOT"}

	for _, code := range UnsupportedCodes() {
		for _, root := range roots {
			rule := SuffixFor(root + " " + code)
			assert.Equal(t, Unsupported, rule.Kind, "%s %s", root, code)
			assert.Equal(t, code, rule.Code)
			assert.Empty(t, rule.Suffix)
		}
	}
}

func TestSuffixFor_TablesAreDisjoint(t *testing.T) {
	for _, code := range MappedCodes() {
		_, denied := unsupportedCodes[code]
		assert.False(t, denied, "code %s in both tables", code)
	}
}

func TestSuffixFor_Unknown(t *testing.T) {
	for _, ref := range []string{"X ZZ", "X us", "NOCODE", "", "X ", "日本 東証"} {
		rule := SuffixFor(ref)
		assert.Equal(t, Unknown, rule.Kind, "reference %q", ref)
	}
	assert.Equal(t, "ZZ", SuffixFor("X ZZ").Code)
}

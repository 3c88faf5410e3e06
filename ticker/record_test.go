package ticker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in       string
		wantRoot string
		wantCode string
	}{
		{"AAPL US", "AAPL", "US"},
		{"BT/A LN", "BT/A", "LN"},
		{"700 HK", "700", "HK"},
		{"BRK B US", "BRK B", "US"},
		{"NOCODE", "NOCODE", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			root, code := Split(tt.in)
			assert.Equal(t, tt.wantRoot, root)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestConstructors_TargetIffResolved(t *testing.T) {
	records := []Record{
		Unresolved("A US"),
		Resolved("A US", "A"),
		Resolved("B US", ""),
		Unsupported("700 HK"),
		NotFound("X ZZ"),
		TimedOut("Y ZZ"),
	}

	for _, r := range records {
		assert.Equal(t, r.Status == StatusResolved, r.Target != "", "record %+v", r)
	}
	assert.Equal(t, StatusNotFound, records[2].Status)
}

func TestStatus_Stable(t *testing.T) {
	assert.True(t, StatusResolved.Stable())
	assert.True(t, StatusUnsupported.Stable())
	assert.True(t, StatusNotFound.Stable())
	assert.False(t, StatusTimedOut.Stable())
	assert.False(t, StatusUnresolved.Stable())
}

func TestParseStatus(t *testing.T) {
	for st := StatusUnresolved; st <= StatusTimedOut; st++ {
		got, ok := ParseStatus(st.String())
		assert.True(t, ok)
		assert.Equal(t, st, got)
	}

	_, ok := ParseStatus("SYMBOL_NOT_FOUND")
	assert.False(t, ok)
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestRecord_Root(t *testing.T) {
	assert.Equal(t, "BT/A", Resolved("BT/A LN", "BT-A.LON").Root())
	assert.Equal(t, "AAPL", Unresolved("AAPL US").WithSecondary("AAPL").Root())
}

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickermap/mapping"
	"tickermap/market"
	"tickermap/ticker"
)

func TestResolve_Examples(t *testing.T) {
	tests := []struct {
		reference  string
		wantStatus ticker.Status
		wantTarget string
	}{
		{"AAPL US", ticker.StatusResolved, "AAPL"},
		{"700 HK", ticker.StatusUnsupported, ""},
		{"BT/A LN", ticker.StatusResolved, "BT-A.LON"},
		{"RDSB/ LN", ticker.StatusResolved, "RDSB.LON"},
		{"BRK/B US", ticker.StatusResolved, "BRK-B"},
		{"ASML NA", ticker.StatusResolved, "ASML.AMS"},
		{"FOO ZZ", ticker.StatusUnsupported, ""},
	}

	for _, tt := range tests {
		t.Run(tt.reference, func(t *testing.T) {
			rec := Resolve(tt.reference)
			assert.Equal(t, tt.reference, rec.Reference)
			assert.Equal(t, tt.wantStatus, rec.Status)
			assert.Equal(t, tt.wantTarget, rec.Target)
		})
	}
}

func TestResolve_DomesticTargetIsRoot(t *testing.T) {
	for _, root := range []string{"AAPL", "MSFT", "A", "GOOGL", "T"} {
		rec := Resolve(root + " US")
		require.Equal(t, ticker.StatusResolved, rec.Status)
		assert.Equal(t, root, rec.Target)
	}
}

func TestResolve_DenyListNullTarget(t *testing.T) {
	for _, code := range market.UnsupportedCodes() {
		rec := Resolve("SOMETHING/B* " + code)
		assert.Equal(t, ticker.StatusUnsupported, rec.Status)
		assert.Empty(t, rec.Target)
	}
}

func TestEngine_Run(t *testing.T) {
	m := mapping.New()
	m.Put(ticker.Unresolved("AAPL US"))
	m.Put(ticker.Unresolved("700 HK"))
	m.Put(ticker.TimedOut("FOO ZZ"))
	m.Put(ticker.Resolved("MSFT US", "MSFT"))
	m.Put(ticker.NotFound("BAR ZZ"))
	m.Put(ticker.Unresolved("SAP GR").WithSecondary("SAP.DE"))

	t.Run("unknown markets unsupported", func(t *testing.T) {
		res := Engine{}.Run(m)

		assert.Equal(t, []string{"AAPL US", "700 HK", "FOO ZZ", "SAP GR"}, res.Fresh.Keys())
		assert.Empty(t, res.Deferred)
		assert.Equal(t, 2, res.Resolved)
		assert.Equal(t, 2, res.Unsupported)

		sap, ok := res.Fresh.Get("SAP GR")
		require.True(t, ok)
		assert.Equal(t, "SAP.DEX", sap.Target)
		assert.Equal(t, "SAP.DE", sap.Secondary)
	})

	t.Run("unknown markets deferred", func(t *testing.T) {
		res := Engine{DeferUnknown: true}.Run(m)

		assert.Equal(t, []string{"FOO ZZ"}, res.Deferred)
		assert.Equal(t, 1, res.Unsupported)

		foo, ok := res.Fresh.Get("FOO ZZ")
		require.True(t, ok)
		assert.Equal(t, ticker.StatusUnresolved, foo.Status)
	})

	t.Run("input untouched", func(t *testing.T) {
		rec, _ := m.Get("AAPL US")
		assert.Equal(t, ticker.StatusUnresolved, rec.Status)
	})
}

package csvfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickermap/mapping"
	"tickermap/scraper"
	"tickermap/storage"
	"tickermap/ticker"
)

func TestMappingFile_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "ticker_map.csv")
	store := NewMappingFile(path)

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)

	m := mapping.FromRecords([]ticker.Record{
		ticker.Unsupported("700 HK").WithSecondary("0700.HK"),
		ticker.Resolved("BT/A LN", "BT-A.LON").WithSecondary("BT-A.L"),
		ticker.TimedOut("FOO ZZ"),
		ticker.NotFound("BAR ZZ"),
		ticker.Unresolved("NEW ZZ"),
	})
	require.NoError(t, store.Save(ctx, m))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"reference_ticker,target_ticker,secondary_ticker",
		"700 HK,UNSUPPORTED,0700.HK",
		"BAR ZZ,NOT_FOUND,NOT_FOUND",
		"BT/A LN,BT-A.LON,BT-A.L",
		"FOO ZZ,TIMED_OUT,NOT_FOUND",
		"NEW ZZ,,NOT_FOUND",
		"",
	}, "\n"), string(raw))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.Sorted(), got.Sorted(), spew.Sdump(got.Records()))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestReadMapping_LegacyFormat(t *testing.T) {
	in := "\ufeffbloomberg_ticker,alpha_vantage,yahoo\n" +
		"AAPL US,AAPL,AAPL\n" +
		"700 HK,SYMBOL_NOT_FOUND,0700.HK\n" +
		"FOO ZZ,TIMEOUT,SYMBOL_NOT_FOUND\n" +
		",,\n"

	got, err := ReadMapping(strings.NewReader(in))

	require.NoError(t, err)
	assert.Equal(t, []ticker.Record{
		ticker.Resolved("AAPL US", "AAPL").WithSecondary("AAPL"),
		ticker.Unresolved("700 HK").WithSecondary("0700.HK"),
		ticker.TimedOut("FOO ZZ"),
	}, got.Records())
}

func TestReadMapping_ReferenceOnly(t *testing.T) {
	got, err := ReadMapping(strings.NewReader("reference_ticker\nAAPL US\n"))

	require.NoError(t, err)
	assert.Equal(t, []ticker.Record{ticker.Unresolved("AAPL US")}, got.Records())
}

func TestReadMapping_Errors(t *testing.T) {
	_, err := ReadMapping(strings.NewReader("ticker,yahoo\nA,A\n"))
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	got, err := ReadMapping(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestWriteMapping(t *testing.T) {
	var buf bytes.Buffer
	m := mapping.FromRecords([]ticker.Record{ticker.Resolved("AAPL US", "AAPL")})

	require.NoError(t, WriteMapping(&buf, m))
	assert.Equal(t, "reference_ticker,target_ticker,secondary_ticker\nAAPL US,AAPL,NOT_FOUND\n", buf.String())
}

func TestCompanyFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "company_data.csv")
	store := NewCompanyFile(path)

	refs, err := store.References(ctx)
	require.NoError(t, err)
	assert.Empty(t, refs)

	require.NoError(t, store.Append(ctx, []scraper.Company{
		{Reference: "AAPL US", Name: "Apple Inc", Address: "Cupertino, CA", Sector: "Technology", Industry: "Hardware", Found: true},
		{Reference: "ZZZ ZZ"},
	}))
	require.NoError(t, store.Append(ctx, []scraper.Company{
		{Reference: "AAPL US", Name: "ignored"},
		{Reference: "BT/A LN", Name: "BT Group", Found: true},
	}))
	assert.ErrorIs(t, store.Append(ctx, []scraper.Company{{Name: "x"}}), storage.ErrInvalidInput)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"company_name,address,sector,industry,reference_ticker",
		`Apple Inc,"Cupertino, CA",Technology,Hardware,AAPL US`,
		",,,,ZZZ ZZ",
		"BT Group,,,,BT/A LN",
		"",
	}, "\n"), string(raw))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Found)
	assert.Equal(t, scraper.Company{Reference: "ZZZ ZZ"}, all[1])

	refs, err = store.References(ctx)
	require.NoError(t, err)
	assert.Len(t, refs, 3)
	assert.Contains(t, refs, "BT/A LN")
}

func TestCompanyFile_LegacyHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "company_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("company_name,address,sector,industry,bloomberg_ticker\nApple,,,,AAPL US\n"), 0o644))

	all, err := NewCompanyFile(path).All(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []scraper.Company{{Reference: "AAPL US", Name: "Apple", Found: true}}, all)
}

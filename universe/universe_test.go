package universe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFeed_Tickers(t *testing.T) {
	srv := csvServer(t, "ticker,bloomberg_ticker\nAAPL,AAPL US\n700,700 HK\n,\nAAPL,AAPL US\nBT/A,BT/A LN\n")

	got, err := NewFeed(srv.URL).Tickers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL US", "700 HK", "BT/A LN"}, got)
}

func TestFeed_MissingColumn(t *testing.T) {
	srv := csvServer(t, "ticker\nAAPL\n")

	_, err := NewFeed(srv.URL).Tickers(context.Background())

	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestFeed_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewFeed(srv.URL, WithHTTPClient(srv.Client())).Tickers(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPublicMap_Load(t *testing.T) {
	srv := csvServer(t, "\ufeffbloomberg_ticker,ticker,yahoo\n"+
		"BT/A LN,BT/A,BT/A.L\n"+
		"RDSB LN,RDSB,RDSB/.L\n"+
		"AAPL US,AAPL,AAPL\n"+
		"NEW US,NEW,\n"+
		"AAPL US,AAPL,OTHER\n")

	got, err := NewPublicMap(srv.URL).Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"BT/A LN", "RDSB LN", "AAPL US", "NEW US"}, got.References)
	assert.Equal(t, map[string]string{
		"BT/A LN": "BT-A.L",
		"RDSB LN": "RDSB.L",
		"AAPL US": "AAPL",
	}, got.Secondary)
}

func TestCleanSecondary(t *testing.T) {
	tests := []struct{ in, want string }{
		{"BT/A.L", "BT-A.L"},
		{"RDSB/.L", "RDSB.L"},
		{"AAPL", "AAPL"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanSecondary(tt.in), tt.in)
	}
}

func TestNewSource_DefaultURL(t *testing.T) {
	assert.Equal(t, DefaultMapURL, NewFeed("").url)
}

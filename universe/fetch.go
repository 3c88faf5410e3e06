// Package universe downloads the reference ticker universe and the public
// reference-to-secondary ticker map.
package universe

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tickermap/utils"
)

// DefaultMapURL is the public ticker map, which also lists the reference
// tickers of the current universe.
const DefaultMapURL = "https://numerai-signals-public-data.s3-us-west-2.amazonaws.com/signals_ticker_map_w_bbg.csv"

const referenceColumn = "bloomberg_ticker"

// ErrMissingColumn is returned when a downloaded CSV lacks a required column.
var ErrMissingColumn = errors.New("universe: missing column")

type source struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Feed or PublicMap.
type Option func(*source)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *source) {
		s.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *source) {
		s.logger = logger
	}
}

func newSource(url string, opts []Option) source {
	if url == "" {
		url = DefaultMapURL
	}
	s := source{
		url:        url,
		httpClient: &http.Client{Timeout: time.Minute},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// table fetches the CSV at s.url and returns its rows with the requested
// columns, in the order given. Rows shorter than the header are padded.
func (s source) table(ctx context.Context, columns ...string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	utils.SetDefaultHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	body, err := utils.ReadBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", s.url, resp.StatusCode)
	}

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make([]int, len(columns))
	for i, col := range columns {
		idx[i] = indexOf(header, col)
		if idx[i] < 0 {
			return nil, fmt.Errorf("%w %q in %s", ErrMissingColumn, col, s.url)
		}
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make([]string, len(columns))
		for i, j := range idx {
			if j < len(rec) {
				row[i] = strings.TrimSpace(rec[j])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == name {
			return i
		}
	}
	return -1
}

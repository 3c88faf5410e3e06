package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"tickermap/cache"
	"tickermap/utils"
)

// Match is one ranked candidate of a symbol search.
type Match struct {
	Symbol     string          `json:"1. symbol"`
	Name       string          `json:"2. name"`
	Type       string          `json:"3. type"`
	Region     string          `json:"4. region"`
	Currency   string          `json:"8. currency"`
	MatchScore decimal.Decimal `json:"9. matchScore"`
}

type searchResponse struct {
	BestMatches  []Match `json:"bestMatches"`
	Note         string  `json:"Note"`
	Information  string  `json:"Information"`
	ErrorMessage string  `json:"Error Message"`
}

// Search returns the provider's ranked candidates for keywords, best first.
// Throttling is reported as an error matching ErrRateLimited.
func (c *Client) Search(ctx context.Context, keywords string) ([]Match, error) {
	cacheKey := fmt.Sprintf("symbol-search:%s", keywords)

	return cache.Memoize(ctx, c.cache, cacheKey, c.cacheTTL, func() ([]Match, error) {
		return c.search(ctx, keywords)
	})
}

func (c *Client) search(ctx context.Context, keywords string) ([]Match, error) {
	query := url.Values{}
	query.Set("function", "SYMBOL_SEARCH")
	query.Set("keywords", keywords)
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	utils.SetDefaultHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := utils.ReadBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}

	switch {
	case parsed.Note != "":
		c.logger.Debug("symbol search quota notice", "keywords", keywords, "note", parsed.Note)
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, parsed.Note)
	case parsed.Information != "":
		c.logger.Debug("symbol search quota notice", "keywords", keywords, "information", parsed.Information)
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, parsed.Information)
	case parsed.ErrorMessage != "":
		return nil, &APIError{StatusCode: resp.StatusCode, Message: parsed.ErrorMessage}
	}

	return parsed.BestMatches, nil
}

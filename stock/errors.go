package stock

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRateLimited is returned when the provider reports that the request
// quota is exhausted, either with HTTP 429 or with a quota notice in an
// otherwise successful response.
var ErrRateLimited = errors.New("symbol search rate limited")

// APIError represents an error response from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("symbol search error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimit reports whether the provider throttled the request.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Is lets errors.Is(err, ErrRateLimited) match throttling responses.
func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.IsRateLimit()
}

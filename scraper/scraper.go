// Package scraper extracts company metadata from public company-profile pages.
package scraper

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrBlocked is returned when the profile site answers with a bot challenge.
// Further requests in the same batch are pointless and are not issued.
var ErrBlocked = errors.New("scraper: blocked by bot challenge")

// Company is the metadata scraped for one reference ticker.
// Found is false when the site has no profile for the ticker; such a
// company carries only its Reference.
type Company struct {
	Reference string `json:"reference_ticker"`
	Name      string `json:"company_name,omitempty"`
	Address   string `json:"address,omitempty"`
	Sector    string `json:"sector,omitempty"`
	Industry  string `json:"industry,omitempty"`
	Found     bool   `json:"found"`
}

// Complete reports whether the company name was extracted.
func (c Company) Complete() bool {
	return c.Name != ""
}

// Scraper turns a fetched profile page into a Company.
type Scraper interface {
	Scrape(doc *goquery.Document, reference string) (Company, error)
}

// CleanText removes extra whitespace from text
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	blockedMarker  = "Are you a robot?"
	notFoundMarker = "no matches. Try the symbol search"
)

// Profile property headings, matched against h2 text.
const (
	propertyAddress  = "ADDRESS"
	propertySector   = "SECTOR"
	propertyIndustry = "INDUSTRY"
)

// ProfileScraper handles the company profile page layout: the company name
// is the page's h1, and each property is an h2 heading followed by the
// element holding its value.
type ProfileScraper struct{}

// Scrape extracts the company. A bot challenge yields ErrBlocked; a search
// miss yields a Company with Found false. Missing properties are left empty.
func (s *ProfileScraper) Scrape(doc *goquery.Document, reference string) (Company, error) {
	text := doc.Text()
	if strings.Contains(text, blockedMarker) {
		return Company{}, ErrBlocked
	}
	if strings.Contains(text, notFoundMarker) {
		return Company{Reference: reference}, nil
	}

	props := properties(doc)
	return Company{
		Reference: reference,
		Name:      CleanText(doc.Find("h1").First().Text()),
		Address:   props[propertyAddress],
		Sector:    props[propertySector],
		Industry:  props[propertyIndustry],
		Found:     true,
	}, nil
}

func properties(doc *goquery.Document) map[string]string {
	props := make(map[string]string, 3)
	doc.Find("h2").Each(func(_ int, h *goquery.Selection) {
		key := strings.ToUpper(CleanText(h.Text()))
		switch key {
		case propertyAddress, propertySector, propertyIndustry:
		default:
			return
		}
		if _, ok := props[key]; ok {
			return
		}
		props[key] = CleanText(following(h).Text())
	})
	return props
}

// following returns the element after s in document order, skipping s's own
// children: its next sibling, or else the next sibling of the nearest
// ancestor that has one.
func following(s *goquery.Selection) *goquery.Selection {
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		if next := cur.Next(); next.Length() > 0 {
			return next
		}
	}
	return s.Next()
}

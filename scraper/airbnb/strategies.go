package airbnb

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// roomPathMarker precedes the listing identifier in canonical listing URLs.
	roomPathMarker = "/rooms/"

	// minIDLength rejects clearly-truncated or placeholder identifiers.
	minIDLength = 3
)

// currencyMarkers gates price extraction: a candidate text is a price only if
// it carries at least one of these tokens.
var currencyMarkers = []string{"kr", "$", "€", "£", "DKK", "SEK", "EUR", "₹", "¥"}

// nodeStrategy locates candidate listing nodes on a results page. Strategies
// are tried most-specific-first; the first one producing any nodes is used
// exclusively for that page.
type nodeStrategy struct {
	name     string
	selector string
}

// nodeStrategies is the canonical node-selection priority order: explicit card
// container, then schema markup, then the bare room-anchor fallback.
var nodeStrategies = []nodeStrategy{
	{name: "card-container", selector: `[data-testid="card-container"]`},
	{name: "schema-item", selector: `div[itemprop="itemListElement"]`},
	{name: "room-anchor", selector: `a[href*="/rooms/"]`},
}

// fieldStrategy is one (locator, accessor, validator) attempt at extracting a
// field from a candidate node. An empty attrs list reads the element text;
// otherwise the listed attributes are read in order and the first non-empty
// one is the candidate value. A nil validate accepts any non-empty value.
type fieldStrategy struct {
	selector string
	attrs    []string
	validate func(string) bool
}

var titleStrategies = []fieldStrategy{
	{selector: `[data-testid="listing-card-title"]`},
	{selector: `.t1jojoys`},
	{selector: `h3`},
	{selector: `.fb4nyux`},
}

var priceStrategies = []fieldStrategy{
	{selector: `[data-testid="price-availability"] span`, validate: hasCurrencyMarker},
	{selector: `span._1y74zjx`, validate: hasCurrencyMarker},
	{selector: `span[data-testid="price"]`, validate: hasCurrencyMarker},
	{selector: `div._1jo4hgw span`, validate: hasCurrencyMarker},
	{selector: `span`, validate: hasCurrencyMarker},
}

var imageStrategies = []fieldStrategy{
	{selector: `img[data-testid="listing-card-image"]`, attrs: []string{"src", "data-original"}, validate: isAbsoluteURL},
	{selector: `img[data-original]`, attrs: []string{"src", "data-original"}, validate: isAbsoluteURL},
	{selector: `img[src*="airbnb"]`, attrs: []string{"src"}, validate: isAbsoluteURL},
	{selector: `picture img`, attrs: []string{"src", "data-original"}, validate: isAbsoluteURL},
	{selector: `img`, attrs: []string{"src", "data-original"}, validate: isAbsoluteURL},
}

// extractField applies the strategy list in priority order against node and
// returns the first validated non-empty value. Strategies never merge: the
// first hit wins, a miss moves on to the next strategy.
func extractField(node *goquery.Selection, strategies []fieldStrategy) (string, bool) {
	for _, st := range strategies {
		var value string

		node.Find(st.selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			candidate := strategyValue(el, st.attrs)
			if candidate == "" {
				return true
			}
			if st.validate != nil && !st.validate(candidate) {
				return true
			}
			value = candidate
			return false
		})

		if value != "" {
			return value, true
		}
	}
	return "", false
}

// strategyValue reads the accessor for one matched element: text when no
// attributes are listed, otherwise the first non-empty listed attribute.
func strategyValue(el *goquery.Selection, attrs []string) string {
	if len(attrs) == 0 {
		return strings.TrimSpace(el.Text())
	}
	for _, attr := range attrs {
		if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// listingLink returns the canonical room anchor for a candidate node: the node
// itself when the anchor strategy matched it directly, otherwise the first
// room link among its descendants.
func listingLink(node *goquery.Selection) (string, bool) {
	if goquery.NodeName(node) == "a" {
		if href, ok := node.Attr("href"); ok && strings.Contains(href, roomPathMarker) {
			return href, true
		}
	}
	href, ok := node.Find(`a[href*="/rooms/"]`).First().Attr("href")
	if !ok || href == "" {
		return "", false
	}
	return href, true
}

// listingIDFromURL derives the identifier from a canonical listing URL: the
// path segment following the last room marker, stripped of query string and
// trailing segments. Identifiers at or below the minimum length are rejected.
func listingIDFromURL(rawURL string) (string, bool) {
	idx := strings.LastIndex(rawURL, roomPathMarker)
	if idx < 0 {
		return "", false
	}

	id := rawURL[idx+len(roomPathMarker):]
	if q := strings.IndexByte(id, '?'); q >= 0 {
		id = id[:q]
	}
	if s := strings.IndexByte(id, '/'); s >= 0 {
		id = id[:s]
	}

	if utf8.RuneCountInString(id) <= minIDLength {
		return "", false
	}
	return id, true
}

func hasCurrencyMarker(s string) bool {
	for _, marker := range currencyMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

// resolveURL makes href absolute against base. Rendered pages may carry
// relative hrefs; identity derivation and notification links need absolutes.
func resolveURL(href string, base *url.URL) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

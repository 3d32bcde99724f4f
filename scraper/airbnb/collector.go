package airbnb

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"airbnb-monitor/models"
	"airbnb-monitor/utils"
)

// ErrNoListingNodes means no node-selection strategy matched anything on the
// page. The caller treats the source as an empty contribution, not a failure
// of the run.
var ErrNoListingNodes = errors.New("no listing nodes matched any selector strategy")

// Collector turns one rendered search-results page into an ordered sequence
// of listing records.
type Collector struct {
	logger     *utils.Logger
	maxPerPage int
}

// NewCollector creates a Collector. maxPerPage caps how many matched nodes
// are processed per page, bounding worst-case latency on oversized result
// sets; values <= 0 fall back to 20.
func NewCollector(logger *utils.Logger, maxPerPage int) *Collector {
	if maxPerPage <= 0 {
		maxPerPage = 20
	}
	return &Collector{logger: logger, maxPerPage: maxPerPage}
}

// Collect parses html, locates candidate nodes with the first node strategy
// that matches anything, extracts every field per node, and returns records
// deduplicated by id in document order. A node lacking an id or a usable URL
// is dropped; that never aborts the rest of the page.
func (c *Collector) Collect(html, pageURL, sourceLabel string) ([]*models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("collector: parse page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		c.logger.Warn("[collector] %s: unparsable page URL %q — relative links will be dropped", sourceLabel, pageURL)
		base = nil
	}

	nodes, strategyName := c.selectNodes(doc)
	if nodes == nil {
		return nil, ErrNoListingNodes
	}
	c.logger.Debug("[collector] %s: %d nodes via strategy %q", sourceLabel, nodes.Length(), strategyName)

	seenIDs := utils.NewOrderedSet()
	listings := make([]*models.Listing, 0, c.maxPerPage)
	now := time.Now()

	nodes.EachWithBreak(func(i int, node *goquery.Selection) bool {
		if i >= c.maxPerPage {
			return false
		}

		listing, ok := c.extractListing(node, base)
		if !ok {
			return true
		}
		if !seenIDs.Add(listing.ID) {
			c.logger.Debug("[collector] %s: duplicate id %s skipped", sourceLabel, listing.ID)
			return true
		}

		listing.Source = sourceLabel
		listing.CollectedAt = now
		listings = append(listings, listing)
		return true
	})

	c.logger.Info("[collector] %s: %d unique listings (strategy %q)",
		sourceLabel, len(listings), strategyName)
	return listings, nil
}

// selectNodes tries node strategies in priority order and returns the first
// non-empty match set. Nodes are never merged across strategies.
func (c *Collector) selectNodes(doc *goquery.Document) (*goquery.Selection, string) {
	for _, st := range nodeStrategies {
		nodes := doc.Find(st.selector)
		if nodes.Length() > 0 {
			return nodes, st.name
		}
	}
	return nil, ""
}

// extractListing runs the field extractor over one candidate node. It returns
// false when the record is invalid: no room link, unresolvable URL, or an id
// that fails derivation.
func (c *Collector) extractListing(node *goquery.Selection, base *url.URL) (*models.Listing, bool) {
	href, ok := listingLink(node)
	if !ok {
		return nil, false
	}

	absURL := resolveURL(href, base)
	if absURL == "" {
		return nil, false
	}

	id, ok := listingIDFromURL(absURL)
	if !ok {
		return nil, false
	}

	listing := &models.Listing{ID: id, URL: absURL}

	if title, ok := extractField(node, titleStrategies); ok {
		listing.Title = title
	}
	if price, ok := extractField(node, priceStrategies); ok {
		listing.Price = price
	}
	if img, ok := extractField(node, imageStrategies); ok {
		listing.ImageURL = img
	}

	return listing, true
}

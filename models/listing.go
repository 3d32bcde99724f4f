package models

import (
	"sort"
	"time"
)

// Listing is one observed item extracted from a rendered search-results page.
// ID and URL are required for a record to be valid; Price and ImageURL are
// optional and stay empty when no extraction strategy matched.
type Listing struct {
	ID          string
	Title       string
	URL         string
	Price       string
	ImageURL    string
	Source      string
	CollectedAt time.Time
}

// HasPrice reports whether any price strategy matched for this listing.
func (l *Listing) HasPrice() bool {
	return l.Price != ""
}

// HasImage reports whether an absolute image URL was extracted.
func (l *Listing) HasImage() bool {
	return l.ImageURL != ""
}

// DisplayTitle returns the extracted title, or a synthesized placeholder
// when no title strategy matched.
func (l *Listing) DisplayTitle() string {
	if l.Title != "" {
		return l.Title
	}
	return "Listing " + l.ID
}

// SearchSource is one configured search URL plus its display label.
// Source order defines polling order and notification grouping order.
type SearchSource struct {
	URL   string
	Label string
}

// SeenSet is the durable record of every listing identifier observed across
// all runs. LastUpdated and SourceCount are persistence metadata only and
// never participate in membership checks.
type SeenSet struct {
	ids map[string]struct{}

	LastUpdated time.Time
	SourceCount int
}

// NewSeenSet creates a SeenSet pre-populated with the given identifiers.
func NewSeenSet(ids ...string) *SeenSet {
	s := &SeenSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Contains reports whether id has been observed in any previous run.
func (s *SeenSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add inserts a single identifier.
func (s *SeenSet) Add(id string) {
	s.ids[id] = struct{}{}
}

// AddAll bulk-inserts identifiers.
func (s *SeenSet) AddAll(ids []string) {
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Len returns the number of distinct identifiers tracked.
func (s *SeenSet) Len() int {
	return len(s.ids)
}

// IDs returns all identifiers sorted, for stable persistence output.
func (s *SeenSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy, so change detection can produce an
// updated set without mutating its input.
func (s *SeenSet) Clone() *SeenSet {
	c := &SeenSet{
		ids:         make(map[string]struct{}, len(s.ids)),
		LastUpdated: s.LastUpdated,
		SourceCount: s.SourceCount,
	}
	for id := range s.ids {
		c.ids[id] = struct{}{}
	}
	return c
}

// SourceResult holds the per-source outcome of a single run.
type SourceResult struct {
	Label     string
	Collected int
}

// RunReport summarizes a completed monitoring run.
type RunReport struct {
	Sources        []SourceResult
	TotalCollected int
	NewCount       int
	SeenTotal      int
	Notified       bool
	Saved          bool
	Duration       time.Duration
}

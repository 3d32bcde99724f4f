package airbnb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-monitor/config"
	"airbnb-monitor/models"
	"airbnb-monitor/utils"
)

// fakeRenderer serves canned HTML (or an error) per URL.
type fakeRenderer struct {
	pages  map[string]string
	errs   map[string]error
	visits []string
}

func (f *fakeRenderer) Render(_ context.Context, pageURL string) (string, error) {
	f.visits = append(f.visits, pageURL)
	if err, ok := f.errs[pageURL]; ok {
		return "", err
	}
	return f.pages[pageURL], nil
}

func testScraperConfig(sources ...models.SearchSource) *config.Config {
	return &config.Config{
		Sources:            sources,
		MaxListingsPerPage: 20,
		MaxRetries:         1,
	}
}

func TestScrapeAggregatesSourcesInOrder(t *testing.T) {
	src1 := models.SearchSource{URL: "https://www.airbnb.com/s/One/homes", Label: "Search 1"}
	src2 := models.SearchSource{URL: "https://www.airbnb.com/s/Two/homes", Label: "Search 2"}

	renderer := &fakeRenderer{pages: map[string]string{
		src1.URL: pageHTML(cardHTML("10000001", "A", "$100 night")),
		src2.URL: pageHTML(cardHTML("10000002", "B", "$200 night")),
	}}

	s := New(testScraperConfig(src1, src2), utils.NewLogger(false), renderer)
	listings := s.Scrape(context.Background())

	require.Len(t, listings, 2)
	assert.Equal(t, "Search 1", listings[0].Source)
	assert.Equal(t, "10000001", listings[0].ID)
	assert.Equal(t, "Search 2", listings[1].Source)
	assert.Equal(t, "10000002", listings[1].ID)
	assert.Equal(t, []string{src1.URL, src2.URL}, renderer.visits)
}

func TestScrapeFailedSourceContributesNothing(t *testing.T) {
	src1 := models.SearchSource{URL: "https://www.airbnb.com/s/Broken/homes", Label: "Search 1"}
	src2 := models.SearchSource{URL: "https://www.airbnb.com/s/Works/homes", Label: "Search 2"}

	renderer := &fakeRenderer{
		pages: map[string]string{
			src2.URL: pageHTML(cardHTML("10000002", "B", "$200 night")),
		},
		errs: map[string]error{
			src1.URL: ErrResultsNotReady,
		},
	}

	s := New(testScraperConfig(src1, src2), utils.NewLogger(false), renderer)
	listings := s.Scrape(context.Background())

	require.Len(t, listings, 1)
	assert.Equal(t, "Search 2", listings[0].Source)
	assert.Equal(t, "10000002", listings[0].ID)
}

func TestScrapeBlockedSourceContributesNothing(t *testing.T) {
	src := models.SearchSource{URL: "https://www.airbnb.com/s/Blocked/homes", Label: "Search 1"}

	renderer := &fakeRenderer{errs: map[string]error{src.URL: ErrPageBlocked}}

	s := New(testScraperConfig(src), utils.NewLogger(false), renderer)
	listings := s.Scrape(context.Background())
	assert.Empty(t, listings)
}

func TestScrapeEmptyPageIsNotFatal(t *testing.T) {
	src1 := models.SearchSource{URL: "https://www.airbnb.com/s/Empty/homes", Label: "Search 1"}
	src2 := models.SearchSource{URL: "https://www.airbnb.com/s/Full/homes", Label: "Search 2"}

	renderer := &fakeRenderer{pages: map[string]string{
		src1.URL: pageHTML(`<div class="empty-state">nothing here</div>`),
		src2.URL: pageHTML(cardHTML("10000002", "B", "$200 night")),
	}}

	s := New(testScraperConfig(src1, src2), utils.NewLogger(false), renderer)
	listings := s.Scrape(context.Background())

	require.Len(t, listings, 1)
	assert.Equal(t, "10000002", listings[0].ID)
}

func TestScrapeStopsOnCancellation(t *testing.T) {
	src1 := models.SearchSource{URL: "https://www.airbnb.com/s/One/homes", Label: "Search 1"}
	src2 := models.SearchSource{URL: "https://www.airbnb.com/s/Two/homes", Label: "Search 2"}
	src3 := models.SearchSource{URL: "https://www.airbnb.com/s/Three/homes", Label: "Search 3"}

	// The second source's render observes run cancellation; the third must
	// not be visited, and what was already collected is still returned.
	renderer := &fakeRenderer{
		pages: map[string]string{
			src1.URL: pageHTML(cardHTML("10000001", "A", "$100 night")),
			src3.URL: pageHTML(cardHTML("10000003", "C", "$300 night")),
		},
		errs: map[string]error{
			src2.URL: context.Canceled,
		},
	}

	s := New(testScraperConfig(src1, src2, src3), utils.NewLogger(false), renderer)
	listings := s.Scrape(context.Background())

	require.Len(t, listings, 1)
	assert.Equal(t, "10000001", listings[0].ID)
	assert.Equal(t, []string{src1.URL, src2.URL}, renderer.visits)
}

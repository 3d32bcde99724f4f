package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-monitor/models"
)

func TestBuildDigestEmptyInput(t *testing.T) {
	d, err := BuildDigest(nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestBuildDigestSubjectCountsListings(t *testing.T) {
	d, err := BuildDigest([]*models.Listing{
		listing("100", "A", "Search 1"),
		listing("101", "B", "Search 1"),
		listing("200", "C", "Search 2"),
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "3 New Airbnb Listing(s) Found!", d.Subject)
}

func TestBuildDigestGroupsBySourcePreservingOrder(t *testing.T) {
	d, err := BuildDigest([]*models.Listing{
		listing("100", "First A", "Search 1"),
		listing("200", "First B", "Search 2"),
		listing("101", "Second A", "Search 1"),
	}, time.Now())
	require.NoError(t, err)

	body := d.HTMLBody

	s1 := strings.Index(body, "Search 1 (2 new)")
	s2 := strings.Index(body, "Search 2 (1 new)")
	require.GreaterOrEqual(t, s1, 0)
	require.GreaterOrEqual(t, s2, 0)
	assert.Less(t, s1, s2, "source order must follow first appearance")

	// Within-source order preserved.
	a1 := strings.Index(body, "First A")
	a2 := strings.Index(body, "Second A")
	assert.Less(t, a1, a2)
}

func TestBuildDigestPriceFallbackText(t *testing.T) {
	withPrice := listing("100", "Priced", "Search 1")
	withPrice.Price = "$150 night"
	noPrice := listing("101", "Unpriced", "Search 1")

	d, err := BuildDigest([]*models.Listing{withPrice, noPrice}, time.Now())
	require.NoError(t, err)

	assert.Contains(t, d.HTMLBody, "$150 night")
	assert.Contains(t, d.HTMLBody, "Price not available")
}

func TestBuildDigestOmitsImageBlockWhenAbsent(t *testing.T) {
	withImage := listing("100", "Pictured", "Search 1")
	withImage.ImageURL = "https://a0.muscache.com/im/pictures/1.jpg"
	noImage := listing("101", "Bare", "Search 1")

	d, err := BuildDigest([]*models.Listing{withImage, noImage}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(d.HTMLBody, "<img src="))
	assert.Contains(t, d.HTMLBody, "https://a0.muscache.com/im/pictures/1.jpg")
}

func TestBuildDigestSynthesizesTitlePlaceholder(t *testing.T) {
	l := listing("100", "", "Search 1")

	d, err := BuildDigest([]*models.Listing{l}, time.Now())
	require.NoError(t, err)

	assert.Contains(t, d.HTMLBody, "Listing 100")
}

func TestBuildDigestIncludesListingLinks(t *testing.T) {
	d, err := BuildDigest([]*models.Listing{listing("100", "A", "Search 1")}, time.Now())
	require.NoError(t, err)

	assert.Contains(t, d.HTMLBody, `href="https://www.airbnb.com/rooms/100"`)
}

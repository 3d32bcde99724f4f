package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-monitor/models"
	"airbnb-monitor/utils"
)

func testDetector() *Detector {
	return NewDetector(utils.NewLogger(false))
}

func listing(id, title, source string) *models.Listing {
	return &models.Listing{
		ID:     id,
		Title:  title,
		URL:    "https://www.airbnb.com/rooms/" + id,
		Source: source,
	}
}

func TestDetectClassifiesUnseenListings(t *testing.T) {
	current := []*models.Listing{
		listing("100", "A", "Search 1"),
		listing("101", "B", "Search 1"),
	}
	seen := models.NewSeenSet("100")

	newListings, updated := testDetector().Detect(current, seen)

	require.Len(t, newListings, 1)
	assert.Equal(t, "101", newListings[0].ID)
	assert.Equal(t, "B", newListings[0].Title)

	assert.ElementsMatch(t, []string{"100", "101"}, updated.IDs())
}

func TestDetectPreservesEmissionOrder(t *testing.T) {
	current := []*models.Listing{
		listing("300", "C", "Search 1"),
		listing("100", "A", "Search 1"),
		listing("200", "B", "Search 2"),
	}

	newListings, _ := testDetector().Detect(current, models.NewSeenSet())

	require.Len(t, newListings, 3)
	assert.Equal(t, "300", newListings[0].ID)
	assert.Equal(t, "100", newListings[1].ID)
	assert.Equal(t, "200", newListings[2].ID)
}

func TestDetectUpdatedSetIsUnionOfAllCurrentIDs(t *testing.T) {
	// Already-seen listings still join the updated set, so a listing sighted
	// this run is never reported again.
	current := []*models.Listing{
		listing("100", "A", "Search 1"),
		listing("101", "B", "Search 1"),
	}
	seen := models.NewSeenSet("100", "999")

	newListings, updated := testDetector().Detect(current, seen)

	require.Len(t, newListings, 1)
	assert.ElementsMatch(t, []string{"100", "101", "999"}, updated.IDs())
}

func TestDetectDoesNotMutateInputSet(t *testing.T) {
	current := []*models.Listing{listing("101", "B", "Search 1")}
	seen := models.NewSeenSet("100")

	_, updated := testDetector().Detect(current, seen)

	assert.Equal(t, 1, seen.Len())
	assert.False(t, seen.Contains("101"))
	assert.True(t, updated.Contains("101"))
}

func TestDetectIdempotentAcrossRuns(t *testing.T) {
	current := []*models.Listing{
		listing("100", "A", "Search 1"),
		listing("101", "B", "Search 1"),
	}
	d := testDetector()

	first, updated := d.Detect(current, models.NewSeenSet())
	require.Len(t, first, 2)

	second, _ := d.Detect(current, updated)
	assert.Empty(t, second)
}

func TestDetectCrossSourceDuplicateWithinRun(t *testing.T) {
	// The same listing surfacing in two searches during one run is a
	// sighting for each source; the seen-set collapses them afterwards.
	current := []*models.Listing{
		listing("500", "Dup", "Search 1"),
		listing("500", "Dup", "Search 2"),
	}

	newListings, updated := testDetector().Detect(current, models.NewSeenSet())

	require.Len(t, newListings, 2)
	assert.Equal(t, "Search 1", newListings[0].Source)
	assert.Equal(t, "Search 2", newListings[1].Source)
	assert.Equal(t, []string{"500"}, updated.IDs())
}

package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-monitor/models"
)

func TestSnapshotWriterWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "snapshot.csv")

	w, err := NewSnapshotWriter(path)
	require.NoError(t, err)

	listings := []*models.Listing{
		{
			ID:          "12345678",
			Title:       "Harbour loft",
			URL:         "https://www.airbnb.com/rooms/12345678",
			Price:       "$150 night",
			Source:      "Search 1",
			CollectedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:          "87654321",
			URL:         "https://www.airbnb.com/rooms/87654321",
			Source:      "Search 2",
			CollectedAt: time.Date(2026, 8, 25, 12, 0, 5, 0, time.UTC),
		},
	}

	require.NoError(t, w.Write(listings))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"id", "source", "title", "price", "url", "image_url", "collected_at"}, rows[0])
	assert.Equal(t, "12345678", rows[1][0])
	assert.Equal(t, "Harbour loft", rows[1][2])

	// Missing title falls back to the synthesized placeholder; missing price
	// stays empty.
	assert.Equal(t, "Listing 87654321", rows[2][2])
	assert.Equal(t, "", rows[2][3])
}

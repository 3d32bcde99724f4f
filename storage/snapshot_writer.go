package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"airbnb-monitor/models"
)

// SnapshotWriter dumps the listings collected in one run to a CSV file, for
// offline inspection of what the extractor actually saw. Each run truncates
// the previous snapshot.
type SnapshotWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewSnapshotWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewSnapshotWriter(path string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("snapshot: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "source", "title", "price", "url", "image_url", "collected_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("snapshot: write header: %w", err)
	}
	w.Flush()

	return &SnapshotWriter{file: f, writer: w}, nil
}

// Write appends every collected listing to the snapshot.
func (s *SnapshotWriter) Write(listings []*models.Listing) error {
	for _, l := range listings {
		row := []string{
			l.ID,
			l.Source,
			l.DisplayTitle(),
			l.Price,
			l.URL,
			l.ImageURL,
			l.CollectedAt.Format(time.RFC3339),
		}
		if err := s.writer.Write(row); err != nil {
			return fmt.Errorf("snapshot: write row: %w", err)
		}
	}

	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes and closes the underlying file.
func (s *SnapshotWriter) Close() error {
	s.writer.Flush()
	return s.file.Close()
}

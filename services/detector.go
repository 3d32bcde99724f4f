package services

import (
	"airbnb-monitor/models"
	"airbnb-monitor/utils"
)

// Detector classifies the current run's listings against the seen-set.
type Detector struct {
	logger *utils.Logger
}

// NewDetector creates a Detector with the given logger.
func NewDetector(logger *utils.Logger) *Detector {
	return &Detector{logger: logger}
}

// Detect returns the listings whose id is absent from seen, preserving the
// aggregator's emission order, together with an updated set holding the union
// of seen and every current id. Every current id joins the updated set
// whether or not it was classified new, so a listing sighted this run is
// never reported again. The input set is not mutated; the caller durably
// saves the returned one.
func (d *Detector) Detect(current []*models.Listing, seen *models.SeenSet) ([]*models.Listing, *models.SeenSet) {
	updated := seen.Clone()

	var newListings []*models.Listing
	for _, l := range current {
		// Classified against the input set only: a cross-source duplicate
		// within this run is still a sighting for each source.
		if !seen.Contains(l.ID) {
			newListings = append(newListings, l)
			d.logger.Info("[detector] New listing: %s (ID: %s)", l.DisplayTitle(), l.ID)
		}
		updated.Add(l.ID)
	}

	d.logger.Info("[detector] %d current listings — %d new, seen-set grows %d → %d",
		len(current), len(newListings), seen.Len(), updated.Len())
	return newListings, updated
}

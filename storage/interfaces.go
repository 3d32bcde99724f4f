package storage

import "airbnb-monitor/models"

// SeenStore is the durable record of previously observed listing identifiers.
// Load never fails: any read or parse problem degrades to an empty set so the
// run can proceed (re-notifying is acceptable, crashing the scheduled job is
// not). Save failures are surfaced but non-fatal to the caller.
type SeenStore interface {
	Load() *models.SeenSet
	Save(set *models.SeenSet) error
	Close() error
}

// SnapshotSink persists the raw records collected during one run for offline
// inspection. It sits outside the change-detection path; failures are
// non-fatal.
type SnapshotSink interface {
	Write(listings []*models.Listing) error
	Close() error
}

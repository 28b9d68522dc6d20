package domain

import "time"

// DriverLocation is the most recent known coordinate sample for a driver.
// Samples are produced by the location-ingestion collaborator; this service
// only ever reads the latest one.
type DriverLocation struct {
	DriverID   int64
	Position   Point
	RecordedAt time.Time
}

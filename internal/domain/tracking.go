package domain

import "time"

// TripPoint is one GPS sample of an ongoing trip. Rows are append-only,
// ordered by insertion, and never updated or deleted.
type TripPoint struct {
	ID               int32     `json:"id"`
	BookingID        int32     `json:"booking_id"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	DistanceMeters   float64   `json:"distance_meters"`   // from the previous point
	CumulativeMeters float64   `json:"cumulative_meters"` // running total for the booking
	RecordedAt       time.Time `json:"recorded_at"`
	CreatedOn        time.Time `json:"created_on"`
}

// GeoSample is an inbound (lat, lon, timestamp) reading before distance
// accumulation.
type GeoSample struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recorded_at"`
}

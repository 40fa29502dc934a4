package storage

import "context"

// PhotoStorage stores pre-trip inspection photos. Photos are keyed by
// booking so a start-date change can invalidate the whole set at once.
type PhotoStorage interface {
	SavePhoto(ctx context.Context, bookingID int32, filename string, data []byte) (string, error)
	ListPhotos(ctx context.Context, bookingID int32) ([]string, error)
	// DeletePhotos removes every inspection photo for the booking. Removing
	// an empty set is not an error.
	DeletePhotos(ctx context.Context, bookingID int32) error
}

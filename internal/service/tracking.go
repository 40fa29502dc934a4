package service

import (
	"context"
	"sort"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/repository"
	"drivehub-backend/internal/utils"
)

type trackingService struct {
	bookingRepo  repository.BookingRepository
	carRepo      repository.CarRepository
	trackingRepo repository.TrackingRepository
}

func NewTrackingService(
	bookingRepo repository.BookingRepository,
	carRepo repository.CarRepository,
	trackingRepo repository.TrackingRepository,
) TrackingService {
	return &trackingService{
		bookingRepo:  bookingRepo,
		carRepo:      carRepo,
		trackingRepo: trackingRepo,
	}
}

// TrackDistance appends a batch of GPS samples to an ongoing trip and returns
// the new cumulative distance. Each sample's distance is the planar
// approximation from the previous point; the first point of a trip
// contributes zero.
func (s *trackingService) TrackDistance(ctx context.Context, renterID, bookingID int32, samples []domain.GeoSample) (float64, error) {
	if len(samples) == 0 {
		return 0, domain.Validationf("no location samples provided")
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	if booking.RenterID != renterID {
		return 0, domain.Forbiddenf("user %d is not the renter of booking %d", renterID, bookingID)
	}
	if booking.Status != domain.BookingStatusOngoing {
		return 0, domain.Conflictf("booking %d is %s; tracking requires an ongoing trip", booking.ID, booking.Status)
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].RecordedAt.Before(samples[j].RecordedAt)
	})

	last, err := s.trackingRepo.GetLastPoint(ctx, bookingID)
	if err != nil {
		return 0, err
	}

	var prevLat, prevLon, cumulative float64
	hasPrev := last != nil
	if hasPrev {
		prevLat, prevLon, cumulative = last.Latitude, last.Longitude, last.CumulativeMeters
	}

	points := make([]domain.TripPoint, 0, len(samples))
	for _, sample := range samples {
		var delta float64
		if hasPrev {
			delta = utils.PlanarDistanceMeters(prevLat, prevLon, sample.Latitude, sample.Longitude)
		}
		cumulative += delta
		points = append(points, domain.TripPoint{
			BookingID:        bookingID,
			Latitude:         sample.Latitude,
			Longitude:        sample.Longitude,
			DistanceMeters:   delta,
			CumulativeMeters: cumulative,
			RecordedAt:       sample.RecordedAt,
		})
		prevLat, prevLon = sample.Latitude, sample.Longitude
		hasPrev = true
	}

	if err := s.trackingRepo.AppendPoints(ctx, points); err != nil {
		return 0, err
	}
	return cumulative, nil
}

func (s *trackingService) GetRoute(ctx context.Context, userID, bookingID int32) ([]domain.TripPoint, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != userID {
		car, err := s.carRepo.GetByID(ctx, booking.CarID)
		if err != nil {
			return nil, err
		}
		if car.OwnerID != userID {
			return nil, domain.Forbiddenf("user %d has no access to booking %d", userID, bookingID)
		}
	}
	return s.trackingRepo.ListPoints(ctx, bookingID)
}

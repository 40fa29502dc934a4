package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/utils"
)

func TestTrackingService_TrackDistance(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	ongoing := &domain.Booking{ID: 5, RenterID: 1, CarID: 2, Status: domain.BookingStatusOngoing}

	t.Run("First Batch Starts At Zero", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		trackingRepo := new(MockTrackingRepo)
		svc := NewTrackingService(bookingRepo, new(MockCarRepo), trackingRepo)

		bookingRepo.On("GetByID", ctx, int32(5)).Return(ongoing, nil)
		trackingRepo.On("GetLastPoint", ctx, int32(5)).Return(nil, nil)

		var stored []domain.TripPoint
		trackingRepo.On("AppendPoints", ctx, mock.AnythingOfType("[]domain.TripPoint")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).([]domain.TripPoint)
			}).Return(nil)

		samples := []domain.GeoSample{
			{Latitude: 10.0, Longitude: 106.0, RecordedAt: now},
			{Latitude: 10.001, Longitude: 106.0, RecordedAt: now.Add(time.Minute)},
		}
		cumulative, err := svc.TrackDistance(ctx, 1, 5, samples)
		assert.NoError(t, err)

		step := utils.PlanarDistanceMeters(10.0, 106.0, 10.001, 106.0)
		assert.InDelta(t, step, cumulative, 0.001)
		if assert.Len(t, stored, 2) {
			assert.Zero(t, stored[0].DistanceMeters)
			assert.Zero(t, stored[0].CumulativeMeters)
			assert.InDelta(t, step, stored[1].DistanceMeters, 0.001)
			assert.InDelta(t, step, stored[1].CumulativeMeters, 0.001)
		}
	})

	t.Run("Continues From Last Point", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		trackingRepo := new(MockTrackingRepo)
		svc := NewTrackingService(bookingRepo, new(MockCarRepo), trackingRepo)

		bookingRepo.On("GetByID", ctx, int32(5)).Return(ongoing, nil)
		trackingRepo.On("GetLastPoint", ctx, int32(5)).Return(&domain.TripPoint{
			BookingID: 5, Latitude: 10.0, Longitude: 106.0, CumulativeMeters: 5000,
		}, nil)

		var stored []domain.TripPoint
		trackingRepo.On("AppendPoints", ctx, mock.AnythingOfType("[]domain.TripPoint")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).([]domain.TripPoint)
			}).Return(nil)

		cumulative, err := svc.TrackDistance(ctx, 1, 5, []domain.GeoSample{
			{Latitude: 10.002, Longitude: 106.0, RecordedAt: now},
		})
		assert.NoError(t, err)

		step := utils.PlanarDistanceMeters(10.0, 106.0, 10.002, 106.0)
		assert.InDelta(t, 5000+step, cumulative, 0.001)
		if assert.Len(t, stored, 1) {
			assert.InDelta(t, step, stored[0].DistanceMeters, 0.001)
		}
	})

	t.Run("Sorts Out Of Order Samples", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		trackingRepo := new(MockTrackingRepo)
		svc := NewTrackingService(bookingRepo, new(MockCarRepo), trackingRepo)

		bookingRepo.On("GetByID", ctx, int32(5)).Return(ongoing, nil)
		trackingRepo.On("GetLastPoint", ctx, int32(5)).Return(nil, nil)

		var stored []domain.TripPoint
		trackingRepo.On("AppendPoints", ctx, mock.AnythingOfType("[]domain.TripPoint")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).([]domain.TripPoint)
			}).Return(nil)

		_, err := svc.TrackDistance(ctx, 1, 5, []domain.GeoSample{
			{Latitude: 10.002, Longitude: 106.0, RecordedAt: now.Add(2 * time.Minute)},
			{Latitude: 10.0, Longitude: 106.0, RecordedAt: now},
			{Latitude: 10.001, Longitude: 106.0, RecordedAt: now.Add(time.Minute)},
		})
		assert.NoError(t, err)
		if assert.Len(t, stored, 3) {
			assert.True(t, stored[0].RecordedAt.Before(stored[1].RecordedAt))
			assert.True(t, stored[1].RecordedAt.Before(stored[2].RecordedAt))
			assert.InDelta(t, 10.0, stored[0].Latitude, 1e-9)
		}
	})

	t.Run("Requires Ongoing Trip", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := NewTrackingService(bookingRepo, new(MockCarRepo), new(MockTrackingRepo))

		bookingRepo.On("GetByID", ctx, int32(5)).Return(&domain.Booking{
			ID: 5, RenterID: 1, Status: domain.BookingStatusApproved,
		}, nil)

		_, err := svc.TrackDistance(ctx, 1, 5, []domain.GeoSample{{Latitude: 10, Longitude: 106, RecordedAt: now}})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Rejects Empty Batch", func(t *testing.T) {
		svc := NewTrackingService(new(MockBookingRepo), new(MockCarRepo), new(MockTrackingRepo))
		_, err := svc.TrackDistance(ctx, 1, 5, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Only The Renter Tracks", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := NewTrackingService(bookingRepo, new(MockCarRepo), new(MockTrackingRepo))
		bookingRepo.On("GetByID", ctx, int32(5)).Return(ongoing, nil)

		_, err := svc.TrackDistance(ctx, 9, 5, []domain.GeoSample{{Latitude: 10, Longitude: 106, RecordedAt: now}})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestTrackingService_GetRoute(t *testing.T) {
	ctx := context.Background()
	booking := &domain.Booking{ID: 5, RenterID: 1, CarID: 2, Status: domain.BookingStatusOngoing}
	route := []domain.TripPoint{{BookingID: 5, Latitude: 10, Longitude: 106}}

	t.Run("Renter Reads Route", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		trackingRepo := new(MockTrackingRepo)
		svc := NewTrackingService(bookingRepo, new(MockCarRepo), trackingRepo)
		bookingRepo.On("GetByID", ctx, int32(5)).Return(booking, nil)
		trackingRepo.On("ListPoints", ctx, int32(5)).Return(route, nil)

		got, err := svc.GetRoute(ctx, 1, 5)
		assert.NoError(t, err)
		assert.Equal(t, route, got)
	})

	t.Run("Owner Reads Route", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		carRepo := new(MockCarRepo)
		trackingRepo := new(MockTrackingRepo)
		svc := NewTrackingService(bookingRepo, carRepo, trackingRepo)
		bookingRepo.On("GetByID", ctx, int32(5)).Return(booking, nil)
		carRepo.On("GetByID", ctx, int32(2)).Return(&domain.Car{ID: 2, OwnerID: 10}, nil)
		trackingRepo.On("ListPoints", ctx, int32(5)).Return(route, nil)

		_, err := svc.GetRoute(ctx, 10, 5)
		assert.NoError(t, err)
	})

	t.Run("Stranger Is Forbidden", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		carRepo := new(MockCarRepo)
		svc := NewTrackingService(bookingRepo, carRepo, new(MockTrackingRepo))
		bookingRepo.On("GetByID", ctx, int32(5)).Return(booking, nil)
		carRepo.On("GetByID", ctx, int32(2)).Return(&domain.Car{ID: 2, OwnerID: 10}, nil)

		_, err := svc.GetRoute(ctx, 77, 5)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

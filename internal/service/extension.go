package service

import (
	"context"
	"fmt"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/logger"
	"drivehub-backend/internal/repository"
	"drivehub-backend/internal/storage"
	"drivehub-backend/internal/utils"
)

const (
	// An unpaid ongoing extension is reverted after this grace period.
	extensionPaymentWindow = 15 * time.Minute

	// A start shift beyond this invalidates pre-trip inspection photos.
	photoInvalidationShift = 24 * time.Hour
)

type extensionService struct {
	bookingRepo  repository.BookingRepository
	carRepo      repository.CarRepository
	contractRepo repository.ContractRepository
	userRepo     repository.UserRepository
	jobRepo      repository.JobRepository
	noteRepo     repository.NotificationRepository
	photoStorage storage.PhotoStorage
	emailSvc     EmailService
}

func NewExtensionService(
	bookingRepo repository.BookingRepository,
	carRepo repository.CarRepository,
	contractRepo repository.ContractRepository,
	userRepo repository.UserRepository,
	jobRepo repository.JobRepository,
	noteRepo repository.NotificationRepository,
	photoStorage storage.PhotoStorage,
	emailSvc EmailService,
) ExtensionService {
	return &extensionService{
		bookingRepo:  bookingRepo,
		carRepo:      carRepo,
		contractRepo: contractRepo,
		userRepo:     userRepo,
		jobRepo:      jobRepo,
		noteRepo:     noteRepo,
		photoStorage: photoStorage,
		emailSvc:     emailSvc,
	}
}

func (s *extensionService) ChangeBookingDates(ctx context.Context, renterID, bookingID int32, newStart, newEnd time.Time) (*domain.Booking, error) {
	if !newEnd.After(newStart) {
		return nil, domain.Validationf("end time must be after start time")
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != renterID {
		return nil, domain.Forbiddenf("user %d is not the renter of booking %d", renterID, bookingID)
	}

	if err := s.checkAvailability(ctx, booking, newStart, newEnd); err != nil {
		return nil, err
	}

	prev := booking.Status
	switch booking.Status {
	case domain.BookingStatusPending:
		err = s.repriceFreely(booking, newStart, newEnd)
	case domain.BookingStatusApproved, domain.BookingStatusReadyForPickup:
		err = s.shiftBeforeTrip(ctx, booking, newStart, newEnd)
	case domain.BookingStatusOngoing:
		err = s.extendOngoing(ctx, booking, newStart, newEnd)
	default:
		return nil, domain.Conflictf("booking %d cannot change dates while %s", booking.ID, booking.Status)
	}
	if err != nil {
		return nil, err
	}

	if err := s.bookingRepo.UpdateWithStatusCheck(ctx, booking, prev); err != nil {
		return nil, err
	}

	contract, err := s.contractRepo.GetByBookingID(ctx, booking.ID)
	if err == nil {
		contract.StartDate = booking.StartTime
		contract.EndDate = booking.EndTime
		if err := s.contractRepo.Update(ctx, contract); err != nil {
			return nil, err
		}
	}

	s.notifyDateChange(ctx, booking, newStart, newEnd)
	return booking, nil
}

// checkAvailability rejects the new window when it collides with another
// active booking for the car or with an owner-declared blackout.
func (s *extensionService) checkAvailability(ctx context.Context, booking *domain.Booking, newStart, newEnd time.Time) error {
	overlapping, err := s.bookingRepo.ListOverlapping(ctx, booking.CarID, newStart, newEnd, booking.ID)
	if err != nil {
		return err
	}
	for _, other := range overlapping {
		switch other.Status {
		case domain.BookingStatusApproved, domain.BookingStatusReadyForPickup, domain.BookingStatusOngoing:
			return domain.Unavailablef("car %d is booked for part of the requested window", booking.CarID)
		}
	}

	blackouts, err := s.carRepo.ListUnavailableDates(ctx, booking.CarID, newStart, newEnd)
	if err != nil {
		return err
	}
	if len(blackouts) > 0 {
		return domain.Unavailablef("car %d is unavailable for part of the requested window", booking.CarID)
	}
	return nil
}

// repriceFreely handles the PENDING branch: nothing is committed yet, so the
// window moves and the quote is recomputed from scratch.
func (s *extensionService) repriceFreely(booking *domain.Booking, newStart, newEnd time.Time) error {
	if !newStart.After(time.Now()) {
		return domain.Validationf("start time must be in the future")
	}
	quote := utils.QuoteRental(booking.DailyRateCents, newStart, newEnd)
	booking.StartTime = newStart
	booking.EndTime = newEnd
	booking.ActualReturnTime = newEnd
	booking.BasePriceCents = quote.BasePriceCents
	booking.PlatformFeeCents = quote.PlatformFeeCents
	booking.TotalAmountCents = quote.TotalCents
	return nil
}

// shiftBeforeTrip handles the APPROVED/READY_FOR_PICKUP branch. The window
// may move before the trip starts; a shift of more than 24 hours invalidates
// any pre-trip inspection photos and a forward move drops the booking back to
// APPROVED so the owner re-stages the car.
func (s *extensionService) shiftBeforeTrip(ctx context.Context, booking *domain.Booking, newStart, newEnd time.Time) error {
	if !newStart.After(time.Now()) {
		return domain.Validationf("start time must be in the future")
	}
	if booking.IsPaid && utils.RentalDays(newStart, newEnd) != utils.RentalDays(booking.StartTime, booking.EndTime) {
		return domain.Validationf("a paid booking can only shift its window, not change its duration")
	}

	shift := newStart.Sub(booking.StartTime)
	movedForward := shift > 0

	if shift > photoInvalidationShift || shift < -photoInvalidationShift {
		if err := s.photoStorage.DeletePhotos(ctx, booking.ID); err != nil {
			logger.Warn("failed to invalidate inspection photos", "booking_id", booking.ID, "error", err)
		}
	}

	if !booking.IsPaid {
		quote := utils.QuoteRental(booking.DailyRateCents, newStart, newEnd)
		booking.BasePriceCents = quote.BasePriceCents
		booking.PlatformFeeCents = quote.PlatformFeeCents
		booking.TotalAmountCents = quote.TotalCents
	}
	booking.StartTime = newStart
	booking.EndTime = newEnd
	booking.ActualReturnTime = newEnd

	if movedForward && booking.Status == domain.BookingStatusReadyForPickup {
		booking.Status = domain.BookingStatusApproved
	}
	return nil
}

// extendOngoing handles the ONGOING branch: only the end may move forward,
// the booking must already be paid, and the added days are priced like a
// fresh rental. The extension stays provisional until its payment settles; an
// unpaid one is reverted by a deferred job after the payment window.
func (s *extensionService) extendOngoing(ctx context.Context, booking *domain.Booking, newStart, newEnd time.Time) error {
	if !newStart.Equal(booking.StartTime) {
		return domain.Validationf("an ongoing booking can only extend its end date")
	}
	if !newEnd.After(booking.EndTime) {
		return domain.Validationf("new end time must be after the current end time")
	}
	if !booking.IsPaid {
		return domain.Conflictf("booking %d must be paid before it can be extended", booking.ID)
	}
	if booking.HasOpenExtension() {
		return domain.Conflictf("booking %d already has an unpaid extension open", booking.ID)
	}

	quote := utils.QuoteExtension(booking.DailyRateCents, booking.EndTime, newEnd)

	priorEnd := booking.EndTime
	booking.LastAgreedEndTime = &priorEnd
	booking.EndTime = newEnd
	booking.ActualReturnTime = newEnd
	booking.BasePriceCents += quote.BasePriceCents
	booking.PlatformFeeCents += quote.PlatformFeeCents
	booking.TotalAmountCents += quote.TotalCents
	booking.ExtensionAmountCents = &quote.TotalCents
	notPaid := false
	booking.IsExtensionPaid = &notPaid

	return s.jobRepo.Enqueue(ctx, &domain.DeferredJob{
		Name:      domain.JobRevertUnpaidExtension,
		BookingID: booking.ID,
		RunAt:     time.Now().Add(extensionPaymentWindow),
	})
}

func (s *extensionService) notifyDateChange(ctx context.Context, booking *domain.Booking, newStart, newEnd time.Time) {
	car, err := s.carRepo.GetByID(ctx, booking.CarID)
	if err != nil {
		return
	}
	carName := car.Brand + " " + car.Model
	attrs := map[string]string{"type": "BOOKING_DATES_CHANGED", "booking_id": fmt.Sprintf("%d", booking.ID)}
	message := fmt.Sprintf("Booking dates for %s changed to %s - %s",
		carName, newStart.Format(time.RFC3339), newEnd.Format(time.RFC3339))

	for _, userID := range []int32{booking.RenterID, car.OwnerID} {
		note := &domain.Notification{UserID: userID, Title: "Booking Dates Changed", Message: message, Attributes: attrs}
		if err := s.noteRepo.Create(ctx, note); err != nil {
			logger.Warn("failed to store notification", "user_id", userID, "error", err)
		}
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			continue
		}
		email := user.Email
		go func() {
			if err := s.emailSvc.SendDateChangeNotification(context.Background(), email, carName, newStart, newEnd); err != nil {
				logger.Warn("email delivery failed", "error", err)
			}
		}()
	}
}

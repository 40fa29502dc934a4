package service

import (
	"context"
	"fmt"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/logger"
	"drivehub-backend/internal/repository"
	"drivehub-backend/internal/utils"
)

const maintenanceHoldDays = 3

type bookingService struct {
	bookingRepo  repository.BookingRepository
	carRepo      repository.CarRepository
	contractRepo repository.ContractRepository
	ledgerRepo   repository.LedgerRepository
	userRepo     repository.UserRepository
	trackingRepo repository.TrackingRepository
	jobRepo      repository.JobRepository
	noteRepo     repository.NotificationRepository
	emailSvc     EmailService

	// Platform ledger account for fee bookkeeping. Zero means unconfigured,
	// in which case rejection refunds fail loudly instead of guessing.
	platformAccountID int32
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	carRepo repository.CarRepository,
	contractRepo repository.ContractRepository,
	ledgerRepo repository.LedgerRepository,
	userRepo repository.UserRepository,
	trackingRepo repository.TrackingRepository,
	jobRepo repository.JobRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	platformAccountID int32,
) BookingService {
	return &bookingService{
		bookingRepo:       bookingRepo,
		carRepo:           carRepo,
		contractRepo:      contractRepo,
		ledgerRepo:        ledgerRepo,
		userRepo:          userRepo,
		trackingRepo:      trackingRepo,
		jobRepo:           jobRepo,
		noteRepo:          noteRepo,
		emailSvc:          emailSvc,
		platformAccountID: platformAccountID,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, renterID, carID int32, start, end time.Time) (*domain.Booking, error) {
	now := time.Now()
	if !end.After(start) {
		return nil, domain.Validationf("end time must be after start time")
	}
	if !start.After(now) {
		return nil, domain.Validationf("start time must be in the future")
	}

	renter, err := s.userRepo.GetByID(ctx, renterID)
	if err != nil {
		return nil, err
	}
	if renter.Role != domain.UserRoleRenter {
		return nil, domain.Forbiddenf("user %d is not a renter", renterID)
	}

	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.bookingRepo.ListOverlapping(ctx, carID, start, end, 0)
	if err != nil {
		return nil, err
	}
	for _, other := range overlapping {
		if other.RenterID == renterID {
			return nil, domain.Unavailablef("you already have booking %d for this car in that window", other.ID)
		}
	}

	blackouts, err := s.carRepo.ListUnavailableDates(ctx, carID, start, end)
	if err != nil {
		return nil, err
	}
	if len(blackouts) > 0 {
		return nil, domain.Unavailablef("car %d is unavailable in the requested window", carID)
	}

	quote := utils.QuoteRental(car.DailyRateCents, start, end)
	booking := &domain.Booking{
		RenterID:         renterID,
		CarID:            carID,
		StartTime:        start,
		EndTime:          end,
		ActualReturnTime: end,
		DailyRateCents:   car.DailyRateCents,
		BasePriceCents:   quote.BasePriceCents,
		PlatformFeeCents: quote.PlatformFeeCents,
		TotalAmountCents: quote.TotalCents,
		Status:           domain.BookingStatusPending,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	contract := &domain.Contract{
		BookingID: booking.ID,
		StartDate: start,
		EndDate:   end,
		Status:    domain.ContractStatusPending,
	}
	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, err
	}
	booking.ContractID = contract.ID
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	owner, _ := s.userRepo.GetByID(ctx, car.OwnerID)
	if owner != nil {
		s.notify(ctx, owner.ID, "New Booking Request",
			fmt.Sprintf("%s requested to book %s %s", renter.Name, car.Brand, car.Model),
			map[string]string{"type": "BOOKING_REQUEST", "booking_id": fmt.Sprintf("%d", booking.ID)})
		s.sendEmailAsync(func() error {
			return s.emailSvc.SendBookingRequestNotification(context.Background(), owner.Email, renter.Name, car.Brand+" "+car.Model)
		})
	}

	return booking, nil
}

func (s *bookingService) ApproveBooking(ctx context.Context, ownerID, bookingID int32) (*domain.Booking, error) {
	booking, car, err := s.loadForOwner(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	prev := booking.Status
	if err := domain.ApplyTransition(booking, domain.ActionApprove); err != nil {
		return nil, err
	}

	// Every other pending request overlapping this car and window loses.
	overlapping, err := s.bookingRepo.ListOverlapping(ctx, booking.CarID, booking.StartTime, booking.EndTime, booking.ID)
	if err != nil {
		return nil, err
	}
	for i := range overlapping {
		other := &overlapping[i]
		if other.Status != domain.BookingStatusPending {
			continue
		}
		if err := s.rejectOverlapping(ctx, other, booking.ID); err != nil {
			return nil, err
		}
	}

	if err := s.bookingRepo.UpdateWithStatusCheck(ctx, booking, prev); err != nil {
		return nil, err
	}

	if err := s.carRepo.UpdateStatus(ctx, booking.CarID, domain.CarStatusRented); err != nil {
		return nil, err
	}

	contract, err := s.contractRepo.GetByBookingID(ctx, booking.ID)
	if err == nil {
		now := time.Now()
		contract.Status = domain.ContractStatusConfirmed
		contract.OwnerSignedOn = &now
		if err := s.contractRepo.Update(ctx, contract); err != nil {
			return nil, err
		}
	}

	renter, _ := s.userRepo.GetByID(ctx, booking.RenterID)
	owner, _ := s.userRepo.GetByID(ctx, ownerID)
	if renter != nil && owner != nil {
		s.notify(ctx, renter.ID, "Booking Approved",
			fmt.Sprintf("Your booking for %s %s was approved", car.Brand, car.Model),
			map[string]string{"type": "BOOKING_APPROVED", "booking_id": fmt.Sprintf("%d", booking.ID)})
		s.sendEmailAsync(func() error {
			return s.emailSvc.SendBookingApprovalNotification(context.Background(), renter.Email, car.Brand+" "+car.Model, owner.Name)
		})
	}

	return booking, nil
}

// rejectOverlapping turns down a competing pending booking when another one
// for the same car and window is approved. Paid losers get their full total
// back; they did not choose to cancel.
func (s *bookingService) rejectOverlapping(ctx context.Context, other *domain.Booking, approvedID int32) error {
	prev := other.Status
	if err := domain.ApplyTransition(other, domain.ActionReject); err != nil {
		return err
	}
	other.Note = fmt.Sprintf("another booking (%d) for the same period was approved", approvedID)
	if err := s.bookingRepo.UpdateWithStatusCheck(ctx, other, prev); err != nil {
		return err
	}
	if other.IsPaid {
		if err := s.refundRenter(ctx, other, other.TotalAmountCents, "overlapping booking rejected"); err != nil {
			return err
		}
	}

	s.notify(ctx, other.RenterID, "Booking Rejected",
		"Your booking request was rejected because the car was booked for an overlapping period",
		map[string]string{"type": "BOOKING_REJECTED", "booking_id": fmt.Sprintf("%d", other.ID)})
	return nil
}

func (s *bookingService) RejectBooking(ctx context.Context, ownerID, bookingID int32, reason string) (*domain.Booking, error) {
	booking, car, err := s.loadForOwner(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	prev := booking.Status
	if err := domain.ApplyTransition(booking, domain.ActionReject); err != nil {
		return nil, err
	}
	booking.Note = reason
	if booking.IsPaid && s.platformAccountID == 0 {
		return nil, domain.Conflictf("platform account not configured; cannot refund rejected booking %d", booking.ID)
	}

	if err := s.bookingRepo.UpdateWithStatusCheck(ctx, booking, prev); err != nil {
		return nil, err
	}

	// Money moves only after this handler has won the status flip; a lost
	// race above means some other transition already owns the booking.
	if booking.IsPaid {
		if err := s.refundRejectedPayment(ctx, booking, car.OwnerID); err != nil {
			return nil, err
		}
	}

	contract, err := s.contractRepo.GetByBookingID(ctx, booking.ID)
	if err == nil {
		contract.Status = domain.ContractStatusCancelled
		_ = s.contractRepo.Update(ctx, contract)
	}

	renter, _ := s.userRepo.GetByID(ctx, booking.RenterID)
	if renter != nil {
		s.notify(ctx, renter.ID, "Booking Rejected",
			fmt.Sprintf("Your booking for %s %s was rejected", car.Brand, car.Model),
			map[string]string{"type": "BOOKING_REJECTED", "booking_id": fmt.Sprintf("%d", booking.ID)})
		s.sendEmailAsync(func() error {
			return s.emailSvc.SendBookingRejectionNotification(context.Background(), renter.Email, car.Brand+" "+car.Model, reason)
		})
	}

	return booking, nil
}

// refundRejectedPayment splits a rejected paid booking: 90% back to the
// renter, 10% retained by the platform, with the owner's balance debited for
// the renter's share. The caller checks the platform account is configured
// before flipping the booking's status.
func (s *bookingService) refundRejectedPayment(ctx context.Context, booking *domain.Booking, ownerID int32) error {
	renterShare := utils.RejectionRefund(booking.TotalAmountCents)
	platformShare := booking.TotalAmountCents - renterShare

	if err := s.refundRenter(ctx, booking, renterShare, "booking rejected by owner"); err != nil {
		return err
	}
	if err := s.userRepo.AdjustBalance(ctx, ownerID, -renterShare); err != nil {
		return err
	}
	feeTx := &domain.Transaction{
		BookingID:   booking.ID,
		UserID:      s.platformAccountID,
		AmountCents: platformShare,
		Type:        domain.TransactionTypePlatformFee,
		Description: fmt.Sprintf("platform share retained on rejection of booking %d", booking.ID),
	}
	return s.ledgerRepo.CreateTransaction(ctx, feeTx)
}

func (s *bookingService) MarkReadyForPickup(ctx context.Context, ownerID, bookingID int32) (*domain.Booking, error) {
	booking, car, err := s.loadForOwner(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	prev := booking.Status
	if err := domain.ApplyTransition(booking, domain.ActionMarkReady); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateWithStatusCheck(ctx, booking, prev); err != nil {
		return nil, err
	}

	s.notify(ctx, booking.RenterID, "Car Ready For Pickup",
		fmt.Sprintf("%s %s is ready for pickup", car.Brand, car.Model),
		map[string]string{"type": "BOOKING_READY", "booking_id": fmt.Sprintf("%d", booking.ID)})
	return booking, nil
}

func (s *bookingService) StartTrip(ctx context.Context, renterID, bookingID int32) (*domain.Booking, error) {
	booking, err := s.loadForRenter(ctx, renterID, bookingID)
	if err != nil {
		return nil, err
	}

	prev := booking.Status
	if err := domain.ApplyTransition(booking, domain.ActionStartTrip); err != nil {
		return nil, err
	}
	booking.IsCarReturned = false

	if err := s.bookingRepo.UpdateWithStatusCheck(ctx, booking, prev); err != nil {
		return nil, err
	}

	contract, err := s.contractRepo.GetByBookingID(ctx, booking.ID)
	if err == nil && contract.RenterSignedOn == nil {
		now := time.Now()
		contract.RenterSignedOn = &now
		_ = s.contractRepo.Update(ctx, contract)
	}

	car, _ := s.carRepo.GetByID(ctx, booking.CarID)
	if car != nil {
		s.notify(ctx, car.OwnerID, "Trip Started",
			fmt.Sprintf("The trip for %s %s has started", car.Brand, car.Model),
			map[string]string{"type": "TRIP_STARTED", "booking_id": fmt.Sprintf("%d", booking.ID)})
	}
	return booking, nil
}

func (s *bookingService) CompleteTrip(ctx context.Context, renterID, bookingID int32) (*domain.Booking, error) {
	booking, err := s.loadForRenter(ctx, renterID, bookingID)
	if err != nil {
		return nil, err
	}

	prev := booking.Status
	if err := domain.ApplyTransition(booking, domain.ActionComplete); err != nil {
		return nil, err
	}

	// Freeze the trip odometer on the booking.
	distance, err := s.trackingRepo.GetCumulativeDistance(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	booking.TotalDistanceMeters = distance

	if err := s.bookingRepo.UpdateWithStatusCheck(ctx, booking, prev); err != nil {
		return nil, err
	}

	car, _ := s.carRepo.GetByID(ctx, booking.CarID)
	if car != nil {
		s.notify(ctx, car.OwnerID, "Trip Completed",
			fmt.Sprintf("The trip for %s %s is complete; please confirm the car return", car.Brand, car.Model),
			map[string]string{"type": "TRIP_COMPLETED", "booking_id": fmt.Sprintf("%d", booking.ID)})
	}
	return booking, nil
}

func (s *bookingService) ConfirmCarReturn(ctx context.Context, ownerID, bookingID int32, returnedAt time.Time) (*domain.Booking, error) {
	booking, car, err := s.loadForOwner(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := domain.CanTransition(booking.Status, domain.ActionConfirmReturn); err != nil {
		return nil, err
	}
	if booking.IsCarReturned {
		return nil, domain.Conflictf("car return for booking %d already confirmed", booking.ID)
	}
	if returnedAt.IsZero() {
		returnedAt = time.Now()
	}
	booking.ActualReturnTime = returnedAt

	refund, excessDays, excessFee := utils.ReturnSettlement(booking, returnedAt)
	booking.ExcessDays = excessDays
	booking.ExcessFeeCents = excessFee
	booking.TotalAmountCents = booking.BasePriceCents + booking.PlatformFeeCents + excessFee - refund
	booking.IsCarReturned = true

	// The conditional write is the real double-confirm guard; the flag check
	// above only gives the common case a better error before any work.
	if err := s.bookingRepo.UpdateWithReturnCheck(ctx, booking); err != nil {
		return nil, err
	}
	if refund > 0 && booking.IsPaid {
		if err := s.refundRenter(ctx, booking, refund, "early return refund"); err != nil {
			return nil, err
		}
	}

	if err := s.carRepo.UpdateStatus(ctx, booking.CarID, domain.CarStatusMaintain); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Enqueue(ctx, &domain.DeferredJob{
		Name:      domain.JobReleaseMaintenance,
		BookingID: booking.ID,
		RunAt:     time.Now().AddDate(0, 0, maintenanceHoldDays),
	}); err != nil {
		return nil, err
	}

	renter, _ := s.userRepo.GetByID(ctx, booking.RenterID)
	if renter != nil {
		s.notify(ctx, renter.ID, "Car Return Confirmed",
			fmt.Sprintf("Return of %s %s confirmed", car.Brand, car.Model),
			map[string]string{"type": "RETURN_CONFIRMED", "booking_id": fmt.Sprintf("%d", booking.ID)})
		if refund > 0 && booking.IsPaid {
			s.sendEmailAsync(func() error {
				return s.emailSvc.SendRefundNotification(context.Background(), renter.Email, car.Brand+" "+car.Model, refund)
			})
		}
	}

	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, renterID, bookingID int32, reason string) (*domain.Booking, error) {
	booking, err := s.loadForRenter(ctx, renterID, bookingID)
	if err != nil {
		return nil, err
	}

	prev := booking.Status
	if err := domain.ApplyTransition(booking, domain.ActionCancel); err != nil {
		return nil, err
	}
	booking.Note = reason

	if err := s.bookingRepo.UpdateWithStatusCheck(ctx, booking, prev); err != nil {
		return nil, err
	}

	// Refund only once this cancel has won the status flip; a concurrent
	// cancel that lost the race must not credit the renter a second time.
	if booking.IsPaid {
		refund := utils.CancellationRefund(booking.TotalAmountCents, time.Now(), booking.StartTime)
		if refund > 0 {
			if err := s.refundRenter(ctx, booking, refund, "booking cancelled"); err != nil {
				return nil, err
			}
		}
	}

	// The car was taken off the market at approval; give it back.
	if prev == domain.BookingStatusApproved || prev == domain.BookingStatusReadyForPickup {
		if _, err := s.carRepo.UpdateStatusIf(ctx, booking.CarID, domain.CarStatusRented, domain.CarStatusAvailable); err != nil {
			return nil, err
		}
	}

	contract, err := s.contractRepo.GetByBookingID(ctx, booking.ID)
	if err == nil {
		contract.Status = domain.ContractStatusCancelled
		_ = s.contractRepo.Update(ctx, contract)
	}

	car, _ := s.carRepo.GetByID(ctx, booking.CarID)
	renter, _ := s.userRepo.GetByID(ctx, renterID)
	if car != nil && renter != nil {
		s.notify(ctx, car.OwnerID, "Booking Cancelled",
			fmt.Sprintf("%s cancelled the booking for %s %s", renter.Name, car.Brand, car.Model),
			map[string]string{"type": "BOOKING_CANCELLED", "booking_id": fmt.Sprintf("%d", booking.ID)})
		if owner, err := s.userRepo.GetByID(ctx, car.OwnerID); err == nil {
			s.sendEmailAsync(func() error {
				return s.emailSvc.SendBookingCancellationNotification(context.Background(), owner.Email, renter.Name, car.Brand+" "+car.Model, reason)
			})
		}
	}

	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID == userID {
		return booking, nil
	}
	car, err := s.carRepo.GetByID(ctx, booking.CarID)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != userID {
		return nil, domain.Forbiddenf("user %d has no access to booking %d", userID, bookingID)
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByRenter(ctx, renterID, status, page, pageSize)
}

func (s *bookingService) ListOwnerBookings(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByOwner(ctx, ownerID, status, page, pageSize)
}

// loadForOwner fetches the booking and its car and verifies the caller owns
// the car.
func (s *bookingService) loadForOwner(ctx context.Context, ownerID, bookingID int32) (*domain.Booking, *domain.Car, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	car, err := s.carRepo.GetByID(ctx, booking.CarID)
	if err != nil {
		return nil, nil, err
	}
	if car.OwnerID != ownerID {
		return nil, nil, domain.Forbiddenf("user %d does not own car %d", ownerID, car.ID)
	}
	return booking, car, nil
}

// loadForRenter fetches the booking and verifies the caller is its renter.
func (s *bookingService) loadForRenter(ctx context.Context, renterID, bookingID int32) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != renterID {
		return nil, domain.Forbiddenf("user %d is not the renter of booking %d", renterID, bookingID)
	}
	return booking, nil
}

// refundRenter books a refund transaction, credits the renter's balance and
// persists the refund stamps on the booking. Callers invoke it only after
// winning the booking's conditional status write.
func (s *bookingService) refundRenter(ctx context.Context, booking *domain.Booking, amountCents int64, reason string) error {
	tx := &domain.Transaction{
		BookingID:   booking.ID,
		UserID:      booking.RenterID,
		AmountCents: amountCents,
		Type:        domain.TransactionTypeRefund,
		Description: reason,
	}
	if err := s.ledgerRepo.CreateTransaction(ctx, tx); err != nil {
		return err
	}
	if err := s.userRepo.AdjustBalance(ctx, booking.RenterID, amountCents); err != nil {
		return err
	}
	now := time.Now()
	booking.IsRefund = true
	booking.RefundAmountCents = &amountCents
	booking.RefundDate = &now
	return s.bookingRepo.Update(ctx, booking)
}

func (s *bookingService) notify(ctx context.Context, userID int32, title, message string, attrs map[string]string) {
	note := &domain.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("failed to store notification", "user_id", userID, "title", title, "error", err)
	}
}

// sendEmailAsync delivers an email off the request path; failures are logged,
// never surfaced to the caller.
func (s *bookingService) sendEmailAsync(send func() error) {
	go func() {
		if err := send(); err != nil {
			logger.Warn("email delivery failed", "error", err)
		}
	}()
}

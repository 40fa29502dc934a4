package jobs

import (
	"context"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/logger"
	"drivehub-backend/internal/utils"
)

// revertUnpaidExtension restores a booking's pre-extension end date and
// totals when the extension payment window lapsed. A no-op when the
// extension was paid (or reverted) in the meantime.
func (jr *JobRunner) revertUnpaidExtension(ctx context.Context, bookingID int32) error {
	booking, err := jr.store.BookingRepository.GetByID(ctx, bookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if !booking.HasOpenExtension() || booking.LastAgreedEndTime == nil {
		return nil
	}

	priorEnd := *booking.LastAgreedEndTime
	quote := utils.QuoteExtension(booking.DailyRateCents, priorEnd, booking.EndTime)

	booking.EndTime = priorEnd
	if booking.ActualReturnTime.After(priorEnd) {
		booking.ActualReturnTime = priorEnd
	}
	booking.BasePriceCents -= quote.BasePriceCents
	booking.PlatformFeeCents -= quote.PlatformFeeCents
	booking.TotalAmountCents -= quote.TotalCents
	booking.ExtensionAmountCents = nil
	booking.IsExtensionPaid = nil
	booking.LastAgreedEndTime = nil

	if err := jr.store.BookingRepository.UpdateWithStatusCheck(ctx, booking, booking.Status); err != nil {
		return err
	}

	contract, err := jr.store.ContractRepository.GetByBookingID(ctx, booking.ID)
	if err == nil {
		contract.EndDate = priorEnd
		if err := jr.store.ContractRepository.Update(ctx, contract); err != nil {
			logger.Error("Failed to revert contract end date", "booking_id", booking.ID, "error", err)
		}
	}

	note := &domain.Notification{
		UserID:  booking.RenterID,
		Title:   "Extension Reverted",
		Message: "Your booking extension was not paid in time and has been reverted",
		Attributes: map[string]string{
			"type":       "EXTENSION_REVERTED",
			"booking_id": formatID(booking.ID),
		},
	}
	if err := jr.store.NotificationRepository.Create(ctx, note); err != nil {
		logger.Error("Failed to store notification", "booking_id", booking.ID, "error", err)
	}

	logger.Info("Reverted unpaid extension", "booking_id", booking.ID, "restored_end", priorEnd)
	return nil
}

// releaseMaintenance flips the car back to AVAILABLE three days after a
// confirmed return, unless something else already changed its status.
func (jr *JobRunner) releaseMaintenance(ctx context.Context, bookingID int32) error {
	booking, err := jr.store.BookingRepository.GetByID(ctx, bookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}

	changed, err := jr.store.CarRepository.UpdateStatusIf(ctx, booking.CarID, domain.CarStatusMaintain, domain.CarStatusAvailable)
	if err != nil {
		return err
	}
	if changed {
		logger.Info("Released car from maintenance", "car_id", booking.CarID, "booking_id", bookingID)
	}
	return nil
}

// ExpirePendingBookings expires every PENDING booking whose start time has
// passed without the owner approving it.
func (jr *JobRunner) ExpirePendingBookings() {
	jr.runWithRecovery("ExpirePendingBookings", func() {
		ctx := context.Background()

		stale, err := jr.store.BookingRepository.ListExpirable(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list expirable bookings", "error", err)
			return
		}

		expired := 0
		for i := range stale {
			booking := &stale[i]
			prev := booking.Status
			if err := domain.ApplyTransition(booking, domain.ActionExpire); err != nil {
				continue
			}
			if err := jr.store.BookingRepository.UpdateWithStatusCheck(ctx, booking, prev); err != nil {
				logger.Error("Failed to expire booking", "booking_id", booking.ID, "error", err)
				continue
			}
			expired++

			note := &domain.Notification{
				UserID:  booking.RenterID,
				Title:   "Booking Expired",
				Message: "Your booking request expired because it was not approved before its start time",
				Attributes: map[string]string{
					"type":       "BOOKING_EXPIRED",
					"booking_id": formatID(booking.ID),
				},
			}
			if err := jr.store.NotificationRepository.Create(ctx, note); err != nil {
				logger.Error("Failed to store notification", "booking_id", booking.ID, "error", err)
			}
		}

		if expired > 0 {
			logger.Info("Expired stale pending bookings", "count", expired)
		}
	})
}

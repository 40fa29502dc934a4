package service

import (
	"context"
	"fmt"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/logger"
	"drivehub-backend/internal/payment"
	"drivehub-backend/internal/repository"
	"drivehub-backend/internal/utils"
)

type paymentService struct {
	bookingRepo    repository.BookingRepository
	carRepo        repository.CarRepository
	userRepo       repository.UserRepository
	ledgerRepo     repository.LedgerRepository
	settlementRepo repository.SettlementRepository
	noteRepo       repository.NotificationRepository
	provider       payment.Provider
	emailSvc       EmailService

	platformAccountID int32
}

func NewPaymentService(
	bookingRepo repository.BookingRepository,
	carRepo repository.CarRepository,
	userRepo repository.UserRepository,
	ledgerRepo repository.LedgerRepository,
	settlementRepo repository.SettlementRepository,
	noteRepo repository.NotificationRepository,
	provider payment.Provider,
	emailSvc EmailService,
	platformAccountID int32,
) PaymentService {
	return &paymentService{
		bookingRepo:       bookingRepo,
		carRepo:           carRepo,
		userRepo:          userRepo,
		ledgerRepo:        ledgerRepo,
		settlementRepo:    settlementRepo,
		noteRepo:          noteRepo,
		provider:          provider,
		emailSvc:          emailSvc,
		platformAccountID: platformAccountID,
	}
}

func (s *paymentService) InitiatePayment(ctx context.Context, renterID, bookingID int32) (*payment.Link, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != renterID {
		return nil, domain.Forbiddenf("user %d is not the renter of booking %d", renterID, bookingID)
	}

	switch booking.Status {
	case domain.BookingStatusPending:
		return nil, domain.Conflictf("booking %d is not approved yet", booking.ID)
	case domain.BookingStatusRejected, domain.BookingStatusCancelled, domain.BookingStatusExpired:
		return nil, domain.Conflictf("booking %d is %s and cannot be paid", booking.ID, booking.Status)
	}

	var amount int64
	var description string
	if booking.HasOpenExtension() {
		amount = *booking.ExtensionAmountCents
		description = fmt.Sprintf("extension payment for booking %d", booking.ID)
	} else {
		if booking.IsPaid {
			return nil, domain.Conflictf("booking %d is already paid", booking.ID)
		}
		amount = booking.TotalAmountCents
		description = fmt.Sprintf("payment for booking %d", booking.ID)
	}
	if amount <= 0 {
		return nil, domain.Validationf("booking %d has no positive amount due", booking.ID)
	}

	renter, err := s.userRepo.GetByID(ctx, renterID)
	if err != nil {
		return nil, err
	}

	link, err := s.provider.CreateLink(ctx, payment.LinkRequest{
		BookingID:   booking.ID,
		AmountCents: amount,
		Description: description,
		PayerName:   renter.Name,
	})
	if err != nil {
		return nil, err
	}

	booking.PaymentRef = &link.OrderCode
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "payment link created",
		"booking_id", booking.ID, "order_code", link.OrderCode, "amount_cents", amount)
	return link, nil
}

// ReconcileWebhook turns an at-least-once payment notification into exactly
// one settlement. The ledger write is a single repository transaction; a
// duplicate delivery returns domain.ErrConflict with no side effects.
func (s *paymentService) ReconcileWebhook(ctx context.Context, event *payment.WebhookEvent) (*domain.Booking, error) {
	if !event.Success {
		return nil, domain.Validationf("payment notification for order %s did not report success", event.OrderCode)
	}

	booking, err := s.bookingRepo.GetByOrderCode(ctx, event.OrderCode)
	if err != nil {
		// A replay after the first reconciliation finds no booking holding
		// the reference anymore; the ledger still knows the order code.
		if _, txErr := s.ledgerRepo.GetTransactionByOrderCode(ctx, event.OrderCode); txErr == nil {
			return nil, domain.Conflictf("order %s already reconciled", event.OrderCode)
		}
		return nil, err
	}

	car, err := s.carRepo.GetByID(ctx, booking.CarID)
	if err != nil {
		return nil, err
	}

	settlement, err := s.buildSettlement(booking, car.OwnerID, event)
	if err != nil {
		return nil, err
	}

	// SettleBooking also enqueues the unlock-balance job inside the same
	// transaction, so a settled payment can never lose its release schedule.
	if err := s.settlementRepo.SettleBooking(ctx, booking, settlement); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "payment reconciled",
		"booking_id", booking.ID, "order_code", event.OrderCode, "amount_cents", event.AmountCents)
	s.notifyPaid(ctx, booking, car, event.AmountCents)
	return booking, nil
}

// buildSettlement computes the three ledger rows and the locked balance for a
// successful payment, and flips the booking's paid flags in memory. The
// extension branch derives its base/fee split deterministically from the
// pre-extension end date rather than trusting any amount stored on the row.
func (s *paymentService) buildSettlement(booking *domain.Booking, ownerID int32, event *payment.WebhookEvent) (*domain.PaymentSettlement, error) {
	if s.platformAccountID == 0 {
		return nil, domain.Conflictf("platform account not configured; cannot reconcile order %s", event.OrderCode)
	}

	var renterType domain.TransactionType
	var baseCents, feeCents int64
	if booking.HasOpenExtension() {
		if booking.LastAgreedEndTime == nil {
			return nil, domain.Conflictf("booking %d has an extension without a prior end date", booking.ID)
		}
		quote := utils.QuoteExtension(booking.DailyRateCents, *booking.LastAgreedEndTime, booking.EndTime)
		renterType = domain.TransactionTypeExtensionPayment
		baseCents = quote.BasePriceCents
		feeCents = quote.PlatformFeeCents

		paid := true
		booking.IsExtensionPaid = &paid
		booking.ExtensionAmountCents = nil
		booking.LastAgreedEndTime = nil
	} else {
		renterType = domain.TransactionTypeBookingPayment
		baseCents = booking.BasePriceCents
		feeCents = booking.PlatformFeeCents
		booking.IsPaid = true
	}
	totalCents := baseCents + feeCents
	if event.AmountCents != totalCents {
		return nil, domain.Validationf("order %s paid %d cents, expected %d", event.OrderCode, event.AmountCents, totalCents)
	}
	booking.PaymentRef = nil

	days := utils.RentalDays(booking.StartTime, booking.EndTime)
	return &domain.PaymentSettlement{
		BookingID: booking.ID,
		OrderCode: event.OrderCode,
		RenterDebit: domain.Transaction{
			BookingID:   booking.ID,
			UserID:      booking.RenterID,
			AmountCents: -totalCents,
			Type:        renterType,
			OrderCode:   event.OrderCode,
			Description: fmt.Sprintf("payment for booking %d", booking.ID),
		},
		PlatformFee: domain.Transaction{
			BookingID:   booking.ID,
			UserID:      s.platformAccountID,
			AmountCents: feeCents,
			Type:        domain.TransactionTypePlatformFee,
			OrderCode:   event.OrderCode,
			Description: fmt.Sprintf("platform fee for booking %d", booking.ID),
		},
		OwnerEarning: domain.Transaction{
			BookingID:   booking.ID,
			UserID:      ownerID,
			AmountCents: baseCents,
			Type:        domain.TransactionTypeOwnerEarning,
			OrderCode:   event.OrderCode,
			Description: fmt.Sprintf("locked earning for booking %d", booking.ID),
		},
		LockedBalance: domain.LockedBalance{
			UserID:      ownerID,
			BookingID:   booking.ID,
			AmountCents: baseCents,
			UnlockAt:    utils.UnlockTime(booking.StartTime, days),
		},
	}, nil
}

func (s *paymentService) notifyPaid(ctx context.Context, booking *domain.Booking, car *domain.Car, amountCents int64) {
	carName := car.Brand + " " + car.Model
	attrs := map[string]string{"type": "PAYMENT_RECEIVED", "booking_id": fmt.Sprintf("%d", booking.ID)}

	for _, userID := range []int32{booking.RenterID, car.OwnerID} {
		note := &domain.Notification{
			UserID:     userID,
			Title:      "Payment Received",
			Message:    fmt.Sprintf("Payment of %d cents received for %s", amountCents, carName),
			Attributes: attrs,
		}
		if err := s.noteRepo.Create(ctx, note); err != nil {
			logger.Warn("failed to store notification", "user_id", userID, "error", err)
		}
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			continue
		}
		email := user.Email
		go func() {
			if err := s.emailSvc.SendPaymentReceivedNotification(context.Background(), email, carName, amountCents); err != nil {
				logger.Warn("email delivery failed", "error", err)
			}
		}()
	}
}

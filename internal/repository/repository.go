package repository

import (
	"context"
	"time"

	"drivehub-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	AdjustBalance(ctx context.Context, userID int32, deltaCents int64) error
}

type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) error
	GetByID(ctx context.Context, id int32) (*domain.Car, error)
	UpdateStatus(ctx context.Context, carID int32, status domain.CarStatus) error
	// UpdateStatusIf sets the status only when the car is still in the
	// expected state; returns (false, nil) when another writer won the race.
	UpdateStatusIf(ctx context.Context, carID int32, expected, next domain.CarStatus) (bool, error)
	ListUnavailableDates(ctx context.Context, carID int32, from, to time.Time) ([]domain.CarUnavailableDate, error)
	AddUnavailableDate(ctx context.Context, d *domain.CarUnavailableDate) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	GetByOrderCode(ctx context.Context, orderCode string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	// UpdateWithStatusCheck persists the booking only if its row still holds
	// expectedStatus, so two concurrent transitions cannot both succeed from
	// the same source state. Returns domain.ErrConflict when the check fails.
	UpdateWithStatusCheck(ctx context.Context, booking *domain.Booking, expectedStatus domain.BookingStatus) error
	// UpdateWithReturnCheck persists a completed booking's return settlement
	// only if the row has not already been marked returned, so concurrent
	// return confirmations cannot both win. Returns domain.ErrConflict when
	// the row was already returned or is no longer COMPLETED.
	UpdateWithReturnCheck(ctx context.Context, booking *domain.Booking) error
	ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	// ListOverlapping returns non-terminal bookings of a car intersecting the
	// window, excluding excludeID (0 to exclude nothing).
	ListOverlapping(ctx context.Context, carID int32, start, end time.Time, excludeID int32) ([]domain.Booking, error)
	ListExpirable(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
}

type ContractRepository interface {
	Create(ctx context.Context, contract *domain.Contract) error
	GetByBookingID(ctx context.Context, bookingID int32) (*domain.Contract, error)
	Update(ctx context.Context, contract *domain.Contract) error
}

type LedgerRepository interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	GetTransactionByOrderCode(ctx context.Context, orderCode string) (*domain.Transaction, error)
	HasSettlement(ctx context.Context, bookingID int32) (bool, error)
	ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Transaction, int32, error)
	GetLockedBalance(ctx context.Context, bookingID int32) (*domain.LockedBalance, error)
	// ReleaseLockedBalance marks the hold released and credits the owner's
	// spendable balance in one transaction; returns (false, nil) when the
	// hold was already released.
	ReleaseLockedBalance(ctx context.Context, bookingID int32, releasedAt time.Time) (bool, error)
	GetSummary(ctx context.Context, userID int32) (*domain.LedgerSummary, error)
}

// SettlementRepository performs the webhook reconciliation write: one SQL
// transaction that locks the booking row, verifies no settlement exists for
// the order code or (for an initial payment) the booking, inserts the three
// ledger rows, the locked balance and its unlock job, and persists the
// booking's paid flags. A duplicate delivery gets domain.ErrConflict and
// writes nothing.
type SettlementRepository interface {
	SettleBooking(ctx context.Context, booking *domain.Booking, settlement *domain.PaymentSettlement) error
}

type TrackingRepository interface {
	AppendPoints(ctx context.Context, points []domain.TripPoint) error
	GetLastPoint(ctx context.Context, bookingID int32) (*domain.TripPoint, error)
	GetCumulativeDistance(ctx context.Context, bookingID int32) (float64, error)
	ListPoints(ctx context.Context, bookingID int32) ([]domain.TripPoint, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type JobRepository interface {
	Enqueue(ctx context.Context, job *domain.DeferredJob) error
	// ListDue returns unexecuted jobs whose run-at time has passed.
	ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.DeferredJob, error)
	MarkExecuted(ctx context.Context, jobID int32, executedAt time.Time) error
	RecordAttempt(ctx context.Context, jobID int32) error
}

package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/payment"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) AdjustBalance(ctx context.Context, userID int32, deltaCents int64) error {
	args := m.Called(ctx, userID, deltaCents)
	return args.Error(0)
}

// MockCarRepo
type MockCarRepo struct {
	mock.Mock
}

func (m *MockCarRepo) Create(ctx context.Context, car *domain.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}
func (m *MockCarRepo) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}
func (m *MockCarRepo) UpdateStatus(ctx context.Context, carID int32, status domain.CarStatus) error {
	args := m.Called(ctx, carID, status)
	return args.Error(0)
}
func (m *MockCarRepo) UpdateStatusIf(ctx context.Context, carID int32, expected, next domain.CarStatus) (bool, error) {
	args := m.Called(ctx, carID, expected, next)
	return args.Bool(0), args.Error(1)
}
func (m *MockCarRepo) ListUnavailableDates(ctx context.Context, carID int32, from, to time.Time) ([]domain.CarUnavailableDate, error) {
	args := m.Called(ctx, carID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CarUnavailableDate), args.Error(1)
}
func (m *MockCarRepo) AddUnavailableDate(ctx context.Context, d *domain.CarUnavailableDate) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetByOrderCode(ctx context.Context, orderCode string) (*domain.Booking, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}
func (m *MockBookingRepo) UpdateWithStatusCheck(ctx context.Context, booking *domain.Booking, expectedStatus domain.BookingStatus) error {
	args := m.Called(ctx, booking, expectedStatus)
	return args.Error(0)
}
func (m *MockBookingRepo) UpdateWithReturnCheck(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}
func (m *MockBookingRepo) ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListOverlapping(ctx context.Context, carID int32, start, end time.Time, excludeID int32) ([]domain.Booking, error) {
	args := m.Called(ctx, carID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListExpirable(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockContractRepo
type MockContractRepo struct {
	mock.Mock
}

func (m *MockContractRepo) Create(ctx context.Context, contract *domain.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}
func (m *MockContractRepo) GetByBookingID(ctx context.Context, bookingID int32) (*domain.Contract, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}
func (m *MockContractRepo) Update(ctx context.Context, contract *domain.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

// MockLedgerRepo
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockLedgerRepo) GetTransactionByOrderCode(ctx context.Context, orderCode string) (*domain.Transaction, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerRepo) HasSettlement(ctx context.Context, bookingID int32) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}
func (m *MockLedgerRepo) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockLedgerRepo) GetLockedBalance(ctx context.Context, bookingID int32) (*domain.LockedBalance, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LockedBalance), args.Error(1)
}
func (m *MockLedgerRepo) ReleaseLockedBalance(ctx context.Context, bookingID int32, releasedAt time.Time) (bool, error) {
	args := m.Called(ctx, bookingID, releasedAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockLedgerRepo) GetSummary(ctx context.Context, userID int32) (*domain.LedgerSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSummary), args.Error(1)
}

// MockSettlementRepo
type MockSettlementRepo struct {
	mock.Mock
}

func (m *MockSettlementRepo) SettleBooking(ctx context.Context, booking *domain.Booking, settlement *domain.PaymentSettlement) error {
	args := m.Called(ctx, booking, settlement)
	return args.Error(0)
}

// MockTrackingRepo
type MockTrackingRepo struct {
	mock.Mock
}

func (m *MockTrackingRepo) AppendPoints(ctx context.Context, points []domain.TripPoint) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}
func (m *MockTrackingRepo) GetLastPoint(ctx context.Context, bookingID int32) (*domain.TripPoint, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TripPoint), args.Error(1)
}
func (m *MockTrackingRepo) GetCumulativeDistance(ctx context.Context, bookingID int32) (float64, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(float64), args.Error(1)
}
func (m *MockTrackingRepo) ListPoints(ctx context.Context, bookingID int32) ([]domain.TripPoint, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TripPoint), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockJobRepo
type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Enqueue(ctx context.Context, job *domain.DeferredJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}
func (m *MockJobRepo) ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.DeferredJob, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeferredJob), args.Error(1)
}
func (m *MockJobRepo) MarkExecuted(ctx context.Context, jobID int32, executedAt time.Time) error {
	args := m.Called(ctx, jobID, executedAt)
	return args.Error(0)
}
func (m *MockJobRepo) RecordAttempt(ctx context.Context, jobID int32) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, renterName, carName string) error {
	args := m.Called(ctx, ownerEmail, renterName, carName)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingApprovalNotification(ctx context.Context, renterEmail, carName, ownerName string) error {
	args := m.Called(ctx, renterEmail, carName, ownerName)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingRejectionNotification(ctx context.Context, renterEmail, carName, reason string) error {
	args := m.Called(ctx, renterEmail, carName, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingCancellationNotification(ctx context.Context, ownerEmail, renterName, carName, reason string) error {
	args := m.Called(ctx, ownerEmail, renterName, carName, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingCompletionNotification(ctx context.Context, email, role, carName string, amountCents int64) error {
	args := m.Called(ctx, email, role, carName, amountCents)
	return args.Error(0)
}
func (m *MockEmailService) SendDateChangeNotification(ctx context.Context, email, carName string, newStart, newEnd time.Time) error {
	args := m.Called(ctx, email, carName, newStart, newEnd)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentReceivedNotification(ctx context.Context, email, carName string, amountCents int64) error {
	args := m.Called(ctx, email, carName, amountCents)
	return args.Error(0)
}
func (m *MockEmailService) SendRefundNotification(ctx context.Context, renterEmail, carName string, amountCents int64) error {
	args := m.Called(ctx, renterEmail, carName, amountCents)
	return args.Error(0)
}

// MockPhotoStorage
type MockPhotoStorage struct {
	mock.Mock
}

func (m *MockPhotoStorage) SavePhoto(ctx context.Context, bookingID int32, filename string, data []byte) (string, error) {
	args := m.Called(ctx, bookingID, filename, data)
	return args.String(0), args.Error(1)
}
func (m *MockPhotoStorage) ListPhotos(ctx context.Context, bookingID int32) ([]string, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockPhotoStorage) DeletePhotos(ctx context.Context, bookingID int32) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

// MockPaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateLink(ctx context.Context, req payment.LinkRequest) (*payment.Link, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Link), args.Error(1)
}
func (m *MockPaymentProvider) VerifyWebhook(body []byte, signature string) (*payment.WebhookEvent, error) {
	args := m.Called(body, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookEvent), args.Error(1)
}

package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"drivehub-backend/internal/config"
	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/jobs"
	"drivehub-backend/internal/repository/postgres"
)

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	return m.Called(ctx, booking).Error(0)
}
func (m *mockBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *mockBookingRepo) GetByOrderCode(ctx context.Context, orderCode string) (*domain.Booking, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *mockBookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	return m.Called(ctx, booking).Error(0)
}
func (m *mockBookingRepo) UpdateWithStatusCheck(ctx context.Context, booking *domain.Booking, expectedStatus domain.BookingStatus) error {
	return m.Called(ctx, booking, expectedStatus).Error(0)
}
func (m *mockBookingRepo) UpdateWithReturnCheck(ctx context.Context, booking *domain.Booking) error {
	return m.Called(ctx, booking).Error(0)
}
func (m *mockBookingRepo) ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *mockBookingRepo) ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *mockBookingRepo) ListOverlapping(ctx context.Context, carID int32, start, end time.Time, excludeID int32) ([]domain.Booking, error) {
	args := m.Called(ctx, carID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *mockBookingRepo) ListExpirable(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type mockCarRepo struct{ mock.Mock }

func (m *mockCarRepo) Create(ctx context.Context, car *domain.Car) error {
	return m.Called(ctx, car).Error(0)
}
func (m *mockCarRepo) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}
func (m *mockCarRepo) UpdateStatus(ctx context.Context, carID int32, status domain.CarStatus) error {
	return m.Called(ctx, carID, status).Error(0)
}
func (m *mockCarRepo) UpdateStatusIf(ctx context.Context, carID int32, expected, next domain.CarStatus) (bool, error) {
	args := m.Called(ctx, carID, expected, next)
	return args.Bool(0), args.Error(1)
}
func (m *mockCarRepo) ListUnavailableDates(ctx context.Context, carID int32, from, to time.Time) ([]domain.CarUnavailableDate, error) {
	args := m.Called(ctx, carID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CarUnavailableDate), args.Error(1)
}
func (m *mockCarRepo) AddUnavailableDate(ctx context.Context, d *domain.CarUnavailableDate) error {
	return m.Called(ctx, d).Error(0)
}

type mockContractRepo struct{ mock.Mock }

func (m *mockContractRepo) Create(ctx context.Context, contract *domain.Contract) error {
	return m.Called(ctx, contract).Error(0)
}
func (m *mockContractRepo) GetByBookingID(ctx context.Context, bookingID int32) (*domain.Contract, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}
func (m *mockContractRepo) Update(ctx context.Context, contract *domain.Contract) error {
	return m.Called(ctx, contract).Error(0)
}

type mockLedgerRepo struct{ mock.Mock }

func (m *mockLedgerRepo) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}
func (m *mockLedgerRepo) GetTransactionByOrderCode(ctx context.Context, orderCode string) (*domain.Transaction, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *mockLedgerRepo) HasSettlement(ctx context.Context, bookingID int32) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}
func (m *mockLedgerRepo) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int32), args.Error(2)
}
func (m *mockLedgerRepo) GetLockedBalance(ctx context.Context, bookingID int32) (*domain.LockedBalance, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LockedBalance), args.Error(1)
}
func (m *mockLedgerRepo) ReleaseLockedBalance(ctx context.Context, bookingID int32, releasedAt time.Time) (bool, error) {
	args := m.Called(ctx, bookingID, releasedAt)
	return args.Bool(0), args.Error(1)
}
func (m *mockLedgerRepo) GetSummary(ctx context.Context, userID int32) (*domain.LedgerSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSummary), args.Error(1)
}

type mockNotificationRepo struct{ mock.Mock }

func (m *mockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	return m.Called(ctx, note).Error(0)
}
func (m *mockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	return m.Called(ctx, id, userID).Error(0)
}

type mockJobRepo struct{ mock.Mock }

func (m *mockJobRepo) Enqueue(ctx context.Context, job *domain.DeferredJob) error {
	return m.Called(ctx, job).Error(0)
}
func (m *mockJobRepo) ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.DeferredJob, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeferredJob), args.Error(1)
}
func (m *mockJobRepo) MarkExecuted(ctx context.Context, jobID int32, executedAt time.Time) error {
	return m.Called(ctx, jobID, executedAt).Error(0)
}
func (m *mockJobRepo) RecordAttempt(ctx context.Context, jobID int32) error {
	return m.Called(ctx, jobID).Error(0)
}

type runnerMocks struct {
	bookingRepo  *mockBookingRepo
	carRepo      *mockCarRepo
	contractRepo *mockContractRepo
	ledgerRepo   *mockLedgerRepo
	noteRepo     *mockNotificationRepo
	jobRepo      *mockJobRepo
}

func newJobRunner(t *testing.T) (*jobs.JobRunner, *runnerMocks) {
	t.Helper()
	m := &runnerMocks{
		bookingRepo:  new(mockBookingRepo),
		carRepo:      new(mockCarRepo),
		contractRepo: new(mockContractRepo),
		ledgerRepo:   new(mockLedgerRepo),
		noteRepo:     new(mockNotificationRepo),
		jobRepo:      new(mockJobRepo),
	}
	store := &postgres.Store{
		BookingRepository:      m.bookingRepo,
		CarRepository:          m.carRepo,
		ContractRepository:     m.contractRepo,
		LedgerRepository:       m.ledgerRepo,
		NotificationRepository: m.noteRepo,
		JobRepository:          m.jobRepo,
	}
	return jobs.NewJobRunner(nil, store, &config.Config{}), m
}

func dueJob(name string) []domain.DeferredJob {
	return []domain.DeferredJob{{ID: 1, Name: name, BookingID: 5, RunAt: time.Now().Add(-time.Minute)}}
}

func expectDrain(m *runnerMocks, name string) {
	m.jobRepo.On("ListDue", mock.Anything, mock.AnythingOfType("time.Time"), int32(100)).Return(dueJob(name), nil)
	m.jobRepo.On("RecordAttempt", mock.Anything, int32(1)).Return(nil).Once()
}

func TestProcessDueJobs_RevertUnpaidExtension(t *testing.T) {
	start := time.Now().Add(-24 * time.Hour)
	priorEnd := start.AddDate(0, 0, 5)

	newExtended := func() *domain.Booking {
		amount := int64(33000)
		notPaid := false
		prior := priorEnd
		return &domain.Booking{
			ID: 5, RenterID: 1, CarID: 2,
			StartTime: start, EndTime: priorEnd.AddDate(0, 0, 3), ActualReturnTime: priorEnd.AddDate(0, 0, 3),
			DailyRateCents: 10000, BasePriceCents: 80000, PlatformFeeCents: 8000, TotalAmountCents: 88000,
			IsPaid: true, Status: domain.BookingStatusOngoing,
			ExtensionAmountCents: &amount, IsExtensionPaid: &notPaid, LastAgreedEndTime: &prior,
		}
	}

	t.Run("Restores Prior End And Totals Exactly", func(t *testing.T) {
		booking := newExtended()
		jr, m := newJobRunner(t)
		expectDrain(m, domain.JobRevertUnpaidExtension)
		m.bookingRepo.On("GetByID", mock.Anything, int32(5)).Return(booking, nil)
		m.bookingRepo.On("UpdateWithStatusCheck", mock.Anything, booking, domain.BookingStatusOngoing).Return(nil).Once()
		m.contractRepo.On("GetByBookingID", mock.Anything, int32(5)).Return(&domain.Contract{ID: 3, BookingID: 5}, nil)
		m.contractRepo.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Contract) bool {
			return c.EndDate.Equal(priorEnd)
		})).Return(nil).Once()
		m.noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
		m.jobRepo.On("MarkExecuted", mock.Anything, int32(1), mock.AnythingOfType("time.Time")).Return(nil).Once()

		jr.ProcessDueJobs()

		assert.True(t, booking.EndTime.Equal(priorEnd))
		assert.True(t, booking.ActualReturnTime.Equal(priorEnd))
		assert.Equal(t, int64(50000), booking.BasePriceCents)
		assert.Equal(t, int64(5000), booking.PlatformFeeCents)
		assert.Equal(t, int64(55000), booking.TotalAmountCents)
		assert.Nil(t, booking.ExtensionAmountCents)
		assert.Nil(t, booking.IsExtensionPaid)
		assert.Nil(t, booking.LastAgreedEndTime)
		m.bookingRepo.AssertExpectations(t)
		m.jobRepo.AssertExpectations(t)
	})

	t.Run("No Op When Extension Was Paid", func(t *testing.T) {
		booking := newExtended()
		paid := true
		booking.IsExtensionPaid = &paid
		jr, m := newJobRunner(t)
		expectDrain(m, domain.JobRevertUnpaidExtension)
		m.bookingRepo.On("GetByID", mock.Anything, int32(5)).Return(booking, nil)
		m.jobRepo.On("MarkExecuted", mock.Anything, int32(1), mock.AnythingOfType("time.Time")).Return(nil).Once()

		jr.ProcessDueJobs()

		assert.Equal(t, int64(88000), booking.TotalAmountCents)
		m.bookingRepo.AssertNotCalled(t, "UpdateWithStatusCheck", mock.Anything, mock.Anything, mock.Anything)
		m.jobRepo.AssertExpectations(t)
	})

	t.Run("Deleted Booking Retires The Job", func(t *testing.T) {
		jr, m := newJobRunner(t)
		expectDrain(m, domain.JobRevertUnpaidExtension)
		m.bookingRepo.On("GetByID", mock.Anything, int32(5)).Return(nil, domain.NotFoundf("booking 5"))
		m.jobRepo.On("MarkExecuted", mock.Anything, int32(1), mock.AnythingOfType("time.Time")).Return(nil).Once()

		jr.ProcessDueJobs()
		m.jobRepo.AssertExpectations(t)
	})

	t.Run("Transient Failure Keeps The Job Queued", func(t *testing.T) {
		jr, m := newJobRunner(t)
		expectDrain(m, domain.JobRevertUnpaidExtension)
		m.bookingRepo.On("GetByID", mock.Anything, int32(5)).Return(nil, errors.New("connection reset"))

		jr.ProcessDueJobs()
		m.jobRepo.AssertNotCalled(t, "MarkExecuted", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProcessDueJobs_UnlockBalance(t *testing.T) {
	t.Run("Releases The Hold", func(t *testing.T) {
		jr, m := newJobRunner(t)
		expectDrain(m, domain.JobUnlockBalance)
		m.ledgerRepo.On("ReleaseLockedBalance", mock.Anything, int32(5), mock.AnythingOfType("time.Time")).Return(true, nil).Once()
		m.jobRepo.On("MarkExecuted", mock.Anything, int32(1), mock.AnythingOfType("time.Time")).Return(nil).Once()

		jr.ProcessDueJobs()
		m.ledgerRepo.AssertExpectations(t)
		m.jobRepo.AssertExpectations(t)
	})

	t.Run("Already Released Still Retires The Job", func(t *testing.T) {
		jr, m := newJobRunner(t)
		expectDrain(m, domain.JobUnlockBalance)
		m.ledgerRepo.On("ReleaseLockedBalance", mock.Anything, int32(5), mock.AnythingOfType("time.Time")).Return(false, nil).Once()
		m.jobRepo.On("MarkExecuted", mock.Anything, int32(1), mock.AnythingOfType("time.Time")).Return(nil).Once()

		jr.ProcessDueJobs()
		m.jobRepo.AssertExpectations(t)
	})
}

func TestProcessDueJobs_ReleaseMaintenance(t *testing.T) {
	jr, m := newJobRunner(t)
	expectDrain(m, domain.JobReleaseMaintenance)
	m.bookingRepo.On("GetByID", mock.Anything, int32(5)).Return(&domain.Booking{ID: 5, CarID: 2}, nil)
	m.carRepo.On("UpdateStatusIf", mock.Anything, int32(2), domain.CarStatusMaintain, domain.CarStatusAvailable).Return(true, nil).Once()
	m.jobRepo.On("MarkExecuted", mock.Anything, int32(1), mock.AnythingOfType("time.Time")).Return(nil).Once()

	jr.ProcessDueJobs()
	m.carRepo.AssertExpectations(t)
	m.jobRepo.AssertExpectations(t)
}

func TestProcessDueJobs_UnknownNameRetired(t *testing.T) {
	jr, m := newJobRunner(t)
	expectDrain(m, "SEND_FAX")
	m.jobRepo.On("MarkExecuted", mock.Anything, int32(1), mock.AnythingOfType("time.Time")).Return(nil).Once()

	jr.ProcessDueJobs()
	m.jobRepo.AssertExpectations(t)
}

func TestExpirePendingBookings(t *testing.T) {
	start := time.Now().Add(-time.Hour)
	stale := []domain.Booking{
		{ID: 6, RenterID: 1, StartTime: start, Status: domain.BookingStatusPending},
		{ID: 7, RenterID: 2, StartTime: start, Status: domain.BookingStatusPending},
	}

	jr, m := newJobRunner(t)
	m.bookingRepo.On("ListExpirable", mock.Anything, mock.AnythingOfType("time.Time")).Return(stale, nil)
	m.bookingRepo.On("UpdateWithStatusCheck", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.ID == 6
	}), domain.BookingStatusPending).Return(nil).Once()
	// Booking 7 was approved in the meantime; the conditional write loses.
	m.bookingRepo.On("UpdateWithStatusCheck", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.ID == 7
	}), domain.BookingStatusPending).Return(domain.Conflictf("booking 7 is no longer PENDING")).Once()
	m.noteRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == 1
	})).Return(nil).Once()

	jr.ExpirePendingBookings()

	m.bookingRepo.AssertExpectations(t)
	m.noteRepo.AssertExpectations(t)
}

package postgres

import (
	"database/sql"

	"drivehub-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.CarRepository
	repository.BookingRepository
	repository.ContractRepository
	repository.LedgerRepository
	repository.SettlementRepository
	repository.TrackingRepository
	repository.NotificationRepository
	repository.JobRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		CarRepository:          NewCarRepository(db),
		BookingRepository:      NewBookingRepository(db),
		ContractRepository:     NewContractRepository(db),
		LedgerRepository:       NewLedgerRepository(db),
		SettlementRepository:   NewSettlementRepository(db),
		TrackingRepository:     NewTrackingRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		JobRepository:          NewJobRepository(db),
	}
}

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"drivehub-backend/internal/repository/postgres"
)

func TestLedgerRepository_ReleaseLockedBalance(t *testing.T) {
	ctx := context.Background()
	releasedAt := time.Now()

	t.Run("Releases Lock And Credits Owner", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		repo := postgres.NewLedgerRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, user_id, amount_cents FROM locked_balances").
			WithArgs(int32(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount_cents"}).AddRow(7, 10, 50000))
		mock.ExpectExec("UPDATE locked_balances SET released_on").
			WithArgs(releasedAt, int32(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET balance_cents").
			WithArgs(int64(50000), int32(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		released, err := repo.ReleaseLockedBalance(ctx, 5, releasedAt)
		assert.NoError(t, err)
		assert.True(t, released)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Released Is A No Op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		repo := postgres.NewLedgerRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, user_id, amount_cents FROM locked_balances").
			WithArgs(int32(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount_cents"}))
		mock.ExpectRollback()

		released, err := repo.ReleaseLockedBalance(ctx, 5, releasedAt)
		assert.NoError(t, err)
		assert.False(t, released)
	})
}

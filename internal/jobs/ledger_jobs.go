package jobs

import (
	"context"
	"strconv"
	"time"

	"drivehub-backend/internal/logger"
)

// unlockBalance releases an owner's locked earnings for a booking once the
// cancellation and early-return risk windows have passed. A no-op when the
// hold was already released.
func (jr *JobRunner) unlockBalance(ctx context.Context, bookingID int32) error {
	released, err := jr.store.LedgerRepository.ReleaseLockedBalance(ctx, bookingID, time.Now())
	if err != nil {
		return err
	}
	if released {
		logger.Info("Unlocked owner balance", "booking_id", bookingID)
	}
	return nil
}

func formatID(id int32) string {
	return strconv.Itoa(int(id))
}

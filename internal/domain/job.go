package domain

import "time"

// Deferred job names. Each job carries only a booking id and re-reads current
// state at fire time; a job whose precondition no longer holds is a no-op.
const (
	JobRevertUnpaidExtension = "revert_unpaid_extension"
	JobUnlockBalance         = "unlock_balance"
	JobReleaseMaintenance    = "release_maintenance"
)

// DeferredJob is a one-shot action persisted for out-of-band execution at or
// after RunAt. Rows stay unexecuted on transient failure so the next drain
// tick retries them.
type DeferredJob struct {
	ID         int32      `json:"id"`
	Name       string     `json:"name"`
	BookingID  int32      `json:"booking_id"`
	RunAt      time.Time  `json:"run_at"`
	Attempts   int32      `json:"attempts"`
	ExecutedOn *time.Time `json:"executed_on,omitempty"`
	CreatedOn  time.Time  `json:"created_on"`
}

package domain

import "time"

type ContractStatus string

const (
	ContractStatusPending   ContractStatus = "PENDING"
	ContractStatusConfirmed ContractStatus = "CONFIRMED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// Contract is owned 1:1 by a booking and mirrors its agreed dates. It is
// updated in lock-step whenever the booking's dates change.
type Contract struct {
	ID             int32          `json:"id"`
	BookingID      int32          `json:"booking_id"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	Status         ContractStatus `json:"status"`
	OwnerSignedOn  *time.Time     `json:"owner_signed_on,omitempty"`
	RenterSignedOn *time.Time     `json:"renter_signed_on,omitempty"`
	CreatedOn      time.Time      `json:"created_on"`
	UpdatedOn      time.Time      `json:"updated_on"`
}

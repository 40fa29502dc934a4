package domain

import "time"

type CarStatus string

const (
	CarStatusAvailable   CarStatus = "AVAILABLE"
	CarStatusRented      CarStatus = "RENTED"
	CarStatusMaintain    CarStatus = "MAINTAIN"
	CarStatusUnavailable CarStatus = "UNAVAILABLE"
)

type Car struct {
	ID             int32     `json:"id"`
	OwnerID        int32     `json:"owner_id"`
	Owner          *User     `json:"owner,omitempty"` // Populated when fetching car details
	LicensePlate   string    `json:"license_plate"`
	Brand          string    `json:"brand"`
	Model          string    `json:"model"`
	DailyRateCents int64     `json:"daily_rate_cents"`
	Status         CarStatus `json:"status"`
	CreatedOn      time.Time `json:"created_on"`
}

// CarUnavailableDate is an owner-declared blackout window during which the
// car cannot be booked or extended into.
type CarUnavailableDate struct {
	ID        int32     `json:"id"`
	CarID     int32     `json:"car_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

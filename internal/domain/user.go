package domain

import "time"

type UserRole string

const (
	UserRoleRenter UserRole = "RENTER"
	UserRoleOwner  UserRole = "OWNER"
)

type User struct {
	ID           int32     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         UserRole  `json:"role"`
	BalanceCents int64     `json:"balance_cents"`
	CreatedOn    time.Time `json:"created_on"`
}

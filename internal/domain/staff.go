package domain

import "time"

// StaffRole enumerates operator roles on the management API.
type StaffRole string

const (
	StaffRoleOperator StaffRole = "operator"
	StaffRoleAdmin    StaffRole = "admin"
)

// StaffUser is an internal operator who drives review and fulfillment flows.
type StaffUser struct {
	ID           string
	Username     string
	PasswordHash string
	FullName     string
	Role         StaffRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

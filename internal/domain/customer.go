package domain

import "time"

// Customer is an end customer identified by their messaging phone number.
// Created on first inbound message; never deleted by the core.
type Customer struct {
	ID          string
	PhoneNumber string
	Name        *string
	Email       *string
	HasAccount  bool
	AccountID   *string
	Language    Language
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

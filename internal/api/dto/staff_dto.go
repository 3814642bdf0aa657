package dto

import "time"

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StaffLoginResponse carries the issued token.
type StaffLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	StaffID   string    `json:"staff_id"`
	Role      string    `json:"role"`
}

// StaffRegisterRequest payload.
type StaffRegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

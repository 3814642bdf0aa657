package dto

import (
	"time"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// CustomerResponse is the customer detail payload.
type CustomerResponse struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	HasAccount  bool      `json:"has_account"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCustomerResponse maps a domain customer.
func NewCustomerResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          customer.ID,
		PhoneNumber: customer.PhoneNumber,
		Name:        customer.Name,
		Email:       customer.Email,
		HasAccount:  customer.HasAccount,
		Language:    string(customer.Language),
		CreatedAt:   customer.CreatedAt,
	}
}

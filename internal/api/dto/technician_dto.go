package dto

import (
	"time"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// CreateTechnicianRequest registers a reviewer.
type CreateTechnicianRequest struct {
	EmployeeID     string  `json:"employee_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	MaxWorkload    int     `json:"max_workload"`
}

// UpdateTechnicianRequest changes roster fields.
type UpdateTechnicianRequest struct {
	Active      *bool `json:"is_active,omitempty"`
	MaxWorkload *int  `json:"max_workload,omitempty"`
}

// TechnicianResponse is the roster view.
type TechnicianResponse struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employee_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           *string   `json:"phone,omitempty"`
	Specialization  *string   `json:"specialization,omitempty"`
	Active          bool      `json:"is_active"`
	CurrentWorkload int       `json:"current_workload"`
	MaxWorkload     int       `json:"max_workload"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewTechnicianResponse maps a technician.
func NewTechnicianResponse(tech *domain.Technician) TechnicianResponse {
	return TechnicianResponse{
		ID:              tech.ID,
		EmployeeID:      tech.EmployeeID,
		Name:            tech.Name,
		Email:           tech.Email,
		Phone:           tech.Phone,
		Specialization:  tech.Specialization,
		Active:          tech.Active,
		CurrentWorkload: tech.CurrentLoad,
		MaxWorkload:     tech.MaxLoad,
		CreatedAt:       tech.CreatedAt,
	}
}

// NewTechnicianResponses maps a slice.
func NewTechnicianResponses(list []domain.Technician) []TechnicianResponse {
	result := make([]TechnicianResponse, 0, len(list))
	for i := range list {
		result = append(result, NewTechnicianResponse(&list[i]))
	}
	return result
}

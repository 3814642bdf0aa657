package domain

import "time"

// Technician models a technical reviewer with bounded concurrent workload.
type Technician struct {
	ID             string
	EmployeeID     string
	Name           string
	Email          string
	Phone          *string
	Specialization *string
	Active         bool
	CurrentLoad    int
	MaxLoad        int
	CreatedAt      time.Time
}

// HasCapacity reports whether auto-assignment may pick this technician.
func (t *Technician) HasCapacity() bool {
	return t.Active && t.CurrentLoad < t.MaxLoad
}

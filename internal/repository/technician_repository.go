package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// TechnicianRepository encapsulates technician persistence. Workload
// counters change through the atomic methods, never through Update, so
// concurrent assignments cannot lose increments.
type TechnicianRepository interface {
	Create(ctx context.Context, technician *domain.Technician) error
	Update(ctx context.Context, technician *domain.Technician) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Technician, error)
	// ReserveCapacity bumps current_workload only while it is below
	// max_workload and reports whether it did.
	ReserveCapacity(ctx context.Context, id string) (bool, error)
	// IncrementWorkload bumps current_workload unconditionally (direct
	// assignment by an operator overrides capacity).
	IncrementWorkload(ctx context.Context, id string) error
	// DecrementWorkload releases one unit, flooring at zero.
	DecrementWorkload(ctx context.Context, id string) error
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates the repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

const technicianColumns = `id, employee_id, name, email, phone, specialization,
               is_active, current_workload, max_workload, created_at`

func (r *technicianRepository) Create(ctx context.Context, technician *domain.Technician) error {
	const query = `
        INSERT INTO technicians (employee_id, name, email, phone, specialization, is_active, current_workload, max_workload)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query,
		technician.EmployeeID,
		technician.Name,
		technician.Email,
		technician.Phone,
		technician.Specialization,
		technician.Active,
		technician.CurrentLoad,
		technician.MaxLoad,
	).Scan(&technician.ID, &technician.CreatedAt)
	return MapUniqueViolation(err)
}

func (r *technicianRepository) Update(ctx context.Context, technician *domain.Technician) error {
	const query = `
        UPDATE technicians SET name=$1, email=$2, phone=$3, specialization=$4,
            is_active=$5, max_workload=$6
        WHERE id=$7`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		technician.Name,
		technician.Email,
		technician.Phone,
		technician.Specialization,
		technician.Active,
		technician.MaxLoad,
		technician.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *technicianRepository) ReserveCapacity(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE technicians SET current_workload = current_workload + 1
        WHERE id=$1 AND current_workload < max_workload`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *technicianRepository) IncrementWorkload(ctx context.Context, id string) error {
	const query = `UPDATE technicians SET current_workload = current_workload + 1 WHERE id=$1`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *technicianRepository) DecrementWorkload(ctx context.Context, id string) error {
	const query = `UPDATE technicians SET current_workload = GREATEST(current_workload - 1, 0) WHERE id=$1`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians WHERE id=$1`
	var technician domain.Technician
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&technician.ID,
		&technician.EmployeeID,
		&technician.Name,
		&technician.Email,
		&technician.Phone,
		&technician.Specialization,
		&technician.Active,
		&technician.CurrentLoad,
		&technician.MaxLoad,
		&technician.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &technician, nil
}

func (r *technicianRepository) List(ctx context.Context, activeOnly bool) ([]domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY current_workload ASC, id ASC`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Technician
	for rows.Next() {
		var technician domain.Technician
		if err := rows.Scan(
			&technician.ID,
			&technician.EmployeeID,
			&technician.Name,
			&technician.Email,
			&technician.Phone,
			&technician.Specialization,
			&technician.Active,
			&technician.CurrentLoad,
			&technician.MaxLoad,
			&technician.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, technician)
	}
	return result, rows.Err()
}

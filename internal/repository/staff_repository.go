package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// StaffRepository encapsulates operator account persistence.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffUser) error
	GetByID(ctx context.Context, id string) (*domain.StaffUser, error)
	GetByUsername(ctx context.Context, username string) (*domain.StaffUser, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffUser) error {
	const query = `
        INSERT INTO staff_users (username, password_hash, full_name, role, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		staff.Username,
		staff.PasswordHash,
		staff.FullName,
		staff.Role,
		staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	const query = `
        SELECT id, username, password_hash, full_name, role, is_active, created_at, updated_at
        FROM staff_users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *staffRepository) GetByUsername(ctx context.Context, username string) (*domain.StaffUser, error) {
	const query = `
        SELECT id, username, password_hash, full_name, role, is_active, created_at, updated_at
        FROM staff_users WHERE username=$1`
	return r.fetchSingle(ctx, query, username)
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.StaffUser, error) {
	var staff domain.StaffUser
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&staff.ID,
		&staff.Username,
		&staff.PasswordHash,
		&staff.FullName,
		&staff.Role,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// CustomerRepository encapsulates customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates the repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (phone_number, name, email, has_account, account_id, language)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		customer.PhoneNumber,
		customer.Name,
		customer.Email,
		customer.HasAccount,
		customer.AccountID,
		customer.Language,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET name=$1, email=$2, has_account=$3, account_id=$4, language=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		customer.Name,
		customer.Email,
		customer.HasAccount,
		customer.AccountID,
		customer.Language,
		customer.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `
        SELECT id, phone_number, name, email, has_account, account_id, language, created_at, updated_at
        FROM customers WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	const query = `
        SELECT id, phone_number, name, email, has_account, account_id, language, created_at, updated_at
        FROM customers WHERE phone_number=$1`
	return r.fetchSingle(ctx, query, phone)
}

func (r *customerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var (
		customer domain.Customer
		language string
	)
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&customer.ID,
		&customer.PhoneNumber,
		&customer.Name,
		&customer.Email,
		&customer.HasAccount,
		&customer.AccountID,
		&language,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	lang, err := domain.ParseLanguage(language)
	if err != nil {
		return nil, err
	}
	customer.Language = lang
	return &customer, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/compensation-agent/internal/auth"
	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/repository"
	apperrors "github.com/spec-kit/compensation-agent/pkg/util"
)

// StaffService authenticates operators on the management API.
type StaffService struct {
	staff      repository.StaffRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewStaffService constructs the service.
func NewStaffService(staff repository.StaffRepository, tokens *auth.TokenManager, bcryptCost int) *StaffService {
	return &StaffService{staff: staff, tokens: tokens, bcryptCost: bcryptCost}
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Staff     *domain.StaffUser
}

// Login verifies credentials and issues a JWT.
func (s *StaffService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}
	staff, err := s.staff.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !staff.Active {
		return nil, apperrors.NewForbidden("account disabled")
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(staff.ID, staff.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Staff: staff}, nil
}

// Register creates an operator account. Admin-only at the API layer.
func (s *StaffService) Register(ctx context.Context, username, password, fullName string, role domain.StaffRole) (*domain.StaffUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewValidationError("username required", nil)
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if role == "" {
		role = domain.StaffRoleOperator
	}
	if _, err := s.staff.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username taken", map[string]any{"username": username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	staff := &domain.StaffUser{
		Username:     username,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		Active:       true,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

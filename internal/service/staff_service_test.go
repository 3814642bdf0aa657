package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compensation-agent/internal/auth"
	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/repository/memory"
)

func newStaffService() *StaffService {
	staff := memory.NewStaffStore()
	tokens := auth.NewTokenManager("test-secret", 60)
	return NewStaffService(staff, tokens, 4)
}

func TestStaffRegisterAndLogin(t *testing.T) {
	service := newStaffService()

	created, err := service.Register(context.Background(), "reviewer1", "s3cret-pass", "Review Person", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StaffRoleOperator, created.Role, "role defaults to operator")
	assert.True(t, created.Active)
	assert.NotEqual(t, "s3cret-pass", created.PasswordHash)

	result, err := service.Login(context.Background(), "reviewer1", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, created.ID, result.Staff.ID)
}

func TestStaffLoginRejectsBadCredentials(t *testing.T) {
	service := newStaffService()
	_, err := service.Register(context.Background(), "reviewer1", "s3cret-pass", "", domain.StaffRoleAdmin)
	require.NoError(t, err)

	_, err = service.Login(context.Background(), "reviewer1", "wrong-pass")
	assert.Error(t, err)

	_, err = service.Login(context.Background(), "nobody", "s3cret-pass")
	assert.Error(t, err)
}

func TestStaffRegisterValidation(t *testing.T) {
	service := newStaffService()

	_, err := service.Register(context.Background(), "", "s3cret-pass", "", "")
	assert.Error(t, err, "username required")

	_, err = service.Register(context.Background(), "reviewer1", "short", "", "")
	assert.Error(t, err, "password too short")

	_, err = service.Register(context.Background(), "reviewer1", "s3cret-pass", "", "")
	require.NoError(t, err)
	_, err = service.Register(context.Background(), "reviewer1", "another-pass", "", "")
	assert.Error(t, err, "duplicate username")
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 60)

	token, _, err := tokens.GenerateToken("staff-1", domain.StaffRoleAdmin)
	require.NoError(t, err)

	claims, err := tokens.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffID)
	assert.Equal(t, domain.StaffRoleAdmin, claims.Role)

	other := auth.NewTokenManager("different-secret", 60)
	_, err = other.ParseToken(token)
	assert.Error(t, err, "token signed with another secret must fail")
}

package services_test

import (
	"context"
	"testing"

	"github.com/parsakhaledi/paydar/internal/adapters/repository"
	"github.com/parsakhaledi/paydar/internal/core/domain"
	"github.com/parsakhaledi/paydar/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	svc := services.NewAuthService(repository.NewMemoryUserRepository())
	ctx := context.Background()

	input := services.RegisterInput{
		Name:     "Parsa",
		Email:    "parsa@example.com",
		Password: "a-decent-password",
	}

	user, err := svc.Register(ctx, input)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "parsa@example.com", user.Email)
	assert.NotEmpty(t, user.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, input)
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("bad email", func(t *testing.T) {
		bad := input
		bad.Email = "nope"
		_, err := svc.Register(ctx, bad)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})

	t.Run("short password", func(t *testing.T) {
		bad := input
		bad.Email = "other@example.com"
		bad.Password = "short"
		_, err := svc.Register(ctx, bad)
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("login", func(t *testing.T) {
		got, err := svc.Login(ctx, "parsa@example.com", "a-decent-password")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "parsa@example.com", "wrong-password")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@example.com", "a-decent-password")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

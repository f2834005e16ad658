package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
)

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	svc := service.NewAuthService(db, "test-secret")

	token, err := svc.Register(ctx, &types.RegisterRequest{
		Email:     "cook@example.com",
		Username:  "cook",
		FirstName: "Chef",
		LastName:  "Cook",
		Password:  "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	var user models.User
	require.NoError(t, db.Where("email = ?", "cook@example.com").First(&user).Error)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	loginToken, err := svc.Login(ctx, "cook@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	svc := service.NewAuthService(db, "test-secret")
	req := &types.RegisterRequest{
		Email:    "cook@example.com",
		Username: "cook",
		Password: "password123",
	}

	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	svc := service.NewAuthService(db, "test-secret")
	_, err := svc.Register(ctx, &types.RegisterRequest{
		Email:    "cook@example.com",
		Username: "cook",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "cook@example.com", "wrongpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	issuer := service.NewAuthService(db, "secret-a")
	verifier := service.NewAuthService(db, "secret-b")

	token, err := issuer.Register(ctx, &types.RegisterRequest{
		Email:    "cook@example.com",
		Username: "cook",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-product-catalog/internal/model"
	"go-product-catalog/internal/repository/memory"
	"go-product-catalog/pkg/apierror"
)

func newAccountService(t *testing.T) (*AccountService, *memory.UserStore) {
	t.Helper()

	users := memory.NewUserStore()
	tokens, err := NewTokenService(testSecret, 15*time.Minute, 24*time.Hour, memory.NewTokenStore())
	require.NoError(t, err)
	return NewAccountService(users, tokens), users
}

func registerTestUser(t *testing.T, svc *AccountService) model.User {
	t.Helper()

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:     "a@x.com",
		Username:  "a",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "password123",
	})
	require.NoError(t, err)
	return user
}

func requireValidationError(t *testing.T, err error, field string) {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	require.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	require.Equal(t, field, apiErr.Details)
}

func TestAccountService_Register(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	user := registerTestUser(t, svc)
	require.NotZero(t, user.ID)
	require.Equal(t, "a@x.com", user.Email)
	require.True(t, user.IsActive)
	require.False(t, user.IsStaff)

	t.Run("password is stored hashed", func(t *testing.T) {
		require.NotEqual(t, "password123", user.PasswordHash)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Email: "A@X.COM", Username: "b", Password: "password123",
		})
		requireValidationError(t, err, "email")
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Email: "b@x.com", Username: "A", Password: "password123",
		})
		requireValidationError(t, err, "username")
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Email: "not-an-email", Username: "c", Password: "password123",
		})
		requireValidationError(t, err, "email")
	})
}

func TestAccountService_Authenticate(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)

	t.Run("valid credentials issue a pair for the registered user", func(t *testing.T) {
		pair, err := svc.Authenticate(ctx, "a@x.com", "password123")
		require.NoError(t, err)
		require.Equal(t, user.ID, pair.UserID)

		claims, err := svc.tokens.Validate(pair.AccessToken, TokenTypeAccess)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.UserID)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "A@x.com", "password123")
		require.NoError(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@x.com", "password123")
		requireValidationError(t, err, "email")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "a@x.com", "wrongpassword")
		requireValidationError(t, err, "password")
	})
}

func TestAccountService_Logout(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()
	registerTestUser(t, svc)

	pair, err := svc.Authenticate(ctx, "a@x.com", "password123")
	require.NoError(t, err)

	revoked, err := svc.Logout(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = svc.Logout(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestAccountService_Refresh(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)

	pair, err := svc.Authenticate(ctx, "a@x.com", "password123")
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, fresh.UserID)
	require.NotEqual(t, pair.RefreshToken, fresh.RefreshToken)

	t.Run("rotated token cannot be exchanged again", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	})

	t.Run("access token is not exchangeable", func(t *testing.T) {
		_, err := svc.Refresh(ctx, fresh.AccessToken)
		require.Error(t, err)
	})
}

func TestAccountService_Profile(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)

	got, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)

	_, err = svc.Profile(ctx, 9999)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
}

func TestAccountService_UpdateProfile(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)

	strPtr := func(s string) *string { return &s }

	t.Run("applies only supplied fields", func(t *testing.T) {
		updated, err := svc.UpdateProfile(ctx, user.ID, model.UpdateProfileRequest{
			FirstName: strPtr("Grace"),
		})
		require.NoError(t, err)
		require.Equal(t, "Grace", updated.FirstName)
		require.Equal(t, user.Email, updated.Email)
		require.Equal(t, user.Username, updated.Username)
		require.Equal(t, user.LastName, updated.LastName)
	})

	t.Run("unknown user id", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, 9999, model.UpdateProfileRequest{FirstName: strPtr("X")})
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
	})

	t.Run("empty username rejected", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, user.ID, model.UpdateProfileRequest{Username: strPtr("  ")})
		requireValidationError(t, err, "username")
	})

	t.Run("username collision rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Email: "b@x.com", Username: "b", Password: "password123",
		})
		require.NoError(t, err)

		_, err = svc.UpdateProfile(ctx, user.ID, model.UpdateProfileRequest{Username: strPtr("b")})
		requireValidationError(t, err, "username")
	})

	t.Run("keeping own email is not a collision", func(t *testing.T) {
		updated, err := svc.UpdateProfile(ctx, user.ID, model.UpdateProfileRequest{
			Email: strPtr("a@x.com"),
		})
		require.NoError(t, err)
		require.Equal(t, "a@x.com", updated.Email)
	})
}

func TestTranslateDuplicate(t *testing.T) {
	requireValidationError(t, translateDuplicate(model.ErrDuplicateEmail), "email")
	requireValidationError(t, translateDuplicate(model.ErrDuplicateUsername), "username")

	opaque := errors.New("boom")
	require.Equal(t, opaque, translateDuplicate(opaque))
}

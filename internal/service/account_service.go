package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-product-catalog/internal/model"
	"go-product-catalog/pkg/apierror"
)

const bcryptCost = 12

// UserStore persists user records.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u model.User) error
}

type AccountService struct {
	users  UserStore
	tokens *TokenService
}

func NewAccountService(users UserStore, tokens *TokenService) *AccountService {
	return &AccountService{users: users, tokens: tokens}
}

type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)

	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, apierror.Validation("a valid email is required", "email")
	}
	if username == "" {
		return model.User{}, apierror.Validation("username is required", "username")
	}
	if in.Password == "" {
		return model.User{}, apierror.Validation("password is required", "password")
	}

	if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return model.User{}, err
	} else if exists {
		return model.User{}, apierror.Validation("email already in use", "email")
	}

	if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return model.User{}, err
	} else if exists {
		return model.User{}, apierror.Validation("username already in use", "username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return model.User{}, translateDuplicate(err)
	}

	return user, nil
}

// Authenticate checks the credentials and issues a token pair. Both an
// unknown email and a wrong password surface as field-level validation
// failures.
func (s *AccountService) Authenticate(ctx context.Context, email string, password string) (model.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, apierror.Validation("user with this email not found", "email")
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.TokenPair{}, apierror.Validation("invalid password", "password")
	}

	return s.tokens.Issue(ctx, user)
}

// Logout revokes the refresh token. A token that is malformed or already
// revoked reports false rather than an error.
func (s *AccountService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	return s.tokens.Revoke(ctx, refreshToken)
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued for its owner. A rotated or revoked token cannot be
// exchanged again.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken, TokenTypeRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	live, err := s.tokens.Revoke(ctx, refreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}
	if !live {
		return model.TokenPair{}, apierror.Unauthorized("refresh token has been revoked")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, apierror.Unauthorized("user no longer exists")
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.tokens.Issue(ctx, user)
}

func (s *AccountService) Profile(ctx context.Context, userID int64) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, apierror.NotFound("user not found", strconv.FormatInt(userID, 10))
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// UpdateProfile applies only the fields present in the request. Uniqueness is
// re-checked for a supplied email or username.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (model.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" || !strings.Contains(email, "@") {
			return model.User{}, apierror.Validation("a valid email is required", "email")
		}
		if !strings.EqualFold(email, user.Email) {
			if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
				return model.User{}, err
			} else if exists {
				return model.User{}, apierror.Validation("email already in use", "email")
			}
		}
		user.Email = email
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return model.User{}, apierror.Validation("username cannot be empty", "username")
		}
		if !strings.EqualFold(username, user.Username) {
			if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
				return model.User{}, err
			} else if exists {
				return model.User{}, apierror.Validation("username already in use", "username")
			}
		}
		user.Username = username
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, apierror.NotFound("user not found", strconv.FormatInt(userID, 10))
		}
		return model.User{}, translateDuplicate(err)
	}

	return user, nil
}

func translateDuplicate(err error) error {
	switch {
	case errors.Is(err, model.ErrDuplicateEmail):
		return apierror.Validation("email already in use", "email")
	case errors.Is(err, model.ErrDuplicateUsername):
		return apierror.Validation("username already in use", "username")
	default:
		return err
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-product-catalog/internal/model"
	"go-product-catalog/pkg/apierror"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenStore persists refresh-token identifiers. A refresh token is accepted
// for exchange or logout only while its jti is still stored.
type TokenStore interface {
	Store(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	Delete(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	tokens     TokenStore
}

func NewTokenService(secret string, accessTTL time.Duration, refreshTTL time.Duration, tokens TokenStore) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signing secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		tokens:     tokens,
	}, nil
}

// Issue signs an access/refresh pair for the user and records the refresh
// token's jti so it can be revoked later.
func (s *TokenService) Issue(ctx context.Context, user model.User) (model.TokenPair, error) {
	now := time.Now().UTC()
	refreshJTI := uuid.NewString()
	refreshExpiry := now.Add(s.refreshTTL)

	accessToken, err := s.sign(jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"typ":   TokenTypeAccess,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.sign(jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"typ":   TokenTypeRefresh,
		"jti":   refreshJTI,
		"iat":   now.Unix(),
		"exp":   refreshExpiry.Unix(),
	})
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.tokens.Store(ctx, refreshJTI, user.ID, refreshExpiry); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		UserID:       user.ID,
	}, nil
}

// Validate is a stateless signature, expiry and type check. It never consults
// the revocation list, so access tokens stay valid until expiry even after
// logout.
func (s *TokenService) Validate(tokenString string, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierror.Unauthorized("invalid token signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apierror.Unauthorized("invalid token")
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.Unauthorized("invalid token claims")
	}

	typ, _ := claimsMap["typ"].(string)
	if expectedType != "" && typ != expectedType {
		return nil, apierror.Unauthorized("invalid token type")
	}

	claims := &model.AuthClaims{Type: typ}
	claims.Email, _ = claimsMap["email"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	sub, _ := claimsMap["sub"].(string)
	claims.UserID, err = strconv.ParseInt(sub, 10, 64)
	if err != nil || claims.UserID <= 0 {
		return nil, apierror.Unauthorized("invalid token subject")
	}

	return claims, nil
}

// Revoke invalidates a refresh token. Malformed, expired or already-revoked
// tokens report false without an error; only storage failures are errors.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) (bool, error) {
	claims, err := s.Validate(refreshToken, TokenTypeRefresh)
	if err != nil {
		return false, nil
	}

	return s.tokens.Delete(ctx, claims.TokenID)
}

func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.tokens.PurgeExpired(ctx)
}

func (s *TokenService) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

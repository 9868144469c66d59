//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-product-catalog/internal/config"
	"go-product-catalog/internal/database"
	"go-product-catalog/internal/handler"
	"go-product-catalog/internal/middleware"
	"go-product-catalog/internal/repository"
	"go-product-catalog/internal/router"
	"go-product-catalog/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	} `json:"meta"`
}

// newTestServer connects to the database named by TEST_DATABASE_URL, runs the
// migrations, clears the tables and serves the full application stack.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{
		ServerPort:     "0",
		RequestTimeout: 30 * time.Second,
		DatabaseURL:    dsn,
		DBMaxConns:     4,
		DBMinConns:     1,
		JWTSecret:      "integration-test-secret",
		JWTAccessTTL:   15 * time.Minute,
		JWTRefreshTTL:  24 * time.Hour,
		CORSOrigins:    []string{"*"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))

	_, err = db.Pool.Exec(ctx, "TRUNCATE refresh_tokens, products, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	users := repository.NewUserRepository(db.Pool)
	tokens := repository.NewTokenRepository(db.Pool)
	products := repository.NewProductRepository(db.Pool)

	tokenService, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, tokens)
	require.NoError(t, err)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(tokenService), router.Handlers{
		User:    handler.NewUserHandler(service.NewAccountService(users, tokenService)),
		Product: handler.NewProductHandler(service.NewCatalogService(products)),
	}, db.Health)

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, server *httptest.Server, method string, path string, payload any, token string) (int, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}

	return resp.StatusCode, parsed
}

func registerAndSignIn(t *testing.T, server *httptest.Server, email string, username string) (string, string) {
	t.Helper()

	status, _ := doJSON(t, server, http.MethodPost, "/users/sign_up", map[string]string{
		"email":     email,
		"username":  username,
		"password":  "password123",
		"password2": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, server, http.MethodPost, "/users/sign_in", map[string]string{
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, status)

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &tokens))
	return tokens.AccessToken, tokens.RefreshToken
}

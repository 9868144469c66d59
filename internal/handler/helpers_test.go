package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-product-catalog/internal/config"
	"go-product-catalog/internal/handler"
	"go-product-catalog/internal/middleware"
	"go-product-catalog/internal/repository/memory"
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

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tokenService, err := service.NewTokenService("handler-test-secret", 15*time.Minute, 24*time.Hour, memory.NewTokenStore())
	require.NoError(t, err)

	accountService := service.NewAccountService(memory.NewUserStore(), tokenService)
	catalogService := service.NewCatalogService(memory.NewProductStore())

	cfg := &config.Config{
		RequestTimeout: 30 * time.Second,
		CORSOrigins:    []string{"*"},
	}

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(tokenService), router.Handlers{
		User:    handler.NewUserHandler(accountService),
		Product: handler.NewProductHandler(catalogService),
	}, nil)

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, server *httptest.Server, method string, path string, payload any, token string) (int, envelope) {
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

func signUp(t *testing.T, server *httptest.Server, email string, username string, password string) {
	t.Helper()

	status, _ := doRequest(t, server, http.MethodPost, "/users/sign_up", map[string]string{
		"email":      email,
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   password,
		"password2":  password,
	}, "")
	require.Equal(t, http.StatusCreated, status)
}

func signIn(t *testing.T, server *httptest.Server, email string, password string) (string, string) {
	t.Helper()

	status, body := doRequest(t, server, http.MethodPost, "/users/sign_in", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, status)

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	return tokens.AccessToken, tokens.RefreshToken
}

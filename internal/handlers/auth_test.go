package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/sga-edu/sgaauth/internal/logger"
	"github.com/sga-edu/sgaauth/internal/models"
	"github.com/sga-edu/sgaauth/internal/repository/postgres"
	"github.com/sga-edu/sgaauth/internal/service/auth"
	"github.com/sga-edu/sgaauth/internal/service/user"
	"github.com/sga-edu/sgaauth/internal/testutil"
)

// Run full router with production services inside a rolled back transaction
func withServer(dbpool *pgxpool.Pool, t *testing.T, tokenTTL time.Duration, fn func(url string, users *user.UserService)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		userRepo := &postgres.UserRepo{DB: tx}
		ledgerRepo := &postgres.InvalidTokenRepo{DB: tx}

		authService, err := auth.NewService(
			auth.Config{SecretKey: "test-secret", TokenTTL: tokenTTL},
			userRepo,
			ledgerRepo,
		)
		require.NoError(t, err, "auth service starting error")

		userService := user.NewService(userRepo, nil)

		srv := httptest.NewServer(NewRouter(authService, userService, logger.NewNoOp()))
		defer srv.Close()

		fn(srv.URL, userService)
	})
}

func doJSON(t *testing.T, method string, url string, token string, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	return resp, string(raw)
}

func login(t *testing.T, url string, email string, password string) string {
	t.Helper()

	data := fmt.Sprintf(`{"email": %q, "password": %q}`, email, password)
	resp, body := doJSON(t, http.MethodPost, url+"/api/login", "", data)
	require.Equalf(t, http.StatusOK, resp.StatusCode, "login should succeed. Body: %s", body)

	var parsed struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &parsed))
	require.NotEmpty(t, parsed.Token)
	return parsed.Token
}

func Test_AuthHandler(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("login ok", func(t *testing.T) {
		withServer(pg.Pool, t, 8*time.Hour, func(url string, users *user.UserService) {
			created, err := users.Create(t.Context(), "Laura Mendez", "laura@example.com", "StrongEnoughPassword", models.RoleDocente)
			require.NoError(t, err)

			data := `{"email": "laura@example.com", "password": "StrongEnoughPassword"}`
			resp, body := doJSON(t, http.MethodPost, url+"/api/login", "", data)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var parsed struct {
				Token string         `json:"token"`
				User  map[string]any `json:"user"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &parsed))
			require.NotEmpty(t, parsed.Token, "token should be returned")
			require.Equal(t, created.ID.String(), parsed.User["id"])
			require.Equal(t, "Laura Mendez", parsed.User["nombre"])
			require.Equal(t, "laura@example.com", parsed.User["email"])
			require.Equal(t, "docente", parsed.User["rol"])

			require.NotContains(t, body, "password", "password hash must never leak")
			require.NotContains(t, body, "$2a$", "password hash must never leak")
		})
	})

	t.Run("login missing fields", func(t *testing.T) {
		withServer(pg.Pool, t, 8*time.Hour, func(url string, _ *user.UserService) {
			resp, body := doJSON(t, http.MethodPost, url+"/api/login", "", `{"email": "laura@example.com"}`)

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.Contains(t, body, "validation_failed")
		})
	})

	t.Run("login failed with identical message for both causes", func(t *testing.T) {
		withServer(pg.Pool, t, 8*time.Hour, func(url string, users *user.UserService) {
			_, err := users.Create(t.Context(), "Laura Mendez", "laura@example.com", "StrongEnoughPassword", models.RoleDocente)
			require.NoError(t, err)

			expected := `{"error": "service_error", "message": "Invalid credentials"}`

			// Unknown user
			resp, body := doJSON(t, http.MethodPost, url+"/api/login", "", `{"email": "nobody@example.com", "password": "whatever"}`)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.JSONEq(t, expected, body)

			// Known user, wrong password
			resp, body = doJSON(t, http.MethodPost, url+"/api/login", "", `{"email": "laura@example.com", "password": "wrong"}`)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.JSONEq(t, expected, body)
		})
	})

	t.Run("verify", func(t *testing.T) {
		withServer(pg.Pool, t, 8*time.Hour, func(url string, users *user.UserService) {
			created, err := users.Create(t.Context(), "Laura Mendez", "laura@example.com", "StrongEnoughPassword", models.RoleDocente)
			require.NoError(t, err)
			token := login(t, url, "laura@example.com", "StrongEnoughPassword")

			resp, body := doJSON(t, http.MethodGet, url+"/api/verify", token, "")

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Contains(t, body, created.ID.String())
			require.Contains(t, body, "docente")
		})
	})

	t.Run("verify without token", func(t *testing.T) {
		withServer(pg.Pool, t, 8*time.Hour, func(url string, _ *user.UserService) {
			resp, body := doJSON(t, http.MethodGet, url+"/api/verify", "", "")

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.JSONEq(t, `{"error": "service_error", "message": "Unauthorized: no token provided"}`, body)
		})
	})

	t.Run("logout flow", func(t *testing.T) {
		withServer(pg.Pool, t, 8*time.Hour, func(url string, users *user.UserService) {
			_, err := users.Create(t.Context(), "Laura Mendez", "laura@example.com", "StrongEnoughPassword", models.RoleDocente)
			require.NoError(t, err)
			token := login(t, url, "laura@example.com", "StrongEnoughPassword")

			// Logout succeeds
			resp, body := doJSON(t, http.MethodPost, url+"/api/logout", token, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.JSONEq(t, `{"message": "Session closed successfully"}`, body)

			// Logout again: idempotent, still ok
			resp, body = doJSON(t, http.MethodPost, url+"/api/logout", token, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "second logout should succeed. Body: %s", body)

			// The token is dead for verification
			resp, body = doJSON(t, http.MethodGet, url+"/api/verify", token, "")
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.JSONEq(t, `{"error": "service_error", "message": "Unauthorized: token invalidated"}`, body)

			// But a fresh login works and yields a distinct usable token
			token2 := login(t, url, "laura@example.com", "StrongEnoughPassword")
			require.NotEqual(t, token, token2)

			resp, _ = doJSON(t, http.MethodGet, url+"/api/verify", token2, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
		})
	})

	t.Run("logout without token", func(t *testing.T) {
		withServer(pg.Pool, t, 8*time.Hour, func(url string, _ *user.UserService) {
			resp, body := doJSON(t, http.MethodPost, url+"/api/logout", "", "")

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.JSONEq(t, `{"error": "service_error", "message": "Token not provided"}`, body)
		})
	})

	t.Run("expired token", func(t *testing.T) {
		withServer(pg.Pool, t, -time.Minute, func(url string, users *user.UserService) {
			_, err := users.Create(t.Context(), "Laura Mendez", "laura@example.com", "StrongEnoughPassword", models.RoleDocente)
			require.NoError(t, err)
			token := login(t, url, "laura@example.com", "StrongEnoughPassword")

			resp, body := doJSON(t, http.MethodGet, url+"/api/verify", token, "")

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.JSONEq(t, `{"error": "service_error", "message": "Unauthorized: token expired"}`, body)
		})
	})
}

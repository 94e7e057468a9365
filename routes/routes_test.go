package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lejendary/oauth2-server/app"
	"github.com/lejendary/oauth2-server/config"
	"github.com/lejendary/oauth2-server/internal/security"
	"github.com/lejendary/oauth2-server/repositories/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var userColumns = []string{"id", "login", "password_hash", "email", "first_name", "last_name", "activated", "authorities", "created_at", "updated_at"}

type testServer struct {
	*httptest.Server
	deps *app.Dependencies
	mock sqlmock.Sqlmock
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := &config.Config{
		Environment: "development",
		Database:    config.DatabaseConfig{Host: "localhost", User: "u", Database: "d"},
		Token: config.TokenConfig{
			Secret:   "routes-test-secret-routes-test-secret",
			Issuer:   "routes-test",
			Audience: "routes-test",
			TTL:      time.Hour,
		},
		Security: config.SecurityConfig{
			AnonymousEnabled: true,
			AllowedOrigins:   []string{"https://app.example.com"},
		},
		Observability: config.ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
			MetricsPath:    "/metrics",
		},
	}
	for _, m := range mutate {
		m(cfg)
	}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	logger := zap.NewNop()
	factory := postgres.NewRepositoryFactoryFromDB(postgres.Wrap(db, logger), logger)

	deps, err := app.NewDependenciesWithFactory(context.Background(), cfg, factory, logger)
	require.NoError(t, err)

	srv := httptest.NewServer(SetupRoutes(deps))
	t.Cleanup(func() {
		srv.Close()
		_ = db.Close()
	})
	return &testServer{Server: srv, deps: deps, mock: mock}
}

func (s *testServer) tokenFor(t *testing.T, login string, authorities ...string) string {
	t.Helper()
	tok, _, err := s.deps.TokenManager.Issue(&security.User{
		ID:          uuid.New(),
		Login:       login,
		Email:       login + "@example.com",
		Activated:   true,
		Authorities: authorities,
	})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, body)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Data
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestAuthenticateRoute(t *testing.T) {
	s := newTestServer(t)

	t.Run("anonymous", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/v1/authenticate", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := decodeData(t, resp)
		assert.Equal(t, false, data["authenticated"])
		assert.Equal(t, security.AnonymousLogin, data["login"])
	})

	t.Run("with token", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/v1/authenticate", s.tokenFor(t, "alice", security.UserAuthority), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := decodeData(t, resp)
		assert.Equal(t, true, data["authenticated"])
		assert.Equal(t, "alice", data["login"])
	})

	t.Run("invalid token", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/v1/authenticate", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAnonymousDisabled(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Security.AnonymousEnabled = false })

	resp := s.do(t, http.MethodGet, "/api/v1/authenticate", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAccountRoutes(t *testing.T) {
	s := newTestServer(t)
	userToken := s.tokenFor(t, "alice", security.UserAuthority)

	t.Run("anonymous is rejected", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/v1/account", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("authenticated user", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/v1/account", userToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", decodeData(t, resp)["login"])
	})

	t.Run("authority probe", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/v1/account/authorities/ROLE_ADMIN", userToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, decodeData(t, resp)["granted"])

		resp = s.do(t, http.MethodGet, "/api/v1/account/authorities/ROLE_USER", userToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, decodeData(t, resp)["granted"])
	})
}

func TestUserRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/v1/users", s.tokenFor(t, "alice", security.UserAuthority), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	now := time.Now()
	s.mock.ExpectQuery("SELECT (.+) FROM users ORDER BY login LIMIT").
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uuid.NewString(), "alice", "$2a$10$x", "alice@example.com", "", "", true, "{ROLE_USER}", now, now))

	resp = s.do(t, http.MethodGet, "/api/v1/users", s.tokenFor(t, "root", security.AdminAuthority), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := decodeData(t, resp)["users"].([]interface{})
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].(map[string]interface{})["login"])
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()
	s.mock.ExpectQuery("SELECT (.+) FROM users WHERE login = \\$1").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uuid.NewString(), "alice", string(hash), "alice@example.com", "Alice", "", true, "{ROLE_USER}", now, now))

	resp := s.do(t, http.MethodPost, "/auth/token", "", strings.NewReader(`{"login":"alice","password":"correct-horse"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	require.NotNil(t, session)

	req, err := http.NewRequest(http.MethodGet, s.URL+"/api/v1/account", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	accountResp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer accountResp.Body.Close()

	require.Equal(t, http.StatusOK, accountResp.StatusCode)
	data := decodeData(t, accountResp)
	assert.Equal(t, "alice", data["login"])
	assert.Equal(t, "Alice", data["first_name"])
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t)

	// Produce one denied authorization decision
	s.do(t, http.MethodGet, "/api/v1/users", s.tokenFor(t, "alice", security.UserAuthority), nil)

	resp := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `oauth2_authorization_decisions_total{decision="denied"} 1`)
	assert.Contains(t, string(body), `oauth2_token_validations_total{result="valid"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Observability.MetricsEnabled = false })

	resp := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, s.URL+"/api/v1/account", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

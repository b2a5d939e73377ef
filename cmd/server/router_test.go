package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/prepdeck-api/internal/config"
)

const testJWTSecret = "router-test-secret-0123456789abcdef0123"

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, LogLevel: "error"},
		Database: config.DatabaseConfig{URL: "postgres://localhost/test"},
		Auth:     config.AuthConfig{JWTSecret: testJWTSecret},
		Study: config.StudyConfig{
			NewCardShare:          0.2,
			NewPerDueRatio:        4,
			ReviewDebounceSeconds: 2,
			DefaultSelectionLimit: 20,
		},
		Task: config.TaskConfig{
			WorkerCount:  1,
			QueueSize:    10,
			MaxRetries:   1,
			BaseDelayMS:  10,
			StuckTaskMin: 30,
		},
	}
}

func testApplication(t *testing.T) *application {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app, err := newApplication(testConfig(), db, slog.Default())
	require.NoError(t, err)
	return app
}

func bearerToken(t *testing.T, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouterHealthIsPublic(t *testing.T) {
	t.Parallel()

	router := testApplication(t).setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouterRequiresAuthentication(t *testing.T) {
	t.Parallel()

	router := testApplication(t).setupRouter()

	for _, target := range []string{
		"/api/cards/due",
		"/api/study/stats",
		"/api/profile",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestRouterGuardsAdminRoutes(t *testing.T) {
	t.Parallel()

	router := testApplication(t).setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/cards/generate", nil)
	req.Header.Set("Authorization", bearerToken(t, "learner"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/prepdeck-api/internal/api/shared"
)

const testSecret = "test-secret-key-that-is-long-enough-0123"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func userToken(t *testing.T, userID uuid.UUID, role string, expiresIn time.Duration) string {
	t.Helper()
	return signToken(t, testSecret, jwt.SigningMethodHS256, tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
}

// echoUserID reports the user ID the middleware put in the context.
func echoUserID(t *testing.T, captured *uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		require.True(t, ok)
		*captured = userID
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var captured uuid.UUID
	m := NewAuthMiddleware(testSecret)
	handler := m.Authenticate(echoUserID(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/study/stats", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, userID, "", time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, captured)
}

func TestAuthenticateRejectsMissingAndMalformedHeaders(t *testing.T) {
	t.Parallel()

	m := NewAuthMiddleware(testSecret)
	handler := m.Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without valid auth")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "no bearer prefix", header: "Token abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/study/stats", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	m := NewAuthMiddleware(testSecret)
	handler := m.Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with an expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/study/stats", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, uuid.New(), "", -time.Minute))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token expired")
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	m := NewAuthMiddleware(testSecret)
	handler := m.Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with a forged token")
	}))

	forged := signToken(t, "another-secret-key-entirely-0123456789", jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

	req := httptest.NewRequest(http.MethodGet, "/api/study/stats", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsUnexpectedSigningMethod(t *testing.T) {
	t.Parallel()

	m := NewAuthMiddleware(testSecret)
	handler := m.Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with a non-HS256 token")
	}))

	token := signToken(t, testSecret, jwt.SigningMethodHS512,
		jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

	req := httptest.NewRequest(http.MethodGet, "/api/study/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsNonUUIDSubject(t *testing.T) {
	t.Parallel()

	m := NewAuthMiddleware(testSecret)
	handler := m.Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without a usable subject")
	}))

	token := signToken(t, testSecret, jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Subject:   "learner-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

	req := httptest.NewRequest(http.MethodGet, "/api/study/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	m := NewAuthMiddleware(testSecret)
	var reached bool
	handler := m.Authenticate(m.RequireAdmin(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(shared.UserRoleContextKey).(string)
			assert.Equal(t, "admin", role)
			reached = true
			w.WriteHeader(http.StatusOK)
		})))

	t.Run("admin role passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/cards/generate", nil)
		req.Header.Set("Authorization", "Bearer "+userToken(t, uuid.New(), "admin", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, reached)
	})

	t.Run("learner role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/cards/generate", nil)
		req.Header.Set("Authorization", "Bearer "+userToken(t, uuid.New(), "learner", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/cards/generate", nil)
		req.Header.Set("Authorization", "Bearer "+userToken(t, uuid.New(), "", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

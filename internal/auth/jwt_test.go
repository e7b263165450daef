package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arkidots/pipeline-api/internal/auth"
	"github.com/arkidots/pipeline-api/internal/config"
	"github.com/arkidots/pipeline-api/internal/domain"
)

func testIssuer(ttlMinutes int) *auth.TokenIssuer {
	return auth.NewTokenIssuer(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-tests",
		TokenTTLMinutes: ttlMinutes,
	}, "pipeline-api-test")
}

func testUser() *domain.User {
	return &domain.User{
		ID:    uuid.New(),
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  domain.RoleAdmin,
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := testIssuer(60)
	user := testUser()

	token, err := issuer.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userCtx, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, user.Name, userCtx.Name)
	assert.Equal(t, user.Email, userCtx.Email)
	assert.Equal(t, domain.RoleAdmin, userCtx.Role)
	assert.True(t, userCtx.IsAdmin())
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := testIssuer(-1)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := testIssuer(60).Issue(testUser())
	require.NoError(t, err)

	other := auth.NewTokenIssuer(&config.AuthConfig{
		JWTSecret:       "a-different-secret",
		TokenTTLMinutes: 60,
	}, "pipeline-api-test")

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_WrongIssuer(t *testing.T) {
	foreign := auth.NewTokenIssuer(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-tests",
		TokenTTLMinutes: 60,
	}, "some-other-app")

	token, err := foreign.Issue(testUser())
	require.NoError(t, err)

	_, err = testIssuer(60).Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	_, err := testIssuer(60).Validate("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestMiddleware_Authenticate(t *testing.T) {
	issuer := testIssuer(60)
	mw := auth.NewMiddleware(issuer, zap.NewNop())
	user := testUser()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := auth.FromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, user.ID, userCtx.UserID)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := issuer.Issue(user)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	mw := auth.NewMiddleware(testIssuer(60), zap.NewNop())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := auth.WithUserContext(req.Context(), &auth.UserContext{Role: domain.RoleAdmin})
		rec := httptest.NewRecorder()

		mw.RequireAdmin(next).ServeHTTP(rec, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := auth.WithUserContext(req.Context(), &auth.UserContext{Role: domain.RoleUser})
		rec := httptest.NewRecorder()

		mw.RequireAdmin(next).ServeHTTP(rec, req.WithContext(ctx))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		mw.RequireAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

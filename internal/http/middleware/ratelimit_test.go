package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/arkidots/pipeline-api/internal/config"
	"github.com/arkidots/pipeline-api/internal/http/middleware"
)

func newTestLimiter(cfg *config.RateLimitConfig) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg, zap.NewNop())
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLimitByIP(t *testing.T) {
	t.Run("blocks after limit per IP", func(t *testing.T) {
		rl := newTestLimiter(&config.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 2,
		})
		h := rl.LimitByIP(okHandler())

		assert.Equal(t, http.StatusOK, doRequest(h, "/api/v1/leads", "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, doRequest(h, "/api/v1/leads", "10.0.0.1:1234").Code)

		rec := doRequest(h, "/api/v1/leads", "10.0.0.1:1234")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))

		// A different IP has its own counter
		assert.Equal(t, http.StatusOK, doRequest(h, "/api/v1/leads", "10.0.0.2:1234").Code)
	})

	t.Run("whitelisted path bypasses limit", func(t *testing.T) {
		rl := newTestLimiter(&config.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 1,
			WhitelistPaths:    []string{"/health"},
		})
		h := rl.LimitByIP(okHandler())

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, doRequest(h, "/health", "10.0.0.1:1234").Code)
		}
	})

	t.Run("whitelisted IP bypasses limit", func(t *testing.T) {
		rl := newTestLimiter(&config.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 1,
			WhitelistIPs:      []string{"10.0.0.9"},
		})
		h := rl.LimitByIP(okHandler())

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, doRequest(h, "/api/v1/leads", "10.0.0.9:1234").Code)
		}
	})

	t.Run("disabled limiter passes everything through", func(t *testing.T) {
		rl := newTestLimiter(&config.RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 1,
		})
		h := rl.LimitByIP(okHandler())

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, doRequest(h, "/api/v1/leads", "10.0.0.1:1234").Code)
		}
	})
}

func TestLimit_FallsBackToIPWithoutUser(t *testing.T) {
	rl := newTestLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     1,
		RequestsPerMinuteAuth: 100,
	})
	h := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(h, "/api/v1/leads", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "/api/v1/leads", "10.0.0.1:1234").Code)
}

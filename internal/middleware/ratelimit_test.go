package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterLocalFallback(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Limit: PerMinute(60, 2)})
	h := rl.Handler(http.HandlerFunc(okHandler))

	send := func(subject string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/credits/me", nil)
		req = req.WithContext(WithExternalID(req.Context(), subject))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("user_a").Code)
	assert.Equal(t, http.StatusOK, send("user_a").Code)

	limited := send("user_a")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Equal(t, "60", limited.Header().Get("X-RateLimit-Limit"))

	// Buckets are per subject.
	assert.Equal(t, http.StatusOK, send("user_b").Code)
}

func TestKeyFuncs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	assert.Equal(t, "ratelimit:ip:10.0.0.9", KeyByIP(req))
	assert.Equal(t, "ratelimit:ip:10.0.0.9", KeyByUser(req))

	req = req.WithContext(WithExternalID(req.Context(), "user_z"))
	assert.Equal(t, "ratelimit:user:user_z", KeyByUser(req))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows up to burst then rejects", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{RPS: 0.001, Burst: 2, IdleTTL: time.Minute})
		handler := rl.Middleware(okHandler)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/events/ev-1", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/events/ev-1", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "too_many_requests")
	})

	t.Run("buckets are per client", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{RPS: 0.001, Burst: 1, IdleTTL: time.Minute})
		handler := rl.Middleware(okHandler)

		first := httptest.NewRequest(http.MethodGet, "/events/ev-1", nil)
		first.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		require.Equal(t, http.StatusOK, rec.Code)

		exhausted := httptest.NewRequest(http.MethodGet, "/events/ev-1", nil)
		exhausted.RemoteAddr = "10.0.0.1:9999"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, exhausted)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		other := httptest.NewRequest(http.MethodGet, "/events/ev-1", nil)
		other.RemoteAddr = "10.0.0.2:1234"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, other)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

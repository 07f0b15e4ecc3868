package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lara-shop/lara-api/internal/ratelimit"
)

func TestLimiter_AllowWithinWindow(t *testing.T) {
	limiter := ratelimit.New(3, time.Minute)
	defer limiter.Close()

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow("1.2.3.4"))
	}
	require.False(t, limiter.Allow("1.2.3.4"))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter := ratelimit.New(1, time.Minute)
	defer limiter.Close()

	require.True(t, limiter.Allow("1.2.3.4"))
	require.False(t, limiter.Allow("1.2.3.4"))
	require.True(t, limiter.Allow("5.6.7.8"))
}

func TestLimiter_WindowResets(t *testing.T) {
	limiter := ratelimit.New(1, 20*time.Millisecond)
	defer limiter.Close()

	require.True(t, limiter.Allow("1.2.3.4"))
	require.False(t, limiter.Allow("1.2.3.4"))

	time.Sleep(30 * time.Millisecond)
	require.True(t, limiter.Allow("1.2.3.4"))
}

func TestLimiter_MiddlewareReturns429(t *testing.T) {
	limiter := ratelimit.New(1, time.Minute)
	defer limiter.Close()

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, request())
	require.Equal(t, http.StatusTooManyRequests, request())
}

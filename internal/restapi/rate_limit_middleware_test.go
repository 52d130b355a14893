package restapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridership.subwaydash.org/internal/clock"
	"ridership.subwaydash.org/internal/models"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimitMiddleware_LimitsPerClient(t *testing.T) {
	mockClock := clock.NewMockClock(testNow)
	rl := NewRateLimitMiddleware(2, time.Second, nil, mockClock)
	defer rl.Stop()
	h := rl.Handler()(okHandler)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.0.2.1:5000"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.1:5001"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

	var body models.ResponseModel
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, http.StatusTooManyRequests, body.Code)
	assert.Equal(t, testNow.UnixMilli(), body.CurrentTime)
	assert.Nil(t, body.Data)

	other := httptest.NewRecorder()
	h.ServeHTTP(other, requestFrom("198.51.100.7:5000"))
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimitMiddleware_Exempt(t *testing.T) {
	rl := NewRateLimitMiddleware(1, time.Second, []string{" 127.0.0.1 ", ""}, clock.NewMockClock(testNow))
	defer rl.Stop()
	h := rl.Handler()(okHandler)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("127.0.0.1:9000"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	rl := NewRateLimitMiddleware(0, time.Second, nil, clock.NewMockClock(testNow))
	defer rl.Stop()
	h := rl.Handler()(okHandler)

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.0.2.1:5000"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitMiddleware_CleanupEvictsIdleClients(t *testing.T) {
	mockClock := clock.NewMockClock(testNow)
	rl := NewRateLimitMiddleware(5, time.Second, nil, mockClock)
	defer rl.Stop()

	rl.getLimiter("192.0.2.1")
	mockClock.Advance(5 * time.Minute)
	rl.getLimiter("192.0.2.2")

	mockClock.Advance(6 * time.Minute)
	rl.cleanupOnce()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.NotContains(t, rl.limiters, "192.0.2.1")
	assert.Contains(t, rl.limiters, "192.0.2.2")
}

func TestClientKey(t *testing.T) {
	assert.Equal(t, "192.0.2.1", clientKey(requestFrom("192.0.2.1:5000")))
	assert.Equal(t, "::1", clientKey(requestFrom("[::1]:5000")))
	assert.Equal(t, "unix", clientKey(requestFrom("unix")))
}

func TestRateLimitMiddleware_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimitMiddleware(1, time.Second, nil, clock.RealClock{})
	rl.Stop()
	rl.Stop()
}

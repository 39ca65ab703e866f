package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// hit sends one GET through the handler from the given remote address.
func hit(handler http.Handler, remoteAddr string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRateLimit_UnderLimit(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Max: 5, Window: time.Minute})(okHandler())

	for i := range 5 {
		w := hit(handler, "192.168.1.1:12345", nil)

		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Max: 2, Window: time.Minute})(okHandler())

	for range 2 {
		require.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:9999", nil).Code)
	}

	w := hit(handler, "10.0.0.1:9999", nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "rate_limited", body["error"])
	assert.Equal(t, "rate limit exceeded", body["message"])
	assert.Equal(t, float64(429), body["status"])
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Max: 1, Window: time.Minute})(okHandler())

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1234", nil).Code)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2:1234", nil).Code)

	// First address exhausted its budget; the port does not matter.
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.1:5678", nil).Code)
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	handler := RateLimit(RateLimitConfig{
		Max:    1,
		Window: time.Minute,
		KeyFunc: func(r *http.Request) string {
			return r.Header.Get("X-API-Key")
		},
	})(okHandler())

	byKey := func(key string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("X-API-Key", key) }
	}

	assert.Equal(t, http.StatusOK, hit(handler, "1.1.1.1:1", byKey("key-a")).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "2.2.2.2:2", byKey("key-a")).Code)
	assert.Equal(t, http.StatusOK, hit(handler, "1.1.1.1:1", byKey("key-b")).Code)
}

func TestRateLimit_XForwardedFor(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Max: 1, Window: time.Minute})(okHandler())

	viaProxy := func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "203.0.113.50, 70.41.3.18")
	}

	assert.Equal(t, http.StatusOK, hit(handler, "192.168.1.1:4444", viaProxy).Code)

	// Same first forwarded hop counts as the same client even though the
	// proxy connection address differs.
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "192.168.1.2:5555", viaProxy).Code)
}

func TestLimiter_EvictStale(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 1, Window: time.Minute})

	now := time.Now()
	_, _, ok := l.take("client", now)
	require.True(t, ok)
	require.Len(t, l.clients, 1)

	l.evictStale(now.Add(time.Minute))
	assert.Len(t, l.clients, 1, "entry inside the window pair must survive")

	l.evictStale(now.Add(3 * time.Minute))
	assert.Empty(t, l.clients)
}

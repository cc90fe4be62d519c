package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRateLimitedHandler(t *testing.T, limit int) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	config := RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Minute,
		KeyPrefix:         "crm_rate_limit",
	}
	handler := RateLimitMiddleware(client, config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return handler, mr
}

func serveFrom(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Property 11: Rate limiting blocks excessive requests
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("excessive requests are blocked with 429", prop.ForAll(
		func(limit int, excess int) bool {
			handler, _ := newRateLimitedHandler(t, limit)

			ok, blocked := 0, 0
			for i := 0; i < limit+excess; i++ {
				switch serveFrom(handler, "192.168.1.100:40000").Code {
				case http.StatusOK:
					ok++
				case http.StatusTooManyRequests:
					blocked++
				}
			}
			return ok == limit && blocked == excess
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimit_PortsShareOneCounter(t *testing.T) {
	handler, _ := newRateLimitedHandler(t, 2)

	assert.Equal(t, http.StatusOK, serveFrom(handler, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, serveFrom(handler, "10.0.0.1:2000").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(handler, "10.0.0.1:3000").Code)

	// another client has its own window
	assert.Equal(t, http.StatusOK, serveFrom(handler, "10.0.0.2:1000").Code)
}

func TestRateLimit_Headers(t *testing.T) {
	handler, mr := newRateLimitedHandler(t, 1)

	w := serveFrom(handler, "10.0.0.3:1000")
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	blocked := serveFrom(handler, "10.0.0.3:1000")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.NotEmpty(t, blocked.Header().Get("X-RateLimit-Reset"))

	// the window closes once the key expires
	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, serveFrom(handler, "10.0.0.3:1000").Code)
}

func TestRateLimit_RedisDownLetsRequestsThrough(t *testing.T) {
	// nothing listens on port 1
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	config := RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, KeyPrefix: "crm_rate_limit"}
	handler := RateLimitMiddleware(client, config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serveFrom(handler, "10.0.0.4:1000").Code)
	}
}

func TestRateLimit_FirstHitOpensWindow(t *testing.T) {
	handler, mr := newRateLimitedHandler(t, 5)

	serveFrom(handler, "10.0.0.5:1000")
	serveFrom(handler, "10.0.0.5:1000")

	count, err := mr.Get("crm_rate_limit:10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
	assert.Equal(t, time.Minute, mr.TTL("crm_rate_limit:10.0.0.5"))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zilconnect/config"
	"zilconnect/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "zilconnect-test",
	}
}

func newLimiter(limit int, window time.Duration) *RateLimiter {
	// Built directly so tests control the clock and skip the evict goroutine.
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl := newLimiter(3, time.Minute)
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("ip:1.2.3.4"))
	}
	assert.False(t, rl.Allow("ip:1.2.3.4"))

	// Another caller is unaffected.
	assert.True(t, rl.Allow("ip:5.6.7.8"))

	// The window slides; old hits expire.
	clock = clock.Add(61 * time.Second)
	assert.True(t, rl.Allow("ip:1.2.3.4"))
}

func limitedEngine(t *testing.T, rl *RateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(rl, testJWTConfig()))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/api/v1/offers", ok)
	r.GET("/health", ok)
	r.GET("/metrics", ok)
	return r
}

func get(r *gin.Engine, path, token, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":12345"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitKeysAuthenticatedTrafficByUser(t *testing.T) {
	rl := newLimiter(2, time.Minute)
	r := limitedEngine(t, rl)
	cfg := testJWTConfig()

	aliceToken, err := auth.GenerateAccessToken(cfg, 1, "alice@example.com")
	require.NoError(t, err)
	bobToken, err := auth.GenerateAccessToken(cfg, 2, "bob@example.com")
	require.NoError(t, err)

	// Both users share an IP; each gets their own budget.
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/offers", aliceToken, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/offers", aliceToken, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/api/v1/offers", aliceToken, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/offers", bobToken, "10.0.0.1").Code)

	// Anonymous traffic from another address draws on its own IP budget.
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/offers", "", "10.0.0.2").Code)
}

func TestRateLimitFallsBackToIPForAnonymousAndBadTokens(t *testing.T) {
	rl := newLimiter(2, time.Minute)
	r := limitedEngine(t, rl)

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/offers", "", "10.0.0.9").Code)
	// A garbage token does not mint a separate budget.
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/offers", "not-a-jwt", "10.0.0.9").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/api/v1/offers", "", "10.0.0.9").Code)
}

func TestRateLimitExemptsHealthAndMetrics(t *testing.T) {
	rl := newLimiter(1, time.Minute)
	r := limitedEngine(t, rl)

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/offers", "", "10.0.0.3").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/api/v1/offers", "", "10.0.0.3").Code)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/health", "", "10.0.0.3").Code)
		assert.Equal(t, http.StatusOK, get(r, "/metrics", "", "10.0.0.3").Code)
	}
}

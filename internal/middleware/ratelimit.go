package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"zilconnect/config"
	"zilconnect/internal/auth"

	"github.com/gin-gonic/gin"
)

// RateLimiter throttles API traffic over a sliding window. Authenticated
// callers are keyed by user ID so one busy NAT never starves everyone behind
// it; anonymous traffic falls back to the client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	hits     []time.Time
	lastSeen time.Time
}

func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    cfg.Requests,
		window:   cfg.Window,
		now:      time.Now,
	}
	go rl.evictLoop()
	return rl
}

// Allow records a hit for key and reports whether it stays within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	v := rl.visitors[key]
	if v == nil {
		v = &visitor{}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	cutoff := now.Add(-rl.window)
	kept := v.hits[:0]
	for _, t := range v.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	v.hits = kept
	if len(v.hits) >= rl.limit {
		return false
	}
	v.hits = append(v.hits, now)
	return true
}

// evictLoop drops visitors idle for a full window.
func (rl *RateLimiter) evictLoop() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		rl.mu.Lock()
		cutoff := rl.now().Add(-rl.window)
		for k, v := range rl.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(rl.visitors, k)
			}
		}
		rl.mu.Unlock()
	}
}

// callerKey prefers the user ID from a valid bearer token. This middleware
// runs ahead of AuthRequired, so it peeks at the header itself; a bad token
// simply falls through to IP keying and is rejected later by auth.
func callerKey(c *gin.Context, jwtCfg *config.JWTConfig) string {
	header := c.GetHeader("Authorization")
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		if claims, err := auth.ParseAccessToken(jwtCfg, parts[1]); err == nil {
			return fmt.Sprintf("user:%d", claims.UserID)
		}
	}
	return "ip:" + c.ClientIP()
}

// RateLimit throttles all routes except health and metrics, which monitoring
// polls on its own schedule.
func RateLimit(rl *RateLimiter, jwtCfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.FullPath() {
		case "/health", "/metrics":
			c.Next()
			return
		}
		if !rl.Allow(callerKey(c, jwtCfg)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

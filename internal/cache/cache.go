package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"zilconnect/config"

	"github.com/redis/go-redis/v9"
)

// Cache is an optional Redis layer in front of hot read paths (unread badge
// counts, connection-status lookups). A nil *Cache is valid and disables
// caching entirely; Redis errors are treated as misses so MySQL stays the
// source of truth.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns nil when cfg.Addr is empty.
func New(cfg *config.RedisConfig) *Cache {
	if cfg == nil || cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// NewFromClient wires an existing client (tests use miniredis).
func NewFromClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("unread:%d", userID)
}

func statusKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("connstatus:%d:%d", a, b)
}

// GetUnreadCount returns (count, true) on a hit.
func (c *Cache) GetUnreadCount(ctx context.Context, userID uint) (int64, bool) {
	if c == nil {
		return 0, false
	}
	v, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *Cache) SetUnreadCount(ctx context.Context, userID uint, count int64) {
	if c == nil {
		return
	}
	_ = c.client.Set(ctx, unreadKey(userID), count, c.ttl).Err()
}

// InvalidateUnread drops the badge count after any message write.
func (c *Cache) InvalidateUnread(ctx context.Context, userIDs ...uint) {
	if c == nil {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, unreadKey(id))
	}
	_ = c.client.Del(ctx, keys...).Err()
}

// GetConnectionStatus returns (status, true) on a hit.
func (c *Cache) GetConnectionStatus(ctx context.Context, a, b uint) (string, bool) {
	if c == nil {
		return "", false
	}
	v, err := c.client.Get(ctx, statusKey(a, b)).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *Cache) SetConnectionStatus(ctx context.Context, a, b uint, status string) {
	if c == nil {
		return
	}
	_ = c.client.Set(ctx, statusKey(a, b), status, c.ttl).Err()
}

// InvalidateConnectionStatus drops the cached status after any transition.
func (c *Cache) InvalidateConnectionStatus(ctx context.Context, a, b uint) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, statusKey(a, b)).Err()
}

// Close releases the underlying client. Safe on nil.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

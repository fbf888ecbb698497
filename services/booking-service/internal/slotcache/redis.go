package slotcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
)

// Redis shares listings across instances. Invalidation bumps a version
// counter that is part of every key, so stale entries are never read again and
// simply expire.
type Redis struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func NewRedis(rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, prefix: "slots", logger: logger}
}

type cached struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

func (c *Redis) genKey() string                       { return c.prefix + ":gen" }
func (c *Redis) providerKey(providerID string) string { return c.prefix + ":ver:" + providerID }

func (c *Redis) entryKey(ctx context.Context, k Key) (string, error) {
	vals, err := c.rdb.MGet(ctx, c.genKey(), c.providerKey(k.ProviderID)).Result()
	if err != nil {
		return "", err
	}
	return entryKey(c.prefix, k, version(vals[0]), version(vals[1])), nil
}

func entryKey(prefix string, k Key, gen, ver string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s", prefix, gen, k.ProviderID, ver, k.ServiceID, k.Date)
}

func version(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return "0"
}

func (c *Redis) Get(ctx context.Context, k Key) (availability.Result, bool) {
	key, err := c.entryKey(ctx, k)
	if err != nil {
		c.warn("slot cache version lookup failed", err)
		return availability.Result{}, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn("slot cache get failed", err)
		}
		return availability.Result{}, false
	}
	var v cached
	if err := json.Unmarshal(raw, &v); err != nil {
		c.warn("slot cache entry corrupt", err)
		return availability.Result{}, false
	}
	return availability.Result{Date: v.Date, Slots: v.Slots}, true
}

func (c *Redis) Set(ctx context.Context, k Key, res availability.Result) {
	key, err := c.entryKey(ctx, k)
	if err != nil {
		c.warn("slot cache version lookup failed", err)
		return
	}
	raw, err := json.Marshal(cached{Date: res.Date, Slots: res.Slots})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.warn("slot cache set failed", err)
	}
}

func (c *Redis) InvalidateProvider(ctx context.Context, providerID string) {
	if err := c.rdb.Incr(ctx, c.providerKey(providerID)).Err(); err != nil {
		c.warn("slot cache invalidate failed", err)
	}
}

func (c *Redis) InvalidateAll(ctx context.Context) {
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		c.warn("slot cache invalidate failed", err)
	}
}

func (c *Redis) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, "err", err)
	}
}

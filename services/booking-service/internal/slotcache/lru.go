package slotcache

import (
	"context"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
)

type lruEntry struct {
	res     availability.Result
	expires time.Time
}

// LRU is a bounded in-process cache for single-instance deployments.
type LRU struct {
	cache *lru.Cache[string, lruEntry]
	ttl   time.Duration
	now   func() time.Time
}

func NewLRU(size int, ttl time.Duration) (*LRU, error) {
	c, err := lru.New[string, lruEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: c, ttl: ttl, now: time.Now}, nil
}

func lruKey(k Key) string {
	return k.ProviderID + "|" + k.ServiceID + "|" + k.Date
}

func (c *LRU) Get(_ context.Context, k Key) (availability.Result, bool) {
	e, ok := c.cache.Get(lruKey(k))
	if !ok {
		return availability.Result{}, false
	}
	if c.now().After(e.expires) {
		c.cache.Remove(lruKey(k))
		return availability.Result{}, false
	}
	return availability.Result{Date: e.res.Date, Slots: slices.Clone(e.res.Slots)}, true
}

func (c *LRU) Set(_ context.Context, k Key, res availability.Result) {
	res.Slots = slices.Clone(res.Slots)
	c.cache.Add(lruKey(k), lruEntry{res: res, expires: c.now().Add(c.ttl)})
}

func (c *LRU) InvalidateProvider(_ context.Context, providerID string) {
	prefix := providerID + "|"
	for _, key := range c.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Remove(key)
		}
	}
}

func (c *LRU) InvalidateAll(context.Context) {
	c.cache.Purge()
}

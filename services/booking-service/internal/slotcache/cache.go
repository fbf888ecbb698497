// Package slotcache caches availability listings between booking mutations.
package slotcache

import (
	"context"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
)

type Key struct {
	ProviderID string
	ServiceID  string
	Date       string
}

// Cache misses on any backend error; a listing can always be recomputed.
type Cache interface {
	Get(ctx context.Context, k Key) (availability.Result, bool)
	Set(ctx context.Context, k Key, res availability.Result)
	// InvalidateProvider drops every listing for providerID.
	InvalidateProvider(ctx context.Context, providerID string)
	// InvalidateAll drops everything, e.g. after settings or catalog changes.
	InvalidateAll(ctx context.Context)
}

// Nop never caches.
type Nop struct{}

func (Nop) Get(context.Context, Key) (availability.Result, bool) { return availability.Result{}, false }
func (Nop) Set(context.Context, Key, availability.Result)        {}
func (Nop) InvalidateProvider(context.Context, string)           {}
func (Nop) InvalidateAll(context.Context)                        {}

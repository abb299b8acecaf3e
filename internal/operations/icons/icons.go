// Package icons resolves display icons for operations, memoizing lookups so
// repeated renders of the same operation do not re-query its task body.
package icons

import (
	"context"
	"time"

	"github.com/pkgops/pkgops/internal/cachemanager"
	"github.com/pkgops/pkgops/internal/log"
)

// Fallback is returned when a task body reports no icon of its own.
const Fallback = "package"

const DefaultTTL = time.Hour

// Source is anything that can name its own icon. Resolution may be slow
// (some sources shell out or hit the filesystem), hence the cache.
type Source interface {
	Icon() string
}

// Resolver memoizes icon lookups per operation ID.
type Resolver struct {
	cache *cachemanager.ReadThroughCache[string, string, Source]
	store cachemanager.CacheManager[string, string]
	ttl   time.Duration
}

// NewResolver builds a resolver with its own in-memory store. A zero ttl
// falls back to DefaultTTL; skipCache disables memoization entirely.
func NewResolver(ttl time.Duration, skipCache bool) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	store := cachemanager.NewInMemoryCacheManager[string, string]("icons", ttl, cachemanager.DefaultCleanupInterval)
	cache := cachemanager.NewReadThroughCache[string, string, Source](
		store,
		func(ctx context.Context, src Source) (string, error) {
			return src.Icon(), nil
		},
		skipCache,
	)

	return &Resolver{cache: cache, store: store, ttl: ttl}
}

// Resolve returns the icon for the given source, keyed by operation ID.
// Sources reporting an empty icon resolve to Fallback; the empty result is
// cached too, so a flaky source is not re-queried on every render.
func (r *Resolver) Resolve(ctx context.Context, operationID string, src Source) string {
	icon, err := r.cache.Get(ctx, operationID, src, r.ttl)
	if err != nil {
		log.Error(log.CatIcons, "icon resolution failed", "operation", operationID, "error", err)
		return Fallback
	}
	if icon == "" {
		return Fallback
	}
	return icon
}

// Invalidate drops the cached icon for one operation.
func (r *Resolver) Invalidate(ctx context.Context, operationID string) {
	if err := r.store.Delete(ctx, operationID); err != nil {
		log.Error(log.CatIcons, "icon invalidation failed", "operation", operationID, "error", err)
	}
}

// Flush drops every cached icon.
func (r *Resolver) Flush(ctx context.Context) {
	if err := r.store.Flush(ctx); err != nil {
		log.Error(log.CatIcons, "icon cache flush failed", "error", err)
	}
}

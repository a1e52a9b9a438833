package cache

import (
	"context"
	"time"

	"github.com/matzehuels/anchorlayout/pkg/observability"
)

// hooked reports cache traffic to observability hooks.
type hooked struct {
	Cache
	hooks func() observability.CacheHooks
}

// WithHooks wraps c so that every Get and Set is reported to the cache hooks
// registered with [observability.SetCacheHooks] at call time.
func WithHooks(c Cache) Cache {
	if _, ok := c.(*hooked); ok {
		return c
	}
	return &hooked{Cache: c, hooks: observability.Cache}
}

func (h *hooked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := h.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			h.hooks().OnCacheHit(ctx, keyType(key))
		} else {
			h.hooks().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (h *hooked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := h.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	h.hooks().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

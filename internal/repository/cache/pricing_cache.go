// Package cache fronts the pricing store with a Redis read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/socialoura/spotyz/internal/models"
)

const pricingKey = "spotyz:pricing"

type pricingStore interface {
	Get(ctx context.Context) (models.PricingDocument, error)
	Put(ctx context.Context, doc models.PricingDocument) error
}

// PricingCache serves reads from Redis and falls through to the backing store on a
// miss. Cache failures are logged and never surface to callers.
type PricingCache struct {
	next   pricingStore
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewPricingCache(next pricingStore, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *PricingCache {
	return &PricingCache{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *PricingCache) Get(ctx context.Context) (models.PricingDocument, error) {
	raw, err := c.rdb.Get(ctx, pricingKey).Bytes()
	switch {
	case err == nil:
		var doc models.PricingDocument
		if err := json.Unmarshal(raw, &doc); err == nil {
			return doc, nil
		}
		c.logger.Warn("discard corrupt pricing cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("read pricing cache", "err", err)
	}

	doc, err := c.next.Get(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode pricing: %w", err)
	}
	if err := c.rdb.Set(ctx, pricingKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("write pricing cache", "err", err)
	}
	return doc, nil
}

func (c *PricingCache) Put(ctx context.Context, doc models.PricingDocument) error {
	if err := c.next.Put(ctx, doc); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, pricingKey).Err(); err != nil {
		c.logger.Warn("invalidate pricing cache", "err", err)
	}
	return nil
}

package stockcache

import (
	"context"

	"github.com/threadline/warehouse-backend/pkg/logger"
	"github.com/threadline/warehouse-backend/pkg/redis"
)

// Invalidator drops cached balances after a ledger mutation commits. Calls
// are best-effort; a failed invalidation must never fail the mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, skuIDs ...string)
}

type redisInvalidator struct {
	client *redis.Client
	logg   *logger.Logger
}

// NewRedisInvalidator wires the balance cache invalidator to redis.
func NewRedisInvalidator(client *redis.Client, logg *logger.Logger) Invalidator {
	return &redisInvalidator{client: client, logg: logg}
}

func (i *redisInvalidator) Invalidate(ctx context.Context, skuIDs ...string) {
	if i.client == nil || len(skuIDs) == 0 {
		return
	}
	if err := i.client.InvalidateBalances(ctx, skuIDs...); err != nil && i.logg != nil {
		i.logg.Warn(i.logg.WithField(ctx, "sku_ids", skuIDs), "balance cache invalidation failed")
	}
}

type noopInvalidator struct{}

// NewNoopInvalidator returns an invalidator that does nothing. Used when the
// cache is disabled and in tests.
func NewNoopInvalidator() Invalidator {
	return noopInvalidator{}
}

func (noopInvalidator) Invalidate(context.Context, ...string) {}

package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fixhub/fixhub-backend/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"
	defaultCacheTTL        = 10 * time.Minute
)

// ProductCache is a read-through cache for the catalog. The null-object
// implementation keeps handlers unconditional when Redis is unconfigured.
type ProductCache interface {
	GetProduct(ctx context.Context, id string) (*models.Product, bool)
	SetProduct(ctx context.Context, product *models.Product)
	GetList(ctx context.Context, category string, page, limit int) (map[string]interface{}, bool)
	SetList(ctx context.Context, category string, page, limit int, response map[string]interface{})
	DropProduct(ctx context.Context, id string)
	Invalidate(ctx context.Context)
}

// NewProductCache picks the Redis-backed cache when a client is available,
// the no-op otherwise.
func NewProductCache(client *redis.Client, logger *zap.Logger) ProductCache {
	if client == nil {
		return noopProductCache{}
	}
	return &redisProductCache{redis: client, ttl: defaultCacheTTL, logger: logger}
}

type redisProductCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func (cm *redisProductCache) GetProduct(ctx context.Context, id string) (*models.Product, bool) {
	data, err := cm.redis.Get(ctx, productCachePrefix+id).Result()
	if err != nil {
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		cm.logger.Warn("Failed to unmarshal cached product", zap.Error(err))
		return nil, false
	}
	return &product, true
}

func (cm *redisProductCache) SetProduct(ctx context.Context, product *models.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := cm.redis.Set(ctx, productCachePrefix+product.ID.String(), data, cm.ttl).Err(); err != nil {
		cm.logger.Warn("Failed to cache product", zap.Error(err))
	}
}

func (cm *redisProductCache) GetList(ctx context.Context, category string, page, limit int) (map[string]interface{}, bool) {
	version, err := cm.redis.Get(ctx, cacheVersionKey).Int64()
	if err != nil || version == 0 {
		return nil, false
	}

	data, err := cm.redis.Get(ctx, cm.listKey(version, category, page, limit)).Result()
	if err != nil {
		return nil, false
	}

	var response map[string]interface{}
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		cm.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return response, true
}

func (cm *redisProductCache) SetList(ctx context.Context, category string, page, limit int, response map[string]interface{}) {
	version, err := cm.redis.Get(ctx, cacheVersionKey).Int64()
	if err != nil {
		version = 1
		if err := cm.redis.Set(ctx, cacheVersionKey, version, 0).Err(); err != nil {
			return
		}
	}

	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := cm.redis.Set(ctx, cm.listKey(version, category, page, limit), data, cm.ttl).Err(); err != nil {
		cm.logger.Warn("Failed to cache product list", zap.Error(err))
	}
}

// DropProduct removes a single cached product detail entry.
func (cm *redisProductCache) DropProduct(ctx context.Context, id string) {
	if err := cm.redis.Del(ctx, productCachePrefix+id).Err(); err != nil {
		cm.logger.Warn("Failed to drop cached product", zap.Error(err))
	}
}

// Invalidate bumps the list version key; stale list entries age out via TTL.
func (cm *redisProductCache) Invalidate(ctx context.Context) {
	if err := cm.redis.Incr(ctx, cacheVersionKey).Err(); err != nil {
		cm.logger.Warn("Failed to bump product cache version", zap.Error(err))
	}
}

func (cm *redisProductCache) listKey(version int64, category string, page, limit int) string {
	return fmt.Sprintf("%s%d:%s:%d:%d", productListCachePrefix, version, category, page, limit)
}

type noopProductCache struct{}

func (noopProductCache) GetProduct(context.Context, string) (*models.Product, bool) { return nil, false }
func (noopProductCache) SetProduct(context.Context, *models.Product)               {}
func (noopProductCache) GetList(context.Context, string, int, int) (map[string]interface{}, bool) {
	return nil, false
}
func (noopProductCache) SetList(context.Context, string, int, int, map[string]interface{}) {}
func (noopProductCache) DropProduct(context.Context, string)                               {}
func (noopProductCache) Invalidate(context.Context)                                        {}

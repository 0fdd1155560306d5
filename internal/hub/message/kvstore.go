package message

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// KVStore is the subset of the redis client used by the distributed cache and the action syncronizer
type KVStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

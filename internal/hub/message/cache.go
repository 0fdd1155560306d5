package message

import (
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type CacheRemover interface {
	RemoveMessage(ID string)
}

type Cache interface {
	AddMessage(message []byte)
	GetMessages() [][]byte
}

type Cacher interface {
	CacheRemover
	Cache
	GetMessage(ID string) ([]byte, bool)
	Purge() int
}

// NewCacher returns the pending actions cache. Multiple agent instances share a redis backed cache
func NewCacher(isMultiInstance bool, log *zap.SugaredLogger, kvStore *redis.Client) Cacher {
	if isMultiInstance {
		return &distributedCache{
			kvStore: kvStore,
			log:     log,
		}
	}

	return &localCache{
		log:      log,
		lock:     sync.RWMutex{},
		messages: make(map[string][]byte),
	}
}

package message

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/defs"
)

const (
	keyPrefix  = "admin_action:"
	keyPattern = "admin_action:*"
)

var ctx = context.Background()

// distributedCache is a messages cache to be used in multi-instance agent deployments.
// Entries expire in redis together with the action.
type distributedCache struct {
	kvStore KVStore
	log     *zap.SugaredLogger
}

// AddMessage stores a message into the cache
func (c *distributedCache) AddMessage(message []byte) {
	action, err := defs.ParseAction(message)
	if err != nil {
		c.log.Debugf("message Cache: error [%v] while unmarshaling the message [%s]", err, string(message))
		return
	}

	//add only not expired messages
	if action.Base().IsExpired() {
		return
	}

	// the action is still valid during its expiration second
	ttl := time.Until(time.Unix(action.Base().Expiration+1, 0))
	c.kvStore.Set(ctx, c.getKey(action.Base().ID), string(message), ttl)
}

// GetMessages returns all received and not expired messages
func (c *distributedCache) GetMessages() [][]byte {
	messages := make([][]byte, 0)

	iter := c.kvStore.Scan(ctx, 0, keyPattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		msg, err := c.kvStore.Get(ctx, key).Result()
		if err != nil {
			c.log.Errorf("message Cache: error while retrieving messages: %v", err)
		} else {
			messages = append(messages, []byte(msg))
		}
	}

	if err := iter.Err(); err != nil {
		c.log.Errorf("message Cache: error while retrieving messages: %v", err)
	}

	return messages
}

// GetMessage returns the cached message for the given ID
func (c *distributedCache) GetMessage(ID string) ([]byte, bool) {
	msg, err := c.kvStore.Get(ctx, c.getKey(ID)).Result()
	if err != nil {
		return nil, false
	}

	return []byte(msg), true
}

// RemoveMessage deletes the message for the given ID
func (c *distributedCache) RemoveMessage(ID string) {
	c.log.Debugf("message Cache: removing message with ID `%s`", ID)
	c.kvStore.Del(ctx, c.getKey(ID))
}

// Purge has nothing to do, redis evicts expired keys
func (c *distributedCache) Purge() int {
	return 0
}

func (c *distributedCache) getKey(ID string) string {
	return keyPrefix + ID
}

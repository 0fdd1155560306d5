package message

import (
	"sync"

	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/defs"
)

// localCache is a messages cache to be used in single instance agent
type localCache struct {
	messages map[string][]byte
	lock     sync.RWMutex
	log      *zap.SugaredLogger
}

// AddMessage stores a message into the cache
func (c *localCache) AddMessage(message []byte) {
	c.lock.Lock()
	defer c.lock.Unlock()

	action, err := defs.ParseAction(message)
	if err != nil {
		c.log.Debugf("message Cache: error [%v] while unmarshaling the message [%s]", err, string(message))
		return
	}

	c.messages[action.Base().ID] = message
}

// GetMessages returns all received and not expired messages. All expired or invalid messages will be cleared out
func (c *localCache) GetMessages() [][]byte {
	c.lock.Lock()
	defer c.lock.Unlock()

	res := make([][]byte, 0)
	for id, message := range c.messages {
		if c.isStale(message) {
			delete(c.messages, id)
		} else {
			res = append(res, message)
		}
	}

	return res
}

// GetMessage returns the cached message for the given ID, expired ones included
func (c *localCache) GetMessage(ID string) ([]byte, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	message, ok := c.messages[ID]
	return message, ok
}

// RemoveMessage deletes the message for the given ID
func (c *localCache) RemoveMessage(ID string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.log.Debugf("message Cache: removing message with ID `%s`", ID)
	delete(c.messages, ID)
}

// Purge clears out expired or invalid messages and returns how many were removed
func (c *localCache) Purge() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	removed := 0
	for id, message := range c.messages {
		if c.isStale(message) {
			delete(c.messages, id)
			removed++
		}
	}

	return removed
}

func (c *localCache) isStale(message []byte) bool {
	action, err := defs.ParseAction(message)
	return err != nil || action.Base().IsExpired()
}

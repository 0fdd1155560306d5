package action

import (
	"context"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/pkg/errors"

	"github.com/qredo/admin-agent/internal/config"
	"github.com/qredo/admin-agent/internal/hub/message"
)

var ctxBackground = context.Background()

// ActionSync provides functionality to make sure an action is handled by a single agent when load balancing is enabled
type ActionSync interface {
	ShouldHandleAction(actionID string) bool
	AcquireLock(actionID string) error
	Release(actionID string) error
}

type syncI interface {
	NewMutex(name string, options ...redsync.Option) *redsync.Mutex
}

type mutex interface {
	Lock() error
	Unlock() (bool, error)
}

type syncronize struct {
	cache            message.KVStore
	newMutex         func(name string) mutex
	cfgLoadBalancing *config.LoadBalancing

	lock    sync.Mutex
	mutexes map[string]mutex
}

// NewSyncronizer returns a new ActionSync that's an instance of syncronize
func NewSyncronizer(conf *config.LoadBalancing, cache message.KVStore, sync syncI) ActionSync {
	return &syncronize{
		cfgLoadBalancing: conf,
		cache:            cache,
		newMutex: func(name string) mutex {
			return sync.NewMutex(name)
		},
		mutexes: make(map[string]mutex),
	}
}

// ShouldHandleAction returns true if the action wasn't already handled by another agent
// and no other handler of this agent is working on it
func (a *syncronize) ShouldHandleAction(actionID string) bool {
	if err := a.cache.Get(ctxBackground, a.getKey(actionID)).Err(); err == nil {
		return false
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	// another handler of this agent holds the action
	if _, ok := a.mutexes[actionID]; ok {
		return false
	}

	// set the mutex to lock the action
	a.mutexes[actionID] = a.newMutex(actionID)
	return true
}

// AcquireLock locks the mutex set for the action to be handled
func (a *syncronize) AcquireLock(actionID string) error {
	m, err := a.getMutex(actionID)
	if err != nil {
		return err
	}

	if err := m.Lock(); err != nil {
		a.dropMutex(actionID)
		time.Sleep(time.Duration(a.cfgLoadBalancing.OnLockErrorTimeOutMs) * time.Millisecond)
		return err
	}

	return nil
}

// Release unlocks the mutex and sets the action id in the cache to signal it was already handled
func (a *syncronize) Release(actionID string) error {
	m, err := a.getMutex(actionID)
	if err != nil {
		return err
	}
	defer a.dropMutex(actionID)

	_, err = m.Unlock()
	a.cache.Set(ctxBackground, a.getKey(actionID), 1, time.Duration(a.cfgLoadBalancing.ActionIDExpirationSec)*time.Second)

	return err
}

func (a *syncronize) getMutex(actionID string) (mutex, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	m, ok := a.mutexes[actionID]
	if !ok {
		return nil, errors.Errorf("no lock prepared for action `%s`", actionID)
	}

	return m, nil
}

func (a *syncronize) dropMutex(actionID string) {
	a.lock.Lock()
	defer a.lock.Unlock()

	delete(a.mutexes, actionID)
}

func (a *syncronize) getKey(actionID string) string {
	return "admin_action_handled:" + actionID
}

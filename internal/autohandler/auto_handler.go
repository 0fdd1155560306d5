// Package autohandler provides a mechanism to receive admin actions as bytes from the feed hub.
// Every action addressed to this client is executed as soon as it arrives, unless it has expired
// or another agent instance already picked it up.

package autohandler

import (
	"sync"

	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/action"
	"github.com/qredo/admin-agent/internal/config"
	"github.com/qredo/admin-agent/internal/defs"
	"github.com/qredo/admin-agent/internal/hub"
	"github.com/qredo/admin-agent/internal/hub/message"
	"github.com/qredo/admin-agent/internal/metrics"
)

type AutoHandler interface {
	Listen(wg *sync.WaitGroup)
	GetFeedClient() *hub.HubFeedClient
	Stop()
}

type autoActionHandler struct {
	hub.HubFeedClient
	log *zap.SugaredLogger

	syncronizer          action.ActionSync
	loadBalancingEnabled bool
	executor             action.Executor
	messageCache         message.CacheRemover

	handling  sync.WaitGroup
	lock      sync.Mutex
	lastError error
}

// NewAutoHandler returns a new AutoHandler instance initialized with the provided parameters
// The AutoHandler has an internal FeedClient which means it will be stopped when the service stops
// or the Feed channel is closed on the sender side
func NewAutoHandler(log *zap.SugaredLogger, config config.Config, syncronizer action.ActionSync, executor action.Executor, messageCache message.CacheRemover) AutoHandler {
	return &autoActionHandler{
		HubFeedClient:        hub.NewHubFeedClient(true),
		log:                  log,
		syncronizer:          syncronizer,
		loadBalancingEnabled: config.LoadBalancing.Enable,
		executor:             executor,
		messageCache:         messageCache,
	}
}

// Listen is constantly listening for messages on the Feed channel.
// The Feed channel is always closed by the sender. When this happens, the AutoHandler stops
// after the actions in progress are done
func (a *autoActionHandler) Listen(wg *sync.WaitGroup) {
	a.log.Debug("AutoHandler: listening")
	wg.Done()

	for message := range a.Feed {
		a.handling.Add(1)
		go func(message []byte) {
			defer a.handling.Done()
			a.handleMessage(message)
		}(message)
	}

	//channel was closed by the sender
	a.handling.Wait()
	a.log.Info("AutoHandler: stopped")
}

func (a *autoActionHandler) Stop() {
	a.log.Debug("AutoHandler: stopping")
	close(a.Feed)
}

func (a *autoActionHandler) GetFeedClient() *hub.HubFeedClient {
	return &a.HubFeedClient
}

func (a *autoActionHandler) handleMessage(message []byte) {
	adminAction, err := defs.ParseAction(message)
	if err != nil {
		a.log.Errorf("AutoHandler: fail to unmarshal the message `%v`, err: %v", string(message), err)
		a.setLastError(err)
		return
	}

	actionID := adminAction.Base().ID
	if adminAction.Base().IsExpired() {
		metrics.IncExpired()
		a.log.Infof("AutoHandler: action `%s` has expired", actionID)
		a.removeFromCache(actionID)
		return
	}

	if !a.shouldHandleAction(actionID) {
		return
	}

	a.handleAction(adminAction)
}

func (a *autoActionHandler) shouldHandleAction(actionID string) bool {
	if a.loadBalancingEnabled {
		//check if the action was already picked up by another agent
		if !a.syncronizer.ShouldHandleAction(actionID) {
			a.log.Debugf("AutoHandler: action `%s` was already handled!", actionID)
			return false
		}
	}

	return true
}

func (a *autoActionHandler) handleAction(adminAction defs.Action) {
	actionID := adminAction.Base().ID
	if a.loadBalancingEnabled {
		if err := a.syncronizer.AcquireLock(actionID); err != nil {
			a.log.Debugf("AutoHandler, mutex lock err: %v, action `%s`", err, actionID)
			return
		}
		defer func() {
			if err := a.syncronizer.Release(actionID); err != nil {
				a.log.Debugf("AutoHandler, mutex unlock err: %v, action `%s`", err, actionID)
			}
		}()
	}

	if err := a.executor.Execute(adminAction); err != nil {
		metrics.IncFailed()
		a.log.Errorf("AutoHandler: action `%s` failed, err: %v", actionID, err)
		a.setLastError(err)
		return
	}

	metrics.IncHandled(metrics.ModeAuto)
	a.log.Infof("AutoHandler: action `%s` handled automatically", actionID)
	a.removeFromCache(actionID)
}

func (a *autoActionHandler) removeFromCache(actionID string) {
	if a.messageCache != nil {
		a.messageCache.RemoveMessage(actionID)
	}
}

func (a *autoActionHandler) setLastError(err error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.lastError = err
}

func (a *autoActionHandler) getLastError() error {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.lastError
}

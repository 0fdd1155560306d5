package service

import (
	"sort"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/action"
	"github.com/qredo/admin-agent/internal/api"
	"github.com/qredo/admin-agent/internal/defs"
	"github.com/qredo/admin-agent/internal/hub/message"
	"github.com/qredo/admin-agent/internal/metrics"
)

type ActionService interface {
	Handle(actionID string) error
	Dismiss(actionID string) error
	Pending() []api.PendingAction
}

func NewActionService(syncronizer action.ActionSync, log *zap.SugaredLogger, loadBalancingEnabled bool, messageCache message.Cacher, executor action.Executor) ActionService {
	return &actionSrv{
		syncronizer:          syncronizer,
		log:                  log,
		loadBalancingEnabled: loadBalancingEnabled,
		messageCache:         messageCache,
		executor:             executor,
	}
}

type actionSrv struct {
	syncronizer          action.ActionSync
	log                  *zap.SugaredLogger
	loadBalancingEnabled bool
	messageCache         message.Cacher
	executor             action.Executor
}

// Handle executes the pending action for the given actionID
func (a *actionSrv) Handle(actionID string) error {
	a.log.Infof("Action Service: handling action `%s`", actionID)

	adminAction, err := a.getPending(actionID)
	if err != nil {
		return err
	}

	if adminAction.Base().IsExpired() {
		metrics.IncExpired()
		a.messageCache.RemoveMessage(actionID)
		a.log.Infof("Action Service: action `%s` has expired", actionID)
		return defs.ErrBadRequest().WithDetail("action expired")
	}

	if a.loadBalancingEnabled {
		if !a.syncronizer.ShouldHandleAction(actionID) {
			a.log.Infof("Action Service: action `%s` was already handled!", actionID)
			return defs.ErrConflict().WithDetail("action already handled or in progress")
		}

		if err := a.syncronizer.AcquireLock(actionID); err != nil {
			a.log.Errorf("Action Service: lock acquire err: %v, actionID `%s`", err, actionID)
			return err
		}
		defer func() {
			if err := a.syncronizer.Release(actionID); err != nil {
				a.log.Errorf("Action Service: lock release err: %v, actionID `%s`", err, actionID)
			}
		}()
	}

	if err := a.executor.Execute(adminAction); err != nil {
		metrics.IncFailed()
		return defs.ErrInternal().WithDetail("failed to execute the action").Wrap(err)
	}

	metrics.IncHandled(metrics.ModeManual)
	a.messageCache.RemoveMessage(actionID)

	return nil
}

// Dismiss drops the pending action for the given actionID without executing it
func (a *actionSrv) Dismiss(actionID string) error {
	a.log.Infof("Action Service: dismissing action `%s`", actionID)

	if _, ok := a.messageCache.GetMessage(actionID); !ok {
		return defs.ErrNotFound().WithDetail("action not found")
	}

	metrics.IncDismissed()
	a.messageCache.RemoveMessage(actionID)
	return nil
}

// Pending returns the received actions that are not expired yet, soonest to expire first
func (a *actionSrv) Pending() []api.PendingAction {
	res := make([]api.PendingAction, 0)

	for _, msg := range a.messageCache.GetMessages() {
		adminAction, err := defs.ParseAction(msg)
		if err != nil {
			a.log.Debugf("Action Service: skipping invalid cached message, err: %v", err)
			continue
		}

		pending := api.PendingAction{}
		if err := copier.Copy(&pending, adminAction.Base()); err != nil {
			a.log.Errorf("Action Service: failed to copy action `%s`, err: %v", adminAction.Base().ID, err)
			continue
		}

		pending.Kind = adminAction.Kind()
		pending.ExpiresIn = int64(adminAction.Base().ExpiresIn().Seconds())
		res = append(res, pending)
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Expiration == res[j].Expiration {
			return res[i].ID < res[j].ID
		}
		return res[i].Expiration < res[j].Expiration
	})

	return res
}

func (a *actionSrv) getPending(actionID string) (defs.Action, error) {
	msg, ok := a.messageCache.GetMessage(actionID)
	if !ok {
		return nil, defs.ErrNotFound().WithDetail("action not found")
	}

	adminAction, err := defs.ParseAction(msg)
	if err != nil {
		a.log.Errorf("Action Service: cached action `%s` is invalid, err: %v", actionID, err)
		a.messageCache.RemoveMessage(actionID)
		return nil, defs.ErrInternal().WithDetail("invalid cached action").Wrap(err)
	}

	return adminAction, nil
}

package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/qredo/admin-agent/internal/api"
	"github.com/qredo/admin-agent/internal/defs"
)

func (a Router) PendingActions(_ *defs.RequestContext, _ http.ResponseWriter, _ *http.Request) (any, error) {
	return api.PendingActionsResponse{
		Actions: a.actionService.Pending(),
	}, nil
}

func (a Router) ActionHandle(_ *defs.RequestContext, _ http.ResponseWriter, r *http.Request) (any, error) {
	actionID := mux.Vars(r)["action_id"]
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return nil, defs.ErrBadRequest().WithDetail("empty actionID")
	}

	if err := a.actionService.Handle(actionID); err != nil {
		return nil, err
	}

	return api.ActionResponse{
		ActionID: actionID,
		Status:   "handled",
	}, nil
}

func (a Router) ActionDismiss(_ *defs.RequestContext, _ http.ResponseWriter, r *http.Request) (any, error) {
	actionID := mux.Vars(r)["action_id"]
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return nil, defs.ErrBadRequest().WithDetail("empty actionID")
	}

	if err := a.actionService.Dismiss(actionID); err != nil {
		return nil, err
	}

	return api.ActionResponse{
		ActionID: actionID,
		Status:   "dismissed",
	}, nil
}

func (a Router) HealthCheckVersion(_ *defs.RequestContext, w http.ResponseWriter, r *http.Request) (any, error) {
	return a.version, nil
}

func (a Router) HealthCheckConfig(_ *defs.RequestContext, w http.ResponseWriter, r *http.Request) (any, error) {
	return a.config, nil
}

func (a Router) HealthCheckStatus(_ *defs.RequestContext, w http.ResponseWriter, r *http.Request) (any, error) {
	return a.agentService.GetStatus(), nil
}

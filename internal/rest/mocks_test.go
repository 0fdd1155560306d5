package rest

import (
	"github.com/qredo/admin-agent/internal/api"
	"github.com/qredo/admin-agent/internal/util"
)

var testLog = util.NewTestLogger()

type mockActionService struct {
	HandleCalled  bool
	DismissCalled bool
	PendingCalled bool
	LastActionId  string
	NextError     error
	NextPending   []api.PendingAction
}

func (m *mockActionService) Handle(actionID string) error {
	m.HandleCalled = true
	m.LastActionId = actionID
	return m.NextError
}

func (m *mockActionService) Dismiss(actionID string) error {
	m.DismissCalled = true
	m.LastActionId = actionID
	return m.NextError
}

func (m *mockActionService) Pending() []api.PendingAction {
	m.PendingCalled = true
	return m.NextPending
}

type mockAgentService struct {
	StartCalled     bool
	StopCalled      bool
	GetStatusCalled bool

	NextStartError                error
	NextHealthCheckStatusResponse *api.HealthCheckStatusResponse
}

func (m *mockAgentService) Start() error {
	m.StartCalled = true
	return m.NextStartError
}

func (m *mockAgentService) Stop() {
	m.StopCalled = true
}

func (m *mockAgentService) GetStatus() *api.HealthCheckStatusResponse {
	m.GetStatusCalled = true
	return m.NextHealthCheckStatusResponse
}

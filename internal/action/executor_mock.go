package action

import (
	"github.com/qredo/admin-agent/internal/defs"
)

type MockExecutor struct {
	ExecuteCalled bool
	LastAction    defs.Action
	NextError     error
	Counter       int
}

func (m *MockExecutor) Execute(action defs.Action) error {
	m.ExecuteCalled = true
	m.LastAction = action
	m.Counter++
	return m.NextError
}

package service

import (
	"sync"

	"github.com/qredo/admin-agent/internal/api"
	"github.com/qredo/admin-agent/internal/config"
	"github.com/qredo/admin-agent/internal/hub"
	"github.com/qredo/admin-agent/internal/util"
)

var testLog = util.NewTestLogger()

func defaultConfig() config.Config {
	cfg := config.Config{}
	cfg.Default()
	return cfg
}

type mockAutoHandler struct {
	StopCalled          bool
	ListenCalled        bool
	GetFeedClientCalled bool

	NextHubFeedClient *hub.HubFeedClient
}

func (m *mockAutoHandler) Listen(wg *sync.WaitGroup) {
	m.ListenCalled = true
	wg.Done()
}

func (m *mockAutoHandler) Stop() {
	m.StopCalled = true
}

func (m *mockAutoHandler) GetFeedClient() *hub.HubFeedClient {
	m.GetFeedClientCalled = true
	return m.NextHubFeedClient
}

type mockFeedHub struct {
	NextRun                bool
	RunCalled              bool
	RegisterClientCalled   bool
	UnregisterClientCalled bool
	StopCalled             bool
	IsRunningCalled        bool
	GetSourceStatusCalled  bool
	LastRegisteredClient   *hub.HubFeedClient

	NextSourceStatus api.SourceStatus
}

func (m *mockFeedHub) IsRunning() bool {
	m.IsRunningCalled = true
	return m.NextRun
}

func (m *mockFeedHub) Run() bool {
	m.RunCalled = true
	return m.NextRun
}

func (m *mockFeedHub) Stop() {
	m.StopCalled = true
}

func (m *mockFeedHub) RegisterClient(client *hub.HubFeedClient) {
	m.RegisterClientCalled = true
	m.LastRegisteredClient = client
}

func (m *mockFeedHub) UnregisterClient(client *hub.HubFeedClient) {
	m.UnregisterClientCalled = true
}

func (m *mockFeedHub) GetSourceStatus() api.SourceStatus {
	m.GetSourceStatusCalled = true
	return m.NextSourceStatus
}

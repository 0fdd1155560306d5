package service

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/api"
	"github.com/qredo/admin-agent/internal/autohandler"
	"github.com/qredo/admin-agent/internal/config"
	"github.com/qredo/admin-agent/internal/hub"
	"github.com/qredo/admin-agent/internal/hub/message"
)

type AgentService interface {
	Start() error
	Stop()
	GetStatus() *api.HealthCheckStatusResponse
}

func NewAgentService(config config.Config, feedHub hub.FeedHub, ah autohandler.AutoHandler, messageCache message.Cacher, log *zap.SugaredLogger) AgentService {
	return &agentSrv{
		config:       config,
		feedHub:      feedHub,
		autoHandler:  ah,
		messageCache: messageCache,
		log:          log,
		scheduler:    cron.New(),
	}
}

type agentSrv struct {
	config       config.Config
	feedHub      hub.FeedHub
	autoHandler  autohandler.AutoHandler
	messageCache message.Cacher
	log          *zap.SugaredLogger
	scheduler    *cron.Cron
}

// Start is running the feed hub and the purge of expired pending actions.
// It also makes sure the auto handler is registered to the hub and is listening for incoming actions, if enabled in the config
func (a *agentSrv) Start() error {
	if a.autoHandler != nil {
		var wg sync.WaitGroup
		wg.Add(1)

		go a.autoHandler.Listen(&wg)
		wg.Wait()
	}

	if !a.feedHub.Run() {
		a.log.Error("Agent Service: failed to start the feed hub")
		if a.autoHandler != nil {
			a.autoHandler.Stop()
		}
		return fmt.Errorf("failed to start the feed hub")
	}

	//feed hub is running, register the autoHandler if enabled
	if a.autoHandler != nil {
		a.feedHub.RegisterClient(a.autoHandler.GetFeedClient())
	}

	schedule := fmt.Sprintf("@every %ds", a.config.Cache.PurgeIntervalSec)
	if _, err := a.scheduler.AddFunc(schedule, a.purge); err != nil {
		a.feedHub.Stop()
		return errors.Wrap(err, "schedule cache purge")
	}
	a.scheduler.Start()

	return nil
}

// Stop is called to stop the service on request, by ex: when the app is stopped
func (a *agentSrv) Stop() {
	a.log.Info("Agent Service: stopping")

	<-a.scheduler.Stop().Done()
	a.feedHub.Stop()
}

func (a *agentSrv) GetStatus() *api.HealthCheckStatusResponse {
	return &api.HealthCheckStatusResponse{
		SourceStatus:   a.feedHub.GetSourceStatus(),
		PendingActions: len(a.messageCache.GetMessages()),
		AutoHandle:     a.autoHandler != nil,
	}
}

func (a *agentSrv) purge() {
	if removed := a.messageCache.Purge(); removed > 0 {
		a.log.Infof("Agent Service: %d expired actions purged", removed)
	}
}

package hub

import (
	"sync"

	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/api"
	"github.com/qredo/admin-agent/internal/defs"
	"github.com/qredo/admin-agent/internal/hub/message"
	"github.com/qredo/admin-agent/internal/metrics"
)

type HubFeedClient struct {
	Feed       chan []byte
	IsInternal bool
}

func NewHubFeedClient(isInternal bool) HubFeedClient {
	return HubFeedClient{
		Feed:       make(chan []byte),
		IsInternal: isInternal,
	}
}

// MessageFilter reports whether a message read from the source is meant for this agent
type MessageFilter func(message []byte) bool

// FeedHub maintains the set of active clients
// It provides ways to register and unregister clients
// Broadcasts messages from the source to all active clients
type FeedHub interface {
	Run() bool
	Stop()
	RegisterClient(client *HubFeedClient)
	UnregisterClient(client *HubFeedClient)
	IsRunning() bool
	GetSourceStatus() api.SourceStatus
}

type feedHubImpl struct {
	source    Source
	broadcast chan []byte
	clients   map[*HubFeedClient]bool
	filter    MessageFilter

	log       *zap.SugaredLogger
	lock      sync.RWMutex
	isRunning bool

	messageCache message.Cache
}

// NewFeedHub returns a FeedHub object that's an instance of FeedHubImpl
func NewFeedHub(source Source, log *zap.SugaredLogger, messageCache message.Cache, filter MessageFilter) FeedHub {
	return &feedHubImpl{
		source:       source,
		log:          log,
		clients:      make(map[*HubFeedClient]bool),
		lock:         sync.RWMutex{},
		messageCache: messageCache,
		filter:       filter,
	}
}

// IsRunning returns true only while messages from the source are being broadcast
func (w *feedHubImpl) IsRunning() bool {
	w.lock.RLock()
	defer w.lock.RUnlock()

	return w.isRunning
}

// Run makes sure the source is connected and the broadcast channel is ready to receive messages
func (w *feedHubImpl) Run() bool {
	if !w.source.Connect() {
		return false
	}
	var wg sync.WaitGroup
	wg.Add(2)

	//channel used to receive messages from the source and send to all listening feed clients
	w.broadcast = w.source.GetSendChannel()

	go w.startHub(&wg)
	go w.source.Listen(&wg)

	wg.Wait() //wait for the hub to properly start and the source to start listening for messages
	return true
}

// Stop is closing the source connection
func (w *feedHubImpl) Stop() {
	if w.source.GetReadyState() == defs.ConnectionState.Open {
		w.source.Disconnect()
	}

	w.log.Info("FeedHub: stopped")
}

// RegisterClient is adding a new active client to send messages to
func (w *feedHubImpl) RegisterClient(client *HubFeedClient) {
	w.lock.Lock()
	defer w.lock.Unlock()

	//send all previously received pending messages
	if w.messageCache != nil {
		messages := w.messageCache.GetMessages()
		for _, message := range messages {
			client.Feed <- message
		}
	}

	w.clients[client] = true
	w.log.Info("FeedHub: new feed client registered")
}

// UnregisterClient is removing a registered client and closes its Feed channel
func (w *feedHubImpl) UnregisterClient(client *HubFeedClient) {
	w.lock.Lock()
	defer w.lock.Unlock()

	registered := w.clients[client]
	if registered {
		close(client.Feed)
		delete(w.clients, client)
		w.log.Info("FeedHub: feed client unregistered")
	}
}

func (w *feedHubImpl) GetSourceStatus() api.SourceStatus {
	return api.SourceStatus{
		ReadyState:       w.source.GetReadyState(),
		Location:         w.source.GetLocation(),
		ConnectedClients: uint32(w.getClientsCount()),
	}
}

func (w *feedHubImpl) getClientsCount() int {
	w.lock.RLock()
	defer w.lock.RUnlock()

	return len(w.clients)
}

func (w *feedHubImpl) cleanUp() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.isRunning = false
	for client := range w.clients {
		w.log.Info("FeedHub: closing feed clients")
		close(client.Feed)
		delete(w.clients, client)
	}
}

func (w *feedHubImpl) setRunning() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.isRunning = true
}

func (w *feedHubImpl) startHub(wg *sync.WaitGroup) {
	defer w.cleanUp()

	w.setRunning()
	wg.Done()

	for {
		message, ok := <-w.broadcast
		if !ok {
			w.log.Info("FeedHub: the broadcast channel was closed")
			return
		}

		metrics.IncReceived()
		if w.filter != nil && !w.filter(message) {
			metrics.IncIgnored()
			w.log.Debugf("FeedHub: message ignored: %s", string(message))
			continue
		}

		w.lock.Lock()
		w.log.Debugf("FeedHub: message received: %s", string(message))

		if w.messageCache != nil {
			w.messageCache.AddMessage(message)
		}

		//send the message to all connected clients
		for client := range w.clients {
			client.Feed <- message
		}

		w.lock.Unlock()
	}
}

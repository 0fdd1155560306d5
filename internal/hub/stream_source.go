package hub

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/defs"
)

const maxMessageSize = 1024 * 1024

// Source is where the hub reads the admin actions from
type Source interface {
	Connect() bool
	Disconnect()
	Listen(wg *sync.WaitGroup)
	GetLocation() string
	GetReadyState() string
	GetSendChannel() chan []byte
}

type openFunc func(location string) (io.ReadCloser, error)

// streamSource reads one JSON action per line from a file, a named pipe or stdin.
// Whatever delivers the actions from the admin server writes into that stream.
type streamSource struct {
	location   string
	log        *zap.SugaredLogger
	open       openFunc
	reader     io.ReadCloser
	rxMessages chan []byte
	readyState string
	lock       sync.RWMutex
}

func NewStreamSource(location string, log *zap.SugaredLogger) Source {
	return &streamSource{
		location:   location,
		log:        log,
		open:       openLocation,
		readyState: defs.ConnectionState.Closed,
	}
}

func openLocation(location string) (io.ReadCloser, error) {
	if location == defs.StdinSource {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(location)
}

// Connect opens the stream, returns false if it can't be opened
func (s *streamSource) Connect() bool {
	reader, err := s.open(s.location)
	if err != nil {
		s.log.Errorf("StreamSource: failed to open `%s`, err: %v", s.location, err)
		return false
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.reader = reader
	s.rxMessages = make(chan []byte)
	s.readyState = defs.ConnectionState.Open
	s.log.Infof("StreamSource: reading actions from `%s`", s.location)

	return true
}

// Disconnect closes the stream, Listen returns once the pending read fails
func (s *streamSource) Disconnect() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.readyState = defs.ConnectionState.Closed
	if s.reader != nil {
		if err := s.reader.Close(); err != nil {
			s.log.Debugf("StreamSource: error while closing `%s`, err: %v", s.location, err)
		}
	}
}

// Listen sends every non empty line to the send channel and closes it when the stream ends
func (s *streamSource) Listen(wg *sync.WaitGroup) {
	defer func() {
		s.lock.Lock()
		s.readyState = defs.ConnectionState.Closed
		s.lock.Unlock()

		close(s.rxMessages)
		s.log.Info("StreamSource: stopped listening")
	}()

	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	wg.Done()

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		// the scanner reuses its buffer
		message := make([]byte, len(line))
		copy(message, line)
		s.rxMessages <- message
	}

	if err := scanner.Err(); err != nil && s.GetReadyState() == defs.ConnectionState.Open {
		s.log.Errorf("StreamSource: error while reading `%s`, err: %v", s.location, err)
	}
}

func (s *streamSource) GetLocation() string {
	return s.location
}

func (s *streamSource) GetReadyState() string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.readyState
}

func (s *streamSource) GetSendChannel() chan []byte {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.rxMessages
}

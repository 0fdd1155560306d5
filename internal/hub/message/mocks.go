package message

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type MockCache struct {
	AddMessageCalled    bool
	GetMessagesCalled   bool
	GetMessageCalled    bool
	RemoveMessageCalled bool
	PurgeCalled         bool

	LastMessage []byte
	LastID      string

	NextMessages [][]byte
	NextMessage  []byte
	NextFound    bool
	NextPurged   int
}

func (m *MockCache) AddMessage(message []byte) {
	m.AddMessageCalled = true
	m.LastMessage = message
}

func (m *MockCache) GetMessages() [][]byte {
	m.GetMessagesCalled = true
	return m.NextMessages
}

func (m *MockCache) GetMessage(ID string) ([]byte, bool) {
	m.GetMessageCalled = true
	m.LastID = ID
	return m.NextMessage, m.NextFound
}

func (m *MockCache) RemoveMessage(ID string) {
	m.RemoveMessageCalled = true
	m.LastID = ID
}

func (m *MockCache) Purge() int {
	m.PurgeCalled = true
	return m.NextPurged
}

type KVStoreMock struct {
	GetCalled  bool
	SetCalled  bool
	ScanCalled bool
	DelCalled  bool

	NextStringCmd *redis.StringCmd
	NextStatusCmd *redis.StatusCmd
	NextScanCmd   *redis.ScanCmd

	LastKey        string
	LastValue      interface{}
	LastExpiration time.Duration
	LastCursor     uint64
	LastMatch      string
	LastCount      int64
}

func (m *KVStoreMock) Get(ctx context.Context, key string) *redis.StringCmd {
	m.GetCalled = true
	m.LastKey = key
	return m.NextStringCmd
}

func (m *KVStoreMock) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.SetCalled = true
	m.LastKey = key
	m.LastValue = value
	m.LastExpiration = expiration
	return m.NextStatusCmd
}

func (m *KVStoreMock) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	m.ScanCalled = true
	m.LastCursor = cursor
	m.LastMatch = match
	m.LastCount = count
	return m.NextScanCmd
}

func (m *KVStoreMock) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.DelCalled = true
	m.LastKey = keys[0]
	return nil
}

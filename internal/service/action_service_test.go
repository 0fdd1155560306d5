package service

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/qredo/admin-agent/internal/action"
	"github.com/qredo/admin-agent/internal/defs"
	"github.com/qredo/admin-agent/internal/hub/message"
	"github.com/test-go/testify/assert"
)

func pendingMessage(id string, expiration int64) []byte {
	return []byte(fmt.Sprintf(`{"id":"%s","expiration":%d,"resource":"client-a"}`, id, expiration))
}

func TestActionService_Handle_not_found(t *testing.T) {
	//Arrange
	syncronizerMock := &action.MockActionSyncronizer{}
	executorMock := &action.MockExecutor{}
	cacheMock := &message.MockCache{}
	sut := NewActionService(syncronizerMock, testLog, true, cacheMock, executorMock)

	//Act
	err := sut.Handle("missing")

	//Assert
	apiErr, ok := err.(*defs.APIError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Code())
	assert.Equal(t, "missing", cacheMock.LastID)
	assert.False(t, syncronizerMock.ShouldHandleActionCalled)
	assert.False(t, executorMock.ExecuteCalled)
}

func TestActionService_Handle_expired_action_is_removed(t *testing.T) {
	//Arrange
	syncronizerMock := &action.MockActionSyncronizer{}
	executorMock := &action.MockExecutor{}
	cacheMock := &message.MockCache{
		NextFound:   true,
		NextMessage: pendingMessage("old", time.Now().Unix()-10),
	}
	sut := NewActionService(syncronizerMock, testLog, true, cacheMock, executorMock)

	//Act
	err := sut.Handle("old")

	//Assert
	apiErr, ok := err.(*defs.APIError)
	assert.True(t, ok)
	code, detail := apiErr.APIError()
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "action expired", detail)
	assert.True(t, cacheMock.RemoveMessageCalled)
	assert.False(t, executorMock.ExecuteCalled)
}

func TestActionService_Handle_invalid_cached_message(t *testing.T) {
	//Arrange
	executorMock := &action.MockExecutor{}
	cacheMock := &message.MockCache{
		NextFound:   true,
		NextMessage: []byte(`{"id":"x","action":"REBOOT"}`),
	}
	sut := NewActionService(nil, testLog, false, cacheMock, executorMock)

	//Act
	err := sut.Handle("x")

	//Assert
	apiErr, ok := err.(*defs.APIError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Code())
	assert.True(t, cacheMock.RemoveMessageCalled)
	assert.False(t, executorMock.ExecuteCalled)
}

func TestActionService_Handle_already_handled_is_a_conflict(t *testing.T) {
	//Arrange
	syncronizerMock := &action.MockActionSyncronizer{
		NextShouldHandle: false,
	}
	executorMock := &action.MockExecutor{}
	cacheMock := &message.MockCache{
		NextFound:   true,
		NextMessage: pendingMessage("some test action id", time.Now().Unix()+100),
	}
	sut := NewActionService(syncronizerMock, testLog, true, cacheMock, executorMock)

	//Act
	err := sut.Handle("some test action id")

	//Assert
	apiErr, ok := err.(*defs.APIError)
	assert.True(t, ok)
	code, detail := apiErr.APIError()
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "action already handled or in progress", detail)
	assert.True(t, syncronizerMock.ShouldHandleActionCalled)
	assert.Equal(t, "some test action id", syncronizerMock.LastActionId)
	assert.False(t, syncronizerMock.AcquireLockCalled)
	assert.False(t, executorMock.ExecuteCalled)
	assert.False(t, cacheMock.RemoveMessageCalled)
}

func TestActionService_Handle_fails_to_acquire_lock(t *testing.T) {
	//Arrange
	syncronizerMock := &action.MockActionSyncronizer{
		NextShouldHandle: true,
		NextLockError:    errors.New("some lock error"),
	}
	executorMock := &action.MockExecutor{}
	cacheMock := &message.MockCache{
		NextFound:   true,
		NextMessage: pendingMessage("some test action id", time.Now().Unix()+100),
	}
	sut := NewActionService(syncronizerMock, testLog, true, cacheMock, executorMock)

	//Act
	err := sut.Handle("some test action id")

	//Assert
	assert.NotNil(t, err)
	assert.Equal(t, "some lock error", err.Error())
	assert.True(t, syncronizerMock.AcquireLockCalled)
	assert.False(t, syncronizerMock.ReleaseCalled)
	assert.False(t, executorMock.ExecuteCalled)
	assert.False(t, cacheMock.RemoveMessageCalled)
}

func TestActionService_Handle_executor_fails_keeps_action(t *testing.T) {
	//Arrange
	syncronizerMock := &action.MockActionSyncronizer{
		NextShouldHandle: true,
	}
	executorMock := &action.MockExecutor{
		NextError: errors.New("hook exited with 1"),
	}
	cacheMock := &message.MockCache{
		NextFound:   true,
		NextMessage: pendingMessage("some test action id", time.Now().Unix()+100),
	}
	sut := NewActionService(syncronizerMock, testLog, true, cacheMock, executorMock)

	//Act
	err := sut.Handle("some test action id")

	//Assert
	apiErr, ok := err.(*defs.APIError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Code())
	assert.Equal(t, "failed to execute the action: hook exited with 1", apiErr.Error())
	assert.True(t, syncronizerMock.ReleaseCalled)
	assert.Equal(t, 1, executorMock.Counter)
	assert.False(t, cacheMock.RemoveMessageCalled)
}

func TestActionService_Handle_executes(t *testing.T) {
	//Arrange
	syncronizerMock := &action.MockActionSyncronizer{
		NextShouldHandle: true,
		NextReleaseError: errors.New("some unlock error"),
	}
	executorMock := &action.MockExecutor{}
	cacheMock := &message.MockCache{
		NextFound:   true,
		NextMessage: pendingMessage("some test action id", time.Now().Unix()+100),
	}
	sut := NewActionService(syncronizerMock, testLog, true, cacheMock, executorMock)

	//Act
	err := sut.Handle("some test action id")

	//Assert
	assert.Nil(t, err)
	assert.True(t, syncronizerMock.AcquireLockCalled)
	assert.True(t, syncronizerMock.ReleaseCalled)
	assert.True(t, executorMock.ExecuteCalled)
	assert.Equal(t, "some test action id", executorMock.LastAction.Base().ID)
	assert.True(t, cacheMock.RemoveMessageCalled)
	assert.Equal(t, "some test action id", cacheMock.LastID)
}

func TestActionService_Handle_no_load_balancing_skips_syncronizer(t *testing.T) {
	//Arrange
	syncronizerMock := &action.MockActionSyncronizer{}
	executorMock := &action.MockExecutor{}
	cacheMock := &message.MockCache{
		NextFound:   true,
		NextMessage: []byte(fmt.Sprintf(`{"id":"l1","expiration":%d,"resource":"client-a","action":"LOGOUT"}`, time.Now().Unix()+100)),
	}
	sut := NewActionService(syncronizerMock, testLog, false, cacheMock, executorMock)

	//Act
	err := sut.Handle("l1")

	//Assert
	assert.Nil(t, err)
	assert.False(t, syncronizerMock.ShouldHandleActionCalled)
	assert.False(t, syncronizerMock.AcquireLockCalled)
	assert.Equal(t, defs.KindLogout, executorMock.LastAction.Kind())
	assert.True(t, cacheMock.RemoveMessageCalled)
}

func TestActionService_Dismiss_not_found(t *testing.T) {
	//Arrange
	cacheMock := &message.MockCache{}
	sut := NewActionService(nil, testLog, false, cacheMock, nil)

	//Act
	err := sut.Dismiss("missing")

	//Assert
	apiErr, ok := err.(*defs.APIError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Code())
	assert.False(t, cacheMock.RemoveMessageCalled)
}

func TestActionService_Dismiss_removes_action(t *testing.T) {
	//Arrange
	executorMock := &action.MockExecutor{}
	cacheMock := &message.MockCache{
		NextFound:   true,
		NextMessage: pendingMessage("some id", time.Now().Unix()+100),
	}
	sut := NewActionService(nil, testLog, false, cacheMock, executorMock)

	//Act
	err := sut.Dismiss("some id")

	//Assert
	assert.Nil(t, err)
	assert.True(t, cacheMock.RemoveMessageCalled)
	assert.Equal(t, "some id", cacheMock.LastID)
	assert.False(t, executorMock.ExecuteCalled)
}

func TestActionService_Pending_sorted_by_expiration(t *testing.T) {
	//Arrange
	now := time.Now().Unix()
	cacheMock := &message.MockCache{
		NextMessages: [][]byte{
			pendingMessage("late", now+300),
			[]byte("invalid"),
			[]byte(fmt.Sprintf(`{"id":"soon","expiration":%d,"resource":"client-a","action":"PUSH_NOT_BEFORE","notBefore":5}`, now+60)),
		},
	}
	sut := NewActionService(nil, testLog, false, cacheMock, nil)

	//Act
	res := sut.Pending()

	//Assert
	assert.Equal(t, 2, len(res))
	assert.Equal(t, "soon", res[0].ID)
	assert.Equal(t, defs.KindPushNotBefore, res[0].Kind)
	assert.Equal(t, "client-a", res[0].Resource)
	assert.Equal(t, now+60, res[0].Expiration)
	assert.True(t, res[0].ExpiresIn > 50 && res[0].ExpiresIn <= 60)
	assert.Equal(t, "late", res[1].ID)
	assert.Equal(t, defs.KindGeneric, res[1].Kind)
}

func TestActionService_Pending_empty(t *testing.T) {
	//Arrange
	sut := NewActionService(nil, testLog, false, &message.MockCache{}, nil)

	//Act
	res := sut.Pending()

	//Assert
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

package defs

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const (
	KindGeneric          string = ""
	KindLogout           string = "LOGOUT"
	KindPushNotBefore    string = "PUSH_NOT_BEFORE"
	KindTestAvailability string = "TEST_AVAILABILITY"
)

var timeNow = time.Now

// Action is implemented by AdminAction and every typed action embedding it
type Action interface {
	Base() *AdminAction
	Kind() string
}

// AdminAction is posted to a managed client by the admin server.
// None of the fields are validated, their format is owned by the issuer.
type AdminAction struct {
	ID string `json:"id"`

	// Time in seconds since epoch
	Expiration int64 `json:"expiration"`

	Resource string `json:"resource"`
}

func NewAdminAction(id string, expiration int64, resource string) *AdminAction {
	return &AdminAction{
		ID:         id,
		Expiration: expiration,
		Resource:   resource,
	}
}

// IsExpired reads the clock on every call. An action is still valid during its expiration second.
func (a *AdminAction) IsExpired() bool {
	return timeNow().Unix() > a.Expiration
}

// ExpiresIn returns the remaining lifetime, negative once expired
func (a *AdminAction) ExpiresIn() time.Duration {
	return time.Duration(a.Expiration-timeNow().Unix()) * time.Second
}

func (a *AdminAction) Base() *AdminAction {
	return a
}

func (a *AdminAction) Kind() string {
	return KindGeneric
}

type LogoutAction struct {
	AdminAction
	Action    string   `json:"action"`
	Adapters  []string `json:"adapters,omitempty"`
	NotBefore int64    `json:"notBefore"`
}

func NewLogoutAction(id string, expiration int64, resource string, notBefore int64) *LogoutAction {
	return &LogoutAction{
		AdminAction: *NewAdminAction(id, expiration, resource),
		Action:      KindLogout,
		NotBefore:   notBefore,
	}
}

func (a *LogoutAction) Kind() string {
	return KindLogout
}

type PushNotBeforeAction struct {
	AdminAction
	Action    string `json:"action"`
	NotBefore int64  `json:"notBefore"`
}

func NewPushNotBeforeAction(id string, expiration int64, resource string, notBefore int64) *PushNotBeforeAction {
	return &PushNotBeforeAction{
		AdminAction: *NewAdminAction(id, expiration, resource),
		Action:      KindPushNotBefore,
		NotBefore:   notBefore,
	}
}

func (a *PushNotBeforeAction) Kind() string {
	return KindPushNotBefore
}

type TestAvailabilityAction struct {
	AdminAction
	Action string `json:"action"`
}

func NewTestAvailabilityAction(id string, expiration int64, resource string) *TestAvailabilityAction {
	return &TestAvailabilityAction{
		AdminAction: *NewAdminAction(id, expiration, resource),
		Action:      KindTestAvailability,
	}
}

func (a *TestAvailabilityAction) Kind() string {
	return KindTestAvailability
}

type actionKind struct {
	Action string `json:"action"`
}

// ParseAction decodes the message into the action type named by its `action` field.
// A message without the field is a plain AdminAction.
func ParseAction(data []byte) (Action, error) {
	kind := actionKind{}
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, errors.Wrap(err, "decode action")
	}

	var action Action
	switch kind.Action {
	case KindGeneric:
		action = &AdminAction{}
	case KindLogout:
		action = &LogoutAction{}
	case KindPushNotBefore:
		action = &PushNotBeforeAction{}
	case KindTestAvailability:
		action = &TestAvailabilityAction{}
	default:
		return nil, errors.Errorf("unknown action kind `%s`", kind.Action)
	}

	if err := json.Unmarshal(data, action); err != nil {
		return nil, errors.Wrap(err, "decode action")
	}

	return action, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/qredo/admin-agent/internal/defs"
)

// issueAction builds the JSON of a new action expiring ttl seconds from now
func issueAction(kind, id string, ttl int64, resource string, notBefore int64, adapters []string) ([]byte, error) {
	if id == "" {
		id = uuid.NewString()
	}
	expiration := time.Now().Unix() + ttl

	var action defs.Action
	switch strings.ToUpper(kind) {
	case defs.KindGeneric:
		action = defs.NewAdminAction(id, expiration, resource)
	case defs.KindLogout:
		logout := defs.NewLogoutAction(id, expiration, resource, notBefore)
		logout.Adapters = adapters
		action = logout
	case defs.KindPushNotBefore:
		action = defs.NewPushNotBeforeAction(id, expiration, resource, notBefore)
	case defs.KindTestAvailability:
		action = defs.NewTestAvailabilityAction(id, expiration, resource)
	default:
		return nil, errors.Errorf("unknown action kind `%s`", kind)
	}

	return json.Marshal(action)
}

// describeAction renders the fields of the action and whether it is still valid
func describeAction(data []byte) (string, error) {
	action, err := defs.ParseAction(data)
	if err != nil {
		return "", err
	}

	base := action.Base()
	kind := action.Kind()
	if kind == defs.KindGeneric {
		kind = "generic"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "id:         %s\n", base.ID)
	fmt.Fprintf(&b, "kind:       %s\n", kind)
	fmt.Fprintf(&b, "resource:   %s\n", base.Resource)
	fmt.Fprintf(&b, "expiration: %d (%s)\n", base.Expiration, time.Unix(base.Expiration, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "expired:    %t\n", base.IsExpired())
	if !base.IsExpired() {
		fmt.Fprintf(&b, "expires in: %s\n", base.ExpiresIn())
	}

	return b.String(), nil
}

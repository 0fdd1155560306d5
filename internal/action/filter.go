package action

import (
	"github.com/qredo/admin-agent/internal/defs"
)

// TargetsResource returns a message filter accepting only parsable actions addressed to the resource
func TargetsResource(resource string) func(message []byte) bool {
	return func(message []byte) bool {
		action, err := defs.ParseAction(message)
		if err != nil {
			return false
		}

		return action.Base().Resource == resource
	}
}

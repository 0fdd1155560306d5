package api

type ActionResponse struct {
	ActionID string `json:"actionID"`
	Status   string `json:"status"`
}

// PendingAction is a received action waiting to be handled
type PendingAction struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Expiration int64  `json:"expiration"`
	Resource   string `json:"resource"`
	ExpiresIn  int64  `json:"expiresInSec"`
}

type PendingActionsResponse struct {
	Actions []PendingAction `json:"actions"`
}

type SourceStatus struct {
	ReadyState       string `json:"readyState"`
	Location         string `json:"location"`
	ConnectedClients uint32 `json:"connectedClients"`
}

type HealthCheckStatusResponse struct {
	SourceStatus   SourceStatus `json:"source"`
	PendingActions int          `json:"pendingActions"`
	AutoHandle     bool         `json:"autoHandle"`
}

type Version struct {
	BuildVersion string `json:"buildVersion"`
	BuildType    string `json:"buildType"`
	BuildDate    string `json:"buildDate"`
}

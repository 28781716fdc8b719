package domain

import "time"

// MonitorDefinition is one entry of a sync request.
type MonitorDefinition struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Schedule    string `json:"schedule"`
	GracePeriod int    `json:"gracePeriod"`
}

// SyncRequest is the body of POST /api/sync. Monitors is a list so several
// monitors can be registered in one call; the client sends one at a time.
type SyncRequest struct {
	Source   string              `json:"source"`
	Monitors []MonitorDefinition `json:"monitors"`
}

type SyncResponse struct {
	Synced int `json:"synced"`
}

// Monitor is the server-side record of a registered job.
type Monitor struct {
	MonitorDefinition
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EventKind string

const (
	EventPing     EventKind = "ping"
	EventStart    EventKind = "start"
	EventComplete EventKind = "complete"
	EventFail     EventKind = "fail"
)

// Event is one signal received for a monitor.
type Event struct {
	MonitorKey string    `json:"monitor_key"`
	Kind       EventKind `json:"kind"`
	Method     string    `json:"method,omitempty"`
	Schedule   string    `json:"schedule,omitempty"`
	Message    string    `json:"message,omitempty"`
	At         time.Time `json:"at"`
}

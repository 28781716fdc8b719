package heartbeat

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey means no API key is configured; the client is disabled.
	ErrMissingAPIKey = errors.New("heartbeat: api key not configured")
	// ErrTransport wraps DNS, connection and timeout failures.
	ErrTransport = errors.New("heartbeat: transport failure")
	// ErrServer is matched by every *StatusError.
	ErrServer = errors.New("heartbeat: server rejected request")
	// ErrMonitorNotFound is reported when a ping answers 404.
	ErrMonitorNotFound = errors.New("heartbeat: monitor not found")
)

// StatusError is a non-2xx answer to a request whose status matters.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("heartbeat: %s answered %d", e.Op, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrServer
}

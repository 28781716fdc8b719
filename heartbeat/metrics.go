package heartbeat

import "time"

// Metrics receives one observation per outbound request and one per
// Monitor run. statusCode is 0 when the request never got an answer.
type Metrics interface {
	ObserveRequest(call string, statusCode int, elapsed time.Duration)
	ObserveOutcome(outcome Outcome)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRequest(string, int, time.Duration) {}
func (nopMetrics) ObserveOutcome(Outcome)                    {}

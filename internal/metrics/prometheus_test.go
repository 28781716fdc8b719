package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/cronbeat/heartbeat"
)

func TestPrometheus_CountsRequestsAndOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg, "")
	require.NoError(t, err)
	p.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	p.ObserveRequest(heartbeat.CallPing, 404, 20*time.Millisecond)
	p.ObserveRequest(heartbeat.CallSync, 200, 30*time.Millisecond)
	p.ObserveRequest(heartbeat.CallPing, 200, 10*time.Millisecond)
	p.ObserveRequest(heartbeat.CallPing, 0, 5*time.Second)
	p.ObserveOutcome(heartbeat.OutcomeRegistered)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.requests.WithLabelValues("ping", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.requests.WithLabelValues("ping", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.requests.WithLabelValues("sync", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.outcomes.WithLabelValues("registered")))
	assert.Equal(t, 1_700_000_000.0, testutil.ToFloat64(p.lastRun))
	assert.Equal(t, 2, testutil.CollectAndCount(p.latency))
}

func TestPrometheus_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg, "job")
	require.NoError(t, err)
	_, err = NewPrometheus(reg, "job")
	assert.Error(t, err)
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg, "cronbeat")
	require.NoError(t, err)
	p.ObserveOutcome(heartbeat.OutcomeAlive)

	path := filepath.Join(t.TempDir(), "cronbeat.prom")
	require.NoError(t, WriteTextfile(path, reg))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `cronbeat_outcomes_total{outcome="alive"} 1`)
}

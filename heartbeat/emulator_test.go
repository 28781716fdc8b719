package heartbeat

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/cronbeat/heartbeat/source"
	"github.com/hamed0406/cronbeat/internal/domain"
	"github.com/hamed0406/cronbeat/internal/httpapi"
	apimw "github.com/hamed0406/cronbeat/internal/httpapi/middleware"
	"github.com/hamed0406/cronbeat/internal/repo/memory"
)

func startEmulator(t *testing.T, keys ...string) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	api := httpapi.NewServer(zap.NewNop(), store, store)
	ts := httptest.NewServer(api.Router(apimw.Keys(keys), 0, 0))
	t.Cleanup(ts.Close)
	return ts, store
}

func TestEmulator_SelfHealingRoundTrip(t *testing.T) {
	ts, store := startEmulator(t, "live-key")
	ctx := context.Background()
	c := New(Config{APIKey: "live-key", BaseURL: ts.URL},
		WithLogger(zap.NewNop()), WithDetector(source.Static("systemd")))

	assert.Equal(t, OutcomeRegistered, c.monitor(ctx, "nightly_db_vacuum", callOptions{schedule: "30 4 * * *"}))
	assert.Equal(t, OutcomeAlive, c.monitor(ctx, "nightly_db_vacuum", callOptions{schedule: "30 4 * * *"}))

	mon, err := store.Get(ctx, "nightly_db_vacuum")
	require.NoError(t, err)
	require.NotNil(t, mon)
	assert.Equal(t, "Nightly Db Vacuum", mon.Name)
	assert.Equal(t, "systemd", mon.Source)
	assert.Equal(t, 60, mon.GracePeriod)

	evs, err := store.Events(ctx, "nightly_db_vacuum")
	require.NoError(t, err)
	assert.Len(t, evs, 2)
}

func TestEmulator_PathAuth(t *testing.T) {
	ts, store := startEmulator(t, "path-key")
	ctx := context.Background()
	c := New(Config{APIKey: "path-key", BaseURL: ts.URL, AuthScheme: AuthPath, Method: "POST"},
		WithLogger(zap.NewNop()))

	assert.Equal(t, OutcomeRegistered, c.monitor(ctx, "reports/weekly", callOptions{schedule: "@weekly"}))

	evs, err := store.Events(ctx, "reports/weekly")
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "POST", evs[0].Method)
}

func TestEmulator_WrongKeyIsRejected(t *testing.T) {
	ts, _ := startEmulator(t, "right")
	c := New(Config{APIKey: "wrong", BaseURL: ts.URL}, WithLogger(zap.NewNop()))

	assert.Equal(t, OutcomeRejected, c.monitor(context.Background(), "job", callOptions{schedule: "@daily"}))
}

func TestEmulator_WrapRecordsLifecycle(t *testing.T) {
	ts, store := startEmulator(t)
	ctx := context.Background()
	c := New(Config{APIKey: "any", BaseURL: ts.URL}, WithLogger(zap.NewNop()))
	c.Monitor(ctx, "import", WithSchedule("@hourly"))

	want := errors.New("upstream 503")
	got := c.Wrap(ctx, "import", func(context.Context) error { return want }, WithSchedule("@hourly"))
	require.Same(t, want, got)

	evs, err := store.Events(ctx, "import")
	require.NoError(t, err)
	kinds := make([]domain.EventKind, 0, len(evs))
	for _, e := range evs {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []domain.EventKind{domain.EventPing, domain.EventStart, domain.EventFail}, kinds)
	assert.Equal(t, "upstream 503", evs[2].Message)
	assert.Equal(t, "@hourly", evs[1].Schedule)
}

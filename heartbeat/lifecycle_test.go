package heartbeat

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func paths(calls []call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Path)
	}
	return out
}

func TestStart_SendsSchedule(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusOK))
	c := testClient(t, api.srv.URL)

	c.Start(context.Background(), "nightly", WithSchedule("0 2 * * *"))

	calls := api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/ping/nightly/start", calls[0].Path)
	q, err := url.ParseQuery(calls[0].Query)
	require.NoError(t, err)
	assert.Equal(t, "0 2 * * *", q.Get("schedule"))
	assert.Equal(t, basic("secret"), calls[0].Auth)
}

func TestComplete_NoQuery(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusOK))
	c := testClient(t, api.srv.URL)

	c.Complete(context.Background(), "nightly")

	calls := api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/ping/nightly/complete", calls[0].Path)
	assert.Empty(t, calls[0].Query)
}

func TestFail_SendsMessage(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusOK))
	c := testClient(t, api.srv.URL)

	c.Fail(context.Background(), "nightly", "disk full & more")
	c.Fail(context.Background(), "nightly", "")

	calls := api.Calls()
	require.Len(t, calls, 2)
	q, err := url.ParseQuery(calls[0].Query)
	require.NoError(t, err)
	assert.Equal(t, "disk full & more", q.Get("message"))
	assert.Empty(t, calls[1].Query)
}

func TestSignals_NoSelfHealing(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusNotFound))
	c := testClient(t, api.srv.URL)

	c.Start(context.Background(), "unknown", WithSchedule("@daily"))

	assert.Len(t, api.Calls(), 1)
}

func TestSignals_DisabledMakesNoCalls(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusOK))
	c := New(Config{BaseURL: api.srv.URL}, WithLogger(zap.NewNop()))

	c.Start(context.Background(), "job")
	c.Complete(context.Background(), "job")
	c.Fail(context.Background(), "job", "x")

	assert.Empty(t, api.Calls())
}

func TestWrap_Success(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusOK))
	c := testClient(t, api.srv.URL)

	ran := false
	err := c.Wrap(context.Background(), "job", func(context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []string{"/ping/job/start", "/ping/job/complete"}, paths(api.Calls()))
}

func TestWrap_ErrorIsReturnedUnchanged(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusOK))
	c := testClient(t, api.srv.URL)

	boom := errors.New("export failed: connection reset")
	err := c.Wrap(context.Background(), "job", func(context.Context) error { return boom })

	assert.Same(t, boom, err)
	calls := api.Calls()
	assert.Equal(t, []string{"/ping/job/start", "/ping/job/fail"}, paths(calls))
	q, _ := url.ParseQuery(calls[1].Query)
	assert.Equal(t, boom.Error(), q.Get("message"))
}

func TestWrap_ErrorSurvivesMonitoringOutage(t *testing.T) {
	c := testClient(t, "http://127.0.0.1:1")

	boom := errors.New("boom")
	err := c.Wrap(context.Background(), "job", func(context.Context) error { return boom })

	assert.Same(t, boom, err)
}

func TestWrap_FailSentAfterContextCancelled(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusOK))
	c := testClient(t, api.srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := c.Wrap(ctx, "job", func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	calls := api.Calls()
	assert.Equal(t, []string{"/ping/job/start", "/ping/job/fail"}, paths(calls))
	q, _ := url.ParseQuery(calls[1].Query)
	assert.Equal(t, context.Canceled.Error(), q.Get("message"))
}

func TestWrap_CompleteSentAfterCancel(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusOK))
	c := testClient(t, api.srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := WrapValue(ctx, c, "job", func(context.Context) (int, error) {
		cancel()
		return 1, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"/ping/job/start", "/ping/job/complete"}, paths(api.Calls()))
}

func TestWrap_PanicIsReportedAndRethrown(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusOK))
	c := testClient(t, api.srv.URL)

	assert.PanicsWithValue(t, "index out of range", func() {
		_ = c.Wrap(context.Background(), "job", func(context.Context) error {
			panic("index out of range")
		})
	})

	calls := api.Calls()
	assert.Equal(t, []string{"/ping/job/start", "/ping/job/fail"}, paths(calls))
	q, _ := url.ParseQuery(calls[1].Query)
	assert.Equal(t, "index out of range", q.Get("message"))
}

func TestWrapValue_ReturnsResult(t *testing.T) {
	api := newFakeAPI(t, always(http.StatusOK))
	c := testClient(t, api.srv.URL)

	n, err := WrapValue(context.Background(), c, "rows", func(context.Context) (int, error) {
		return 42, nil
	}, WithSchedule("@hourly"))

	require.NoError(t, err)
	assert.Equal(t, 42, n)
	calls := api.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Query, "schedule=")
}

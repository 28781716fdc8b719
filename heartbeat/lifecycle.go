package heartbeat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Start signals that a run began. The monitor must already exist.
func (c *Client) Start(ctx context.Context, key string, opts ...MonitorOption) {
	defer c.absorb(CallStart, key)
	o := collect(opts)
	q := url.Values{}
	if o.schedule != "" {
		q.Set("schedule", o.schedule)
	}
	c.signal(ctx, key, CallStart, q)
}

// Complete signals that a run finished successfully.
func (c *Client) Complete(ctx context.Context, key string) {
	defer c.absorb(CallComplete, key)
	c.signal(ctx, key, CallComplete, nil)
}

// Fail signals that a run failed. An empty message is omitted.
func (c *Client) Fail(ctx context.Context, key, message string) {
	defer c.absorb(CallFail, key)
	q := url.Values{}
	if message != "" {
		q.Set("message", message)
	}
	c.signal(ctx, key, CallFail, q)
}

func (c *Client) signal(ctx context.Context, key, call string, q url.Values) {
	if !c.cfg.Enabled() {
		c.logger.Warn("heartbeat_disabled", zap.String("monitor", key), zap.String("signal", call))
		return
	}
	res, err := c.do(ctx, call, http.MethodPost, c.lifecycleURL(key, call, q), nil, true)
	if err != nil {
		c.logger.Warn("signal_failed", zap.String("monitor", key), zap.String("signal", call), zap.Error(err))
		return
	}
	if !res.ok() {
		c.logger.Warn("signal_rejected",
			zap.String("monitor", key),
			zap.String("signal", call),
			zap.Error(&StatusError{Op: call, StatusCode: res.StatusCode}),
		)
		return
	}
	c.logger.Debug("signal_ok", zap.String("monitor", key), zap.String("signal", call))
}

// Wrap runs fn between Start and Complete, or Start and Fail when fn returns
// an error. The returned error is exactly fn's. If fn panics, Fail is sent
// with the panic value and the panic continues.
func (c *Client) Wrap(ctx context.Context, key string, fn func(context.Context) error, opts ...MonitorOption) error {
	_, err := WrapValue(ctx, c, key, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, opts...)
	return err
}

// WrapValue is Wrap for functions that produce a value.
func WrapValue[T any](ctx context.Context, c *Client, key string, fn func(context.Context) (T, error), opts ...MonitorOption) (T, error) {
	c.Start(ctx, key, opts...)

	// fn may fail because ctx was cancelled; the closing signal must still go
	// out, bounded by the client timeout.
	closing := context.WithoutCancel(ctx)

	finished := false
	defer func() {
		if finished {
			return
		}
		if r := recover(); r != nil {
			c.Fail(closing, key, fmt.Sprint(r))
			panic(r)
		}
	}()

	v, err := fn(ctx)
	finished = true
	if err != nil {
		c.Fail(closing, key, err.Error())
		return v, err
	}
	c.Complete(closing, key)
	return v, nil
}

package heartbeat

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Outcome summarises one Monitor run.
type Outcome string

const (
	OutcomeDisabled    Outcome = "disabled"
	OutcomeAlive       Outcome = "alive"
	OutcomeUnreachable Outcome = "unreachable"
	OutcomeRejected    Outcome = "rejected"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeRegistered  Outcome = "registered"
)

type callOptions struct {
	schedule    string
	name        string
	source      string
	gracePeriod int
}

// MonitorOption customises Monitor, Start and Wrap.
type MonitorOption func(*callOptions)

// WithSchedule sets the cron expression. On Monitor it enables
// auto-registration of unknown monitors; on Start it is sent as a query value.
func WithSchedule(expr string) MonitorOption {
	return func(o *callOptions) { o.schedule = expr }
}

// WithName sets the display name used at registration.
func WithName(name string) MonitorOption {
	return func(o *callOptions) { o.name = name }
}

// WithSource overrides source detection at registration.
func WithSource(tag string) MonitorOption {
	return func(o *callOptions) { o.source = tag }
}

// WithGracePeriod sets the grace period in seconds used at registration.
func WithGracePeriod(seconds int) MonitorOption {
	return func(o *callOptions) { o.gracePeriod = seconds }
}

func collect(opts []MonitorOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Monitor pings key. If the server does not know the monitor and a schedule
// was given, the monitor is registered and pinged once more.
func (c *Client) Monitor(ctx context.Context, key string, opts ...MonitorOption) {
	defer c.absorb("monitor", key)
	c.monitor(ctx, key, collect(opts))
}

func (c *Client) monitor(ctx context.Context, key string, o callOptions) Outcome {
	out := c.runMonitor(ctx, key, o)
	c.metrics.ObserveOutcome(out)
	return out
}

func (c *Client) runMonitor(ctx context.Context, key string, o callOptions) Outcome {
	if !c.cfg.Enabled() {
		c.logger.Warn("heartbeat_disabled", zap.String("monitor", key), zap.Error(ErrMissingAPIKey))
		return OutcomeDisabled
	}

	res, err := c.ping(ctx, key)
	if err != nil {
		c.logger.Warn("ping_failed", zap.String("monitor", key), zap.Error(err))
		return OutcomeUnreachable
	}
	if res.StatusCode != http.StatusNotFound {
		return c.classify(key, res, OutcomeAlive)
	}
	if o.schedule == "" {
		c.logger.Info("monitor_not_found",
			zap.String("monitor", key),
			zap.Error(ErrMonitorNotFound),
		)
		return OutcomeNotFound
	}

	reg := registration{
		key:         key,
		schedule:    o.schedule,
		source:      o.source,
		name:        o.name,
		gracePeriod: o.gracePeriod,
	}
	if reg.source == "" {
		reg.source = c.detectSource()
	}
	if err := c.register(ctx, reg); err != nil {
		c.logger.Warn("register_failed", zap.String("monitor", key), zap.Error(err))
	} else {
		c.logger.Info("monitor_registered",
			zap.String("monitor", key),
			zap.String("schedule", o.schedule),
			zap.String("source", reg.source),
		)
	}

	res, err = c.ping(ctx, key)
	if err != nil {
		c.logger.Warn("ping_failed", zap.String("monitor", key), zap.Bool("after_register", true), zap.Error(err))
		return OutcomeUnreachable
	}
	if res.StatusCode == http.StatusNotFound {
		c.logger.Warn("monitor_not_found_after_register", zap.String("monitor", key))
		return OutcomeNotFound
	}
	return c.classify(key, res, OutcomeRegistered)
}

func (c *Client) classify(key string, res *PingResult, success Outcome) Outcome {
	if res.ok() {
		c.logger.Debug("ping_ok", zap.String("monitor", key), zap.Int("status", res.StatusCode))
		return success
	}
	c.logger.Warn("ping_rejected",
		zap.String("monitor", key),
		zap.Error(&StatusError{Op: CallPing, StatusCode: res.StatusCode}),
	)
	return OutcomeRejected
}

// Package heartbeat reports cron job executions to a monitoring API.
//
// Every exported call is fire-and-forget: network failures, server errors
// and a missing API key are logged and never returned to the caller. The one
// exception is Wrap, which returns the wrapped function's own error.
//
//	hb := heartbeat.New(heartbeat.FromEnv(), heartbeat.WithLogger(logger))
//	hb.Monitor(ctx, "nightly-report", heartbeat.WithSchedule("0 2 * * *"))
package heartbeat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/cronbeat/heartbeat/source"
)

// Version is sent in the User-Agent header.
const Version = "1.2.0"

const maxBodyBytes = 4 << 10

// Client is safe for concurrent use; it holds no per-call state.
type Client struct {
	cfg      Config
	http     *http.Client
	logger   *zap.Logger
	detector source.Detector
	metrics  Metrics
}

// ClientOption customises a Client built by New.
type ClientOption func(*Client)

// WithLogger sets the logger. The default is zap.L().
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the transport. Its Timeout is clamped to the
// configured cap.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			cp := *h
			c.http = &cp
		}
	}
}

// WithDetector replaces the default source detection chain.
func WithDetector(d source.Detector) ClientOption {
	return func(c *Client) {
		if d != nil {
			c.detector = d
		}
	}
}

// WithMetrics sets the metrics sink. The default discards observations.
func WithMetrics(m Metrics) ClientOption {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// New never fails. Invalid settings are logged and replaced by defaults.
func New(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		cfg:     cfg.withDefaults(),
		http:    &http.Client{},
		logger:  zap.L(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.detector == nil {
		if cfg.Source != "" {
			c.detector = source.Static(cfg.Source)
		} else {
			c.detector = source.Default()
		}
	}

	if err := cfg.Validate(); err != nil {
		c.logger.Warn("heartbeat_config_invalid", zap.Error(err))
		if !validMethod(c.cfg.Method) {
			c.cfg.Method = DefaultMethod
		}
		if c.cfg.AuthScheme != AuthPath {
			c.cfg.AuthScheme = AuthBasic
		}
	}
	if c.http.Timeout <= 0 || c.http.Timeout > c.cfg.Timeout {
		c.http.Timeout = c.cfg.Timeout
	}
	return c
}

// Config returns the effective configuration after defaults.
func (c *Client) Config() Config { return c.cfg }

// PingResult is the raw answer to a request. Body is informational only.
type PingResult struct {
	StatusCode int
	Body       string
}

func (r *PingResult) ok() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// do issues exactly one request. A nil result always comes with an error
// wrapping ErrTransport.
func (c *Client) do(ctx context.Context, call, method, target string, body []byte, basicAuth bool) (*PingResult, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s request: %v", ErrTransport, call, err)
	}
	req.Header.Set("User-Agent", "cronbeat-go/"+Version)
	if basicAuth {
		req.SetBasicAuth(c.cfg.APIKey, "")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(call, 0, elapsed)
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, call, err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(call, resp.StatusCode, elapsed)
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	return &PingResult{StatusCode: resp.StatusCode, Body: string(b)}, nil
}

// absorb is deferred by every exported entry point.
func (c *Client) absorb(op, key string) {
	if r := recover(); r != nil {
		c.logger.Error("heartbeat_panic_recovered",
			zap.String("op", op),
			zap.String("monitor", key),
			zap.Any("panic", r),
		)
	}
}

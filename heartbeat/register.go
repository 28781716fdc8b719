package heartbeat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hamed0406/cronbeat/heartbeat/source"
	"github.com/hamed0406/cronbeat/internal/domain"
	"github.com/hamed0406/cronbeat/internal/humanize"
)

type registration struct {
	key         string
	schedule    string
	source      string
	name        string
	gracePeriod int
}

func (c *Client) syncRequest(r registration) domain.SyncRequest {
	if r.source == "" {
		r.source = c.detectSource()
	}
	if r.name == "" {
		r.name = humanize.Humanize(r.key)
	}
	if r.gracePeriod <= 0 {
		r.gracePeriod = c.cfg.GracePeriod
	}
	return domain.SyncRequest{
		Source: r.source,
		Monitors: []domain.MonitorDefinition{{
			Key:         r.key,
			Name:        r.name,
			Schedule:    r.schedule,
			GracePeriod: r.gracePeriod,
		}},
	}
}

// register creates or updates the monitor server-side. It does not retry.
func (c *Client) register(ctx context.Context, r registration) error {
	body, err := json.Marshal(c.syncRequest(r))
	if err != nil {
		return fmt.Errorf("encode sync request: %w", err)
	}
	res, err := c.do(ctx, CallSync, http.MethodPost, c.cfg.BaseURL+"/api/sync", body, true)
	if err != nil {
		return err
	}
	if !res.ok() {
		return &StatusError{Op: CallSync, StatusCode: res.StatusCode}
	}
	return nil
}

func (c *Client) detectSource() (tag string) {
	defer func() {
		if r := recover(); r != nil {
			tag = source.Manual
		}
	}()
	tag = c.detector.Detect()
	if tag == "" {
		tag = source.Manual
	}
	return tag
}

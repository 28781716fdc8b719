package heartbeat

import (
	"context"
	"net/url"
)

// Request call names, also used as metric labels.
const (
	CallPing     = "ping"
	CallSync     = "sync"
	CallStart    = "start"
	CallComplete = "complete"
	CallFail     = "fail"
)

func (c *Client) pingURL(key string) string {
	u := c.cfg.BaseURL + "/ping/" + url.PathEscape(key)
	if c.cfg.AuthScheme == AuthPath {
		u += "/" + url.PathEscape(c.cfg.APIKey)
	}
	return u
}

// ping sends the plain liveness signal.
func (c *Client) ping(ctx context.Context, key string) (*PingResult, error) {
	return c.do(ctx, CallPing, c.cfg.Method, c.pingURL(key), nil, c.cfg.AuthScheme != AuthPath)
}

func (c *Client) lifecycleURL(key, signal string, query url.Values) string {
	u := c.cfg.BaseURL + "/ping/" + url.PathEscape(key) + "/" + signal
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

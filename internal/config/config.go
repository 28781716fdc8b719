// Package config holds the settings of the emulator binary (cmd/api): log
// location, listen address, accepted keys and rate limit. Client and CLI
// settings live in heartbeat.Config and the CLI flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

type Config struct {
	Addr    string   // emulator bind address, e.g. "127.0.0.1:8080"
	LogDir  string   // logs directory
	APIKeys []string // keys the emulator accepts; empty accepts all
	RPM     int      // emulator rate limit per caller, 0 disables
	Burst   int

	SlackWebhook string // fail signals are forwarded here when set
}

func FromEnv() Config {
	// Bind address
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	// Logs
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	return Config{
		Addr:    addr,
		LogDir:  logDir,
		APIKeys: splitList(os.Getenv("EMULATOR_API_KEYS")),
		RPM:     atoiDefault(os.Getenv("EMULATOR_RPM"), 0),
		Burst:   atoiDefault(os.Getenv("EMULATOR_BURST"), 30),

		SlackWebhook: strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
	}
}

func (c Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierr.Append(err, fmt.Errorf("API_ADDR is empty"))
	}
	if c.RPM < 0 {
		err = multierr.Append(err, fmt.Errorf("EMULATOR_RPM %d is negative", c.RPM))
	}
	if c.RPM > 0 && c.Burst < 1 {
		err = multierr.Append(err, fmt.Errorf("EMULATOR_BURST must be >= 1 when rate limiting"))
	}
	return err
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/cronbeat/heartbeat"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	var (
		cfg heartbeat.Config
		err error
	)
	if len(os.Args) > 1 {
		cfg, err = heartbeat.LoadFile(os.Args[1])
		if err != nil {
			fail(err.Error())
		}
		ok("config file " + os.Args[1])
	} else {
		cfg = heartbeat.FromEnv()
	}

	if !cfg.Enabled() {
		warn("MONITOR_API_KEY is empty; every heartbeat call will be skipped.")
	} else if strings.ContainsAny(cfg.APIKey, " \t") {
		warn("MONITOR_API_KEY contains whitespace.")
	} else {
		ok("MONITOR_API_KEY present")
	}

	if err := cfg.Validate(); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(os.Stderr, "✖", e)
		}
		os.Exit(1)
	}

	ok("MONITOR_BASE_URL=" + cfg.BaseURL)
	ok("MONITOR_METHOD=" + cfg.Method)
	ok("MONITOR_AUTH_SCHEME=" + string(cfg.AuthScheme))
	ok("MONITOR_TIMEOUT=" + cfg.Timeout.String())
	if cfg.Source == "" {
		ok("MONITOR_SOURCE unset; source will be detected")
	} else {
		ok("MONITOR_SOURCE=" + cfg.Source)
	}

	ok("preflight passed")
}

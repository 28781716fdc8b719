// Command api runs the in-memory monitoring service emulator for local
// development against the heartbeat client.
package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/hamed0406/cronbeat/internal/config"
	"github.com/hamed0406/cronbeat/internal/httpapi"
	apimw "github.com/hamed0406/cronbeat/internal/httpapi/middleware"
	"github.com/hamed0406/cronbeat/internal/logging"
	"github.com/hamed0406/cronbeat/internal/notify"
	"github.com/hamed0406/cronbeat/internal/repo/memory"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, "emulator", true)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store := memory.New()
	api := httpapi.NewServer(logger, store, store)
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		api.Notifier = slack
	}

	if len(cfg.APIKeys) == 0 {
		logger.Warn("api_keys_empty_accepting_all")
	}
	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.Int("rpm", cfg.RPM),
		zap.Bool("slack", api.Notifier != nil),
	)
	if err := http.ListenAndServe(cfg.Addr, api.Router(apimw.Keys(cfg.APIKeys), cfg.RPM, cfg.Burst)); err != nil {
		log.Fatal(err)
	}
}

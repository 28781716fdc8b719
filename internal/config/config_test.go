package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestFromEnv_ParsesAndDefaults(t *testing.T) {
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("EMULATOR_API_KEYS", "key_a, key_b,,")
	t.Setenv("EMULATOR_RPM", "120")
	t.Setenv("EMULATOR_BURST", "10")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.test/x")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "./_testlogs", cfg.LogDir)
	assert.Equal(t, []string{"key_a", "key_b"}, cfg.APIKeys)
	assert.Equal(t, 120, cfg.RPM)
	assert.Equal(t, 10, cfg.Burst)
	assert.Equal(t, "https://hooks.slack.test/x", cfg.SlackWebhook)
	assert.NoError(t, cfg.Validate())

	// ensure defaults apply if missing env
	for _, k := range []string{"API_ADDR", "LOG_DIR", "EMULATOR_API_KEYS", "EMULATOR_RPM", "EMULATOR_BURST", "SLACK_WEBHOOK_URL"} {
		os.Unsetenv(k)
	}
	cfg = FromEnv()
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Empty(t, cfg.APIKeys)
	assert.Equal(t, 0, cfg.RPM)
}

func TestValidate(t *testing.T) {
	err := Config{RPM: -1}.Validate()
	assert.Len(t, multierr.Errors(err), 2)

	err = Config{Addr: ":1", RPM: 10, Burst: 0}.Validate()
	assert.Len(t, multierr.Errors(err), 1)
}

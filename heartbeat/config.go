package heartbeat

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL     = "https://api.cronbeat.io"
	DefaultMethod      = "GET"
	DefaultGracePeriod = 60

	// MaxTimeout caps every request so monitoring never meaningfully delays
	// the job itself.
	MaxTimeout = 5 * time.Second
)

// AuthScheme selects how the API key travels on the plain ping.
type AuthScheme string

const (
	// AuthBasic sends "Authorization: Basic base64(apiKey+":")".
	AuthBasic AuthScheme = "basic"
	// AuthPath embeds the key as a path segment: /ping/{key}/{apiKey}.
	// Lifecycle and sync requests still carry the Basic header.
	AuthPath AuthScheme = "path"
)

// Config is the explicit client configuration. Build it once at bootstrap
// (FromEnv, LoadFile or a literal) and hand it to New.
type Config struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Method      string        `yaml:"method"`
	AuthScheme  AuthScheme    `yaml:"auth_scheme"`
	Timeout     time.Duration `yaml:"timeout"`
	GracePeriod int           `yaml:"grace_period"`
	Source      string        `yaml:"source"` // empty means detect
}

// FromEnv reads the MONITOR_* variables, applying defaults for anything unset.
func FromEnv() Config {
	cfg := Config{
		APIKey:      strings.TrimSpace(os.Getenv("MONITOR_API_KEY")),
		BaseURL:     getEnv("MONITOR_BASE_URL", DefaultBaseURL),
		Method:      getEnv("MONITOR_METHOD", DefaultMethod),
		AuthScheme:  AuthScheme(getEnv("MONITOR_AUTH_SCHEME", string(AuthBasic))),
		Timeout:     getEnvDuration("MONITOR_TIMEOUT", MaxTimeout),
		GracePeriod: getEnvInt("MONITOR_GRACE_PERIOD", DefaultGracePeriod),
		Source:      strings.TrimSpace(os.Getenv("MONITOR_SOURCE")),
	}
	return cfg.withDefaults()
}

// LoadFile reads a YAML config file. ${VAR} references in the file are
// expanded, and any non-empty MONITOR_* variable overrides the file value.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	env := FromEnv()
	overlay(&cfg.APIKey, "MONITOR_API_KEY", env.APIKey)
	overlay(&cfg.BaseURL, "MONITOR_BASE_URL", env.BaseURL)
	overlay(&cfg.Method, "MONITOR_METHOD", env.Method)
	overlay(&cfg.Source, "MONITOR_SOURCE", env.Source)
	if v, ok := os.LookupEnv("MONITOR_AUTH_SCHEME"); ok && v != "" {
		cfg.AuthScheme = env.AuthScheme
	}
	if v, ok := os.LookupEnv("MONITOR_TIMEOUT"); ok && v != "" {
		cfg.Timeout = env.Timeout
	}
	if v, ok := os.LookupEnv("MONITOR_GRACE_PERIOD"); ok && v != "" {
		cfg.GracePeriod = env.GracePeriod
	}
	return cfg.withDefaults(), nil
}

func overlay(dst *string, key, val string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = val
	}
}

// Validate reports every problem at once. A missing API key is not an error:
// it puts the client in disabled mode.
func (c Config) Validate() error {
	var err error
	if u, perr := url.Parse(c.BaseURL); perr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("base_url %q is not an http(s) URL", c.BaseURL))
	}
	if !validMethod(c.Method) {
		err = multierr.Append(err, fmt.Errorf("method %q is not one of GET, POST, HEAD, PUT", c.Method))
	}
	switch c.AuthScheme {
	case AuthBasic, AuthPath, "":
	default:
		err = multierr.Append(err, fmt.Errorf("auth_scheme %q is not basic or path", c.AuthScheme))
	}
	if c.Timeout < 0 {
		err = multierr.Append(err, fmt.Errorf("timeout %s is negative", c.Timeout))
	}
	if c.GracePeriod < 0 {
		err = multierr.Append(err, fmt.Errorf("grace_period %d is negative", c.GracePeriod))
	}
	return err
}

// Enabled reports whether an API key is present.
func (c Config) Enabled() bool { return c.APIKey != "" }

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = DefaultMethod
	}
	if c.AuthScheme == "" {
		c.AuthScheme = AuthBasic
	}
	if c.Timeout <= 0 || c.Timeout > MaxTimeout {
		c.Timeout = MaxTimeout
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = DefaultGracePeriod
	}
	return c
}

func validMethod(m string) bool {
	switch strings.ToUpper(strings.TrimSpace(m)) {
	case "GET", "POST", "HEAD", "PUT", "":
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

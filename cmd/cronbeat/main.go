// Command cronbeat reports cron job heartbeats from shell scripts and
// crontabs.
//
//	cronbeat [flags] ping|start|complete|fail <key>
//	cronbeat [flags] exec <key> -- <command> [args...]
//
// Monitoring problems never change the exit status: it is 0 for signals
// and the child's own status for exec. Usage errors exit 2.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hamed0406/cronbeat/heartbeat"
	"github.com/hamed0406/cronbeat/internal/logging"
	"github.com/hamed0406/cronbeat/internal/metrics"
)

const (
	exitUsage      = 2
	exitNotStarted = 127
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath  string
	schedule    string
	name        string
	source      string
	grace       int
	message     string
	logDir      string
	textfile    string
	showVersion bool
}

func parse(args []string, stderr io.Writer) (*options, []string, error) {
	var o options
	fs := flag.NewFlagSet("cronbeat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "YAML config file (MONITOR_* env overrides it)")
	fs.StringVar(&o.schedule, "schedule", "", "cron expression; enables registration of unknown monitors")
	fs.StringVar(&o.name, "name", "", "display name used at registration")
	fs.StringVar(&o.source, "source", "", "source tag used at registration")
	fs.IntVar(&o.grace, "grace", 0, "grace period in seconds used at registration")
	fs.StringVar(&o.message, "message", "", "failure message for fail")
	fs.StringVar(&o.logDir, "log-dir", "", "also write JSON logs to this directory")
	fs.StringVar(&o.textfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return &o, fs.Args(), nil
}

func (o *options) monitorOptions() []heartbeat.MonitorOption {
	var opts []heartbeat.MonitorOption
	if o.schedule != "" {
		opts = append(opts, heartbeat.WithSchedule(o.schedule))
	}
	if o.name != "" {
		opts = append(opts, heartbeat.WithName(o.name))
	}
	if o.source != "" {
		opts = append(opts, heartbeat.WithSource(o.source))
	}
	if o.grace > 0 {
		opts = append(opts, heartbeat.WithGracePeriod(o.grace))
	}
	return opts
}

func (o *options) loadConfig() (heartbeat.Config, error) {
	if o.configPath == "" {
		return heartbeat.FromEnv(), nil
	}
	return heartbeat.LoadFile(o.configPath)
}

// logger never fails: an unusable log dir leaves the console logger in place.
func (o *options) logger(stderr io.Writer) *zap.Logger {
	console := logging.NewConsole(zapcore.AddSync(stderr), zap.WarnLevel)
	if o.logDir == "" {
		return console
	}
	file, err := logging.NewLogger(o.logDir, "cronbeat", false)
	if err != nil {
		console.Warn("log_dir_unusable", zap.String("dir", o.logDir), zap.Error(err))
		return console
	}
	return zap.New(zapcore.NewTee(file.Core(), console.Core()))
}

func usage(stderr io.Writer, format string, a ...any) int {
	fmt.Fprintf(stderr, "cronbeat: "+format+"\n", a...)
	fmt.Fprintln(stderr, "usage: cronbeat [flags] ping|start|complete|fail <key>")
	fmt.Fprintln(stderr, "       cronbeat [flags] exec <key> -- <command> [args...]")
	return exitUsage
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, rest, err := parse(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitUsage
	}
	if o.showVersion {
		fmt.Fprintln(stdout, "cronbeat", heartbeat.Version)
		return 0
	}
	if len(rest) < 2 {
		return usage(stderr, "missing command or monitor key")
	}
	cmd, key, extra := rest[0], rest[1], rest[2:]
	switch cmd {
	case "ping", "start", "complete", "fail":
	case "exec":
		if len(extra) > 0 && extra[0] == "--" {
			extra = extra[1:]
		}
		if len(extra) == 0 {
			return usage(stderr, "exec needs a command after --")
		}
	default:
		return usage(stderr, "unknown command %q", cmd)
	}

	logger := o.logger(stderr)
	defer logger.Sync()

	// A broken config file must not keep the job from running.
	cfg, err := o.loadConfig()
	if err != nil {
		logger.Warn("config_unusable_using_env", zap.String("path", o.configPath), zap.Error(err))
		cfg = heartbeat.FromEnv()
	}

	reg := prometheus.NewRegistry()
	prom, err := metrics.NewPrometheus(reg, "")
	if err != nil {
		logger.Warn("metrics_init_error", zap.Error(err))
	}
	clientOpts := []heartbeat.ClientOption{heartbeat.WithLogger(logger)}
	if prom != nil {
		clientOpts = append(clientOpts, heartbeat.WithMetrics(prom))
	}
	client := heartbeat.New(cfg, clientOpts...)

	code := 0
	switch cmd {
	case "ping":
		client.Monitor(ctx, key, o.monitorOptions()...)
	case "start":
		client.Start(ctx, key, o.monitorOptions()...)
	case "complete":
		client.Complete(ctx, key)
	case "fail":
		client.Fail(ctx, key, o.message)
	case "exec":
		code = execChild(ctx, client, key, extra, o.monitorOptions(), stdout, stderr)
	}

	if o.textfile != "" {
		if err := metrics.WriteTextfile(o.textfile, reg); err != nil {
			logger.Warn("metrics_textfile_error", zap.String("path", o.textfile), zap.Error(err))
		}
	}
	return code
}

// execChild runs argv between start and complete/fail signals and returns
// the child's exit status.
func execChild(ctx context.Context, client *heartbeat.Client, key string, argv []string, opts []heartbeat.MonitorOption, stdout, stderr io.Writer) int {
	err := client.Wrap(ctx, key, func(ctx context.Context) error {
		c := exec.CommandContext(ctx, argv[0], argv[1:]...)
		c.Stdin = os.Stdin
		c.Stdout = stdout
		c.Stderr = stderr
		return c.Run()
	}, opts...)
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		return 1
	}
	fmt.Fprintf(stderr, "cronbeat: %v\n", err)
	return exitNotStarted
}

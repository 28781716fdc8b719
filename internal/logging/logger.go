package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger writes JSON lines to <logDir>/<name>.log with rotation. With
// console set, Warn and above are also written to stderr so a cron mail or
// journal picks them up.
func NewLogger(logDir, name string, console bool) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	if name == "" {
		name = "cronbeat"
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, name+".log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, zap.InfoLevel)

	if console {
		core = zapcore.NewTee(core, consoleCore(zapcore.Lock(os.Stderr), zap.WarnLevel))
	}
	return zap.New(core), nil
}

// NewConsole logs human-readable lines at level and above to w.
func NewConsole(w zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	return zap.New(consoleCore(w, level))
}

func consoleCore(w zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	return zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), w, level)
}

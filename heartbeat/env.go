package heartbeat

import "context"

// The package-level helpers build a fresh Client from the MONITOR_*
// environment on every call, so a rotated key is picked up without a
// restart. They log through zap.L().

func Monitor(ctx context.Context, key string, opts ...MonitorOption) {
	New(FromEnv()).Monitor(ctx, key, opts...)
}

func Start(ctx context.Context, key string, opts ...MonitorOption) {
	New(FromEnv()).Start(ctx, key, opts...)
}

func Complete(ctx context.Context, key string) {
	New(FromEnv()).Complete(ctx, key)
}

func Fail(ctx context.Context, key, message string) {
	New(FromEnv()).Fail(ctx, key, message)
}

func Wrap(ctx context.Context, key string, fn func(context.Context) error, opts ...MonitorOption) error {
	return New(FromEnv()).Wrap(ctx, key, fn, opts...)
}

package performance

import (
	"context"

	"codeberg.org/mutker/perfmon/internal/errors"
)

// Measure runs fn between m.Enter and m.Exit. The exit step runs on every
// path: fn's error is recorded on the monitor and returned unchanged, and a
// panic is recorded as an ErrPanic error before it continues unwinding.
func Measure(m Monitor, fn func() error) (err error) {
	m.Enter()

	defer func() {
		if r := recover(); r != nil {
			m.Exit(errors.New().WithData(ErrPanic, r))
			panic(r)
		}
		m.Exit(err)
	}()

	return fn()
}

type monitorKey struct{}

// WithMonitor returns a copy of ctx carrying m.
func WithMonitor(ctx context.Context, m Monitor) context.Context {
	return context.WithValue(ctx, monitorKey{}, m)
}

// FromContext returns the monitor carried by ctx, or a DummyMonitor.
func FromContext(ctx context.Context) Monitor {
	if m, ok := ctx.Value(monitorKey{}).(Monitor); ok && m != nil {
		return m
	}

	return NewDummy("")
}

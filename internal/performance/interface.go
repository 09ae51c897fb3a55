// Package performance measures wall-clock time and resident memory of code
// regions and flushes the accumulated figures as perfdata records.
//
// A Monitor is entered and exited around the region it measures, any number
// of times; durations and memory deltas accumulate until the next flush.
// Monitors spawn named children that share their configuration but keep
// their own accumulators. Flushing a monitor collects itself and its direct
// children, resets them, and writes the records to a sqlite store or, when no
// destination is configured, to standard output.
//
// Monitors are not safe for concurrent use. Give every goroutine its own
// child instead.
package performance

import (
	"context"

	"codeberg.org/mutker/perfmon/internal/perfdata"
)

// Monitor is the scoped-measurement capability shared by the measuring and
// the disabled implementation.
type Monitor interface {
	Operation() string

	// Enter starts a measurement cycle and returns the monitor itself.
	Enter() Monitor

	// Exit ends the cycle started by the matching Enter. err is the error the
	// measured region finished with, if any; it is kept for inspection only.
	Exit(err error)

	// Child returns a new monitor for operation that inherits this monitor's
	// configuration, overridden by opts.
	Child(operation string, opts ...Option) Monitor

	// Records collects this monitor and its direct children into records and
	// resets their accumulators.
	Records() []perfdata.Record

	// Flush collects records and writes them to the configured sink.
	Flush(ctx context.Context) error
}

// ExitHook runs at the end of every Exit of a PerformanceMonitor.
type ExitHook interface {
	OnExit(m *PerformanceMonitor)
}

// ExitHookFunc adapts a function to the ExitHook interface.
type ExitHookFunc func(m *PerformanceMonitor)

func (f ExitHookFunc) OnExit(m *PerformanceMonitor) {
	f(m)
}

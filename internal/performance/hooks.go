package performance

import "context"

type nopExit struct{}

func (nopExit) OnExit(*PerformanceMonitor) {}

// flushOnExit flushes after every exit. Failures are logged and swallowed so
// that exit bookkeeping never surfaces an error of its own.
type flushOnExit struct{}

func (flushOnExit) OnExit(m *PerformanceMonitor) {
	ctx := context.Background()
	if m.cfg.flushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.flushTimeout)
		defer cancel()
	}

	if err := m.Flush(ctx); err != nil {
		m.cfg.logger.Error().
			Err(err).
			Str("operation", m.operation).
			Str("destination", m.cfg.destination).
			Msg("Automatic flush failed")
	}
}

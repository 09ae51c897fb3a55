package performance

import (
	"time"

	"codeberg.org/mutker/perfmon/internal/errors"
	"codeberg.org/mutker/perfmon/internal/logger"
)

type Config struct {
	Enabled       bool
	Destination   string
	AutoFlush     bool
	MeasureMemory bool
	FlushTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		FlushTimeout: defaultFlushTimeout,
	}
}

func (c Config) Validate() error {
	if c.FlushTimeout < 0 {
		return errors.New().WithData(ErrInvalidConfig, struct {
			Field string
			Value time.Duration
		}{
			Field: "flush_timeout",
			Value: c.FlushTimeout,
		})
	}

	return nil
}

// Options translates c into monitor options.
func (c Config) Options() []Option {
	return []Option{
		WithDestination(c.Destination),
		WithAutoFlush(c.AutoFlush),
		WithMeasureMemory(c.MeasureMemory),
		WithFlushTimeout(c.FlushTimeout),
	}
}

// New returns the root monitor for operation described by cfg: a
// PerformanceMonitor when monitoring is enabled and a DummyMonitor otherwise.
func New(operation string, cfg Config, opts ...Option) (Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.Enabled {
		logger.Debug().Str("operation", operation).Msg("Performance monitoring disabled, using dummy monitor")
		return NewDummy(operation), nil
	}

	return NewMonitor(operation, append(cfg.Options(), opts...)...), nil
}

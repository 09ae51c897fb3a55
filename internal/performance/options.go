package performance

import (
	"io"
	"os"
	"time"

	"codeberg.org/mutker/perfmon/internal/logger"
	"codeberg.org/mutker/perfmon/internal/memory"
)

const (
	pidUnset    int32 = 0
	pidDisabled int32 = -1

	defaultFlushTimeout = 30 * time.Second
)

// settings is the configuration a monitor hands down to its children.
type settings struct {
	destination   string
	pid           int32
	autoFlush     bool
	measureMemory bool
	hook          ExitHook
	flushTimeout  time.Duration

	sampler memory.Sampler
	clock   func() time.Time
	output  io.Writer
	logger  logger.Logger
}

func defaultSettings() settings {
	return settings{
		flushTimeout: defaultFlushTimeout,
		sampler:      memory.NewProcessSampler(),
		clock:        time.Now,
		output:       os.Stdout,
		logger:       logger.Default(),
	}
}

// Option customizes a monitor at construction.
type Option func(*settings)

// WithDestination flushes records into the sqlite store at path. An empty
// path writes them to the console output instead.
func WithDestination(path string) Option {
	return func(s *settings) {
		s.destination = path
	}
}

// WithProcessID samples the memory of pid instead of the calling process.
// Zero leaves the pid to be assigned on first Enter.
func WithProcessID(pid int32) Option {
	return func(s *settings) {
		s.pid = pid
	}
}

// WithAutoFlush flushes the monitor at the end of every Exit.
func WithAutoFlush(enabled bool) Option {
	return func(s *settings) {
		s.autoFlush = enabled
	}
}

// WithMeasureMemory samples resident memory on Enter and Exit.
func WithMeasureMemory(enabled bool) Option {
	return func(s *settings) {
		s.measureMemory = enabled
	}
}

// WithExitHook replaces the exit behaviour selected by WithAutoFlush.
func WithExitHook(h ExitHook) Option {
	return func(s *settings) {
		s.hook = h
	}
}

// WithFlushTimeout bounds automatic flushes triggered on exit.
func WithFlushTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.flushTimeout = d
	}
}

// WithSampler sets the process memory sampler.
func WithSampler(sampler memory.Sampler) Option {
	return func(s *settings) {
		s.sampler = sampler
	}
}

// WithOutput sets the writer used when no destination is configured.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		s.output = w
	}
}

func WithLogger(log logger.Logger) Option {
	return func(s *settings) {
		s.logger = log
	}
}

func withClock(clock func() time.Time) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

func (s settings) exitHook() ExitHook {
	switch {
	case s.hook != nil:
		return s.hook
	case s.autoFlush:
		return flushOnExit{}
	default:
		return nopExit{}
	}
}

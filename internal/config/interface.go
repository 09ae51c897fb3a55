package config

import "time"

// Provider gives read access to the loaded configuration.
type Provider interface {
	// IsEnabled returns whether performance monitoring is enabled
	IsEnabled() bool

	// GetDatabase returns the path of the performance store, empty for stdout
	GetDatabase() string

	// IsMemoryMeasured returns whether resident memory is sampled
	IsMemoryMeasured() bool

	// IsAutoFlush returns whether monitors flush on every exit
	IsAutoFlush() bool

	// GetFlushTimeout returns the bound for automatic flushes
	GetFlushTimeout() time.Duration

	// GetLogLevel returns the configured logging level
	GetLogLevel() string
}

// Option defines a configuration option that can be passed to Load
type Option func(*options) error

// options holds internal configuration options
type options struct {
	configPath string
	envPrefix  string
	args       []string
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configPath = path
		return nil
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "PERFMON"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}

// WithArgs parses args instead of the process command line
func WithArgs(args []string) Option {
	return func(o *options) error {
		o.args = args
		return nil
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

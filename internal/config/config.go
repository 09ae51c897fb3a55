package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/perfmon/internal/errors"
	"codeberg.org/mutker/perfmon/internal/performance"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel     = string(LogLevelInfo)
	DefaultFlushTimeout = 30 * time.Second

	defaultEnvPrefix = "PERFMON"
	configPathEnv    = "PERFMON_CONFIG"
	configName       = "perfmon"
	configType       = "toml"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	Database      string        `mapstructure:"database"`
	MeasureMemory bool          `mapstructure:"measure_memory"`
	AutoFlush     bool          `mapstructure:"auto_flush"`
	FlushTimeout  time.Duration `mapstructure:"flush_timeout"`
	LogLevel      string        `mapstructure:"log_level"`

	// Args holds the positional command line arguments left after flags.
	Args []string `mapstructure:"-"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"enabled":        "enabled",
	"database":       "database",
	"measure-memory": "measure_memory",
	"auto-flush":     "auto_flush",
	"flush-timeout":  "flush_timeout",
	"log-level":      "log_level",
}

// Load merges defaults, the config file, PERFMON_* environment variables and
// command line flags, in increasing order of precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: defaultEnvPrefix, args: os.Args[1:]}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	v.SetDefault("enabled", true)
	v.SetDefault("database", "")
	v.SetDefault("measure_memory", false)
	v.SetDefault("auto_flush", false)
	v.SetDefault("flush_timeout", DefaultFlushTimeout)
	v.SetDefault("log_level", DefaultLogLevel)

	flags := newFlagSet()
	if err := flags.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configPath := o.configPath
	if configPath == "" {
		configPath, _ = flags.GetString("config")
	}
	if configPath == "" {
		configPath = os.Getenv(configPathEnv)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType(configType)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath("/etc/perfmon")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.Args = flags.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	flags.String("config", "", "Path to the configuration file")
	flags.Bool("enabled", true, "Enable performance monitoring")
	flags.String("database", "", "Performance store path (records go to stdout when empty)")
	flags.Bool("measure-memory", false, "Sample resident memory around measured regions")
	flags.Bool("auto-flush", false, "Flush monitors on every exit")
	flags.Duration("flush-timeout", DefaultFlushTimeout, "Timeout for automatic flushes")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")

	return flags
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if err := c.Performance().Validate(); err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	return nil
}

// Performance returns the monitor configuration.
func (c *Config) Performance() performance.Config {
	return performance.Config{
		Enabled:       c.Enabled,
		Destination:   c.Database,
		AutoFlush:     c.AutoFlush,
		MeasureMemory: c.MeasureMemory,
		FlushTimeout:  c.FlushTimeout,
	}
}

func (c *Config) IsEnabled() bool                { return c.Enabled }
func (c *Config) GetDatabase() string            { return c.Database }
func (c *Config) IsMemoryMeasured() bool         { return c.MeasureMemory }
func (c *Config) IsAutoFlush() bool              { return c.AutoFlush }
func (c *Config) GetFlushTimeout() time.Duration { return c.FlushTimeout }
func (c *Config) GetLogLevel() string            { return c.LogLevel }

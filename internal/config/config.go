package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	BackendImaging = "imaging"
	BackendMagick  = "magick"
)

type Config struct {
	Server  ServerConfig
	Handler HandlerConfig
	Fetch   FetchConfig
	Filter  FilterConfig
	File    FileConfig
	Cleanup CleanupConfig
	Metrics MetricsConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type HandlerConfig struct {
	Timeout time.Duration
}

type FetchConfig struct {
	Timeout  time.Duration
	MaxBytes int64
}

type FilterConfig struct {
	Backend string
	Width   int
	Height  int
	Quality int
}

type FileConfig struct {
	Dir string
}

type CleanupConfig struct {
	Interval time.Duration
	MaxAge   time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("handler.timeout", "30s")
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.max_bytes", 10*1024*1024)
	v.SetDefault("filter.backend", BackendImaging)
	v.SetDefault("filter.width", 256)
	v.SetDefault("filter.height", 256)
	v.SetDefault("filter.quality", 60)
	v.SetDefault("file.dir", "")
	v.SetDefault("cleanup.interval", "1m")
	v.SetDefault("cleanup.max_age", "10m")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads defaults, an optional config.toml from the given paths (the working directory when none are
// given) and the environment, in increasing order of precedence. The port is read from PORT.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "PORT"); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Handler: HandlerConfig{
			Timeout: v.GetDuration("handler.timeout"),
		},
		Fetch: FetchConfig{
			Timeout:  v.GetDuration("fetch.timeout"),
			MaxBytes: v.GetInt64("fetch.max_bytes"),
		},
		Filter: FilterConfig{
			Backend: strings.ToLower(v.GetString("filter.backend")),
			Width:   v.GetInt("filter.width"),
			Height:  v.GetInt("filter.height"),
			Quality: v.GetInt("filter.quality"),
		},
		File: FileConfig{
			Dir: v.GetString("file.dir"),
		},
		Cleanup: CleanupConfig{
			Interval: v.GetDuration("cleanup.interval"),
			MaxAge:   v.GetDuration("cleanup.max_age"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Pretty: v.GetBool("log.pretty"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Fetch.MaxBytes < 0 {
		return fmt.Errorf("fetch.max_bytes must not be negative")
	}

	switch c.Filter.Backend {
	case BackendImaging, BackendMagick:
	default:
		return fmt.Errorf("unsupported filter backend: %s", c.Filter.Backend)
	}

	if c.Filter.Width < 1 || c.Filter.Height < 1 {
		return fmt.Errorf("invalid filter size: %dx%d", c.Filter.Width, c.Filter.Height)
	}

	if c.Filter.Quality < 1 || c.Filter.Quality > 100 {
		return fmt.Errorf("filter.quality must be between 1 and 100, got %d", c.Filter.Quality)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	return nil
}

// LogLevel maps the configured level name to a zerolog level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	switch c.Log.Level {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

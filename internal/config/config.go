// Package config loads service settings from an optional .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvFileVar names the variable that points at the dotenv file.
const EnvFileVar = "RAINPARIS_ENV_FILE"

const (
	defaultEnvFile  = ".env"
	defaultPort     = "5001"
	defaultBaseURL  = "https://api.tomorrow.io/v4"
	defaultTimezone = "Europe/Paris"
	defaultTimeout  = "10s"
	defaultOTLP     = "localhost:4317"

	envProduction  = "production"
	envDevelopment = "development"
)

// Config holds all service settings.
type Config struct {
	// Tomorrow.io credential. Empty is allowed; weather requests then fail.
	TomorrowAPIKey  string
	TomorrowBaseURL string

	Port     string
	Env      string
	LogLevel zerolog.Level

	UpstreamTimeout time.Duration

	// ForecastTimezone is sent upstream and used to label chart points.
	ForecastTimezone string
	Location         *time.Location

	CORSAllowedOrigins []string

	OTELEnabled    bool
	OTLPEndpoint   string
	MetricsEnabled bool
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == envProduction
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Load reads the dotenv file named by RAINPARIS_ENV_FILE (default .env, a
// missing file is fine), then applies environment overrides and defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	envFile := v.GetString(EnvFileVar)
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if err := readEnvFile(v, envFile); err != nil {
		return nil, err
	}

	v.SetDefault("tomorrow_base_url", defaultBaseURL)
	v.SetDefault("app_port", defaultPort)
	v.SetDefault("forecast_timezone", defaultTimezone)
	v.SetDefault("upstream_timeout", defaultTimeout)
	v.SetDefault("otel_exporter_otlp_endpoint", defaultOTLP)
	v.SetDefault("metrics_enabled", true)

	cfg := &Config{
		TomorrowAPIKey:     strings.TrimSpace(v.GetString("tomorrow_api_key")),
		TomorrowBaseURL:    strings.TrimRight(v.GetString("tomorrow_base_url"), "/"),
		Port:               firstNonEmpty(v.GetString("port"), v.GetString("app_port")),
		Env:                firstNonEmpty(v.GetString("app_env"), v.GetString("flask_env"), envDevelopment),
		ForecastTimezone:   v.GetString("forecast_timezone"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		OTELEnabled:        v.GetBool("otel_enabled"),
		OTLPEndpoint:       v.GetString("otel_exporter_otlp_endpoint"),
		MetricsEnabled:     v.GetBool("metrics_enabled"),
	}

	timeout, err := time.ParseDuration(v.GetString("upstream_timeout"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q", v.GetString("upstream_timeout"))
	}
	cfg.UpstreamTimeout = timeout

	cfg.Location, err = time.LoadLocation(cfg.ForecastTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_TIMEZONE %q: %w", cfg.ForecastTimezone, err)
	}

	cfg.LogLevel, err = parseLevel(v.GetString("log_level"), cfg.IsProduction())
	if err != nil {
		return nil, err
	}

	if cfg.TomorrowBaseURL == "" {
		return nil, errors.New("TOMORROW_BASE_URL must not be empty")
	}

	return cfg, nil
}

func readEnvFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("env")

	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("failed to read env file %s: %w", path, err)
}

func parseLevel(raw string, production bool) (zerolog.Level, error) {
	if raw == "" {
		if production {
			return zerolog.InfoLevel, nil
		}
		return zerolog.DebugLevel, nil
	}

	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
	}
	return level, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Package config loads runtime settings from defaults, an optional JSON or
// YAML file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"sigs.k8s.io/yaml"

	"github.com/joelkehle/metria/internal/logging"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	AI        AIConfig        `json:"ai"`
	Auth      AuthConfig      `json:"auth"`
	Reports   ReportsConfig   `json:"reports"`
	Telemetry TelemetryConfig `json:"telemetry"`
	Logging   logging.Config  `json:"logging"`
}

type ServerConfig struct {
	Addr string `json:"addr"`
}

type DatabaseConfig struct {
	// DSN is a SQLite file path, "memory", or a postgres:// URL.
	DSN  string `json:"dsn"`
	Seed bool   `json:"seed"`
}

type AIConfig struct {
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	APIKey         string `json:"api_key,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type AuthConfig struct {
	SessionTTLHours int `json:"session_ttl_hours"`
}

type ReportsConfig struct {
	ChromePath string `json:"chrome_path,omitempty"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `json:"otlp_endpoint,omitempty"`
	ServiceName  string `json:"service_name"`
}

func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{DSN: "metria.db", Seed: true},
		AI: AIConfig{
			Provider:       ProviderGemini,
			TimeoutSeconds: 30,
		},
		Auth:      AuthConfig{SessionTTLHours: 24 * 7},
		Telemetry: TelemetryConfig{ServiceName: "metria"},
		Logging:   logging.DefaultConfig(),
	}
}

// Load builds the configuration. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("METRIA_ADDR", &c.Server.Addr)
	str("METRIA_DB", &c.Database.DSN)
	str("METRIA_AI_PROVIDER", &c.AI.Provider)
	str("METRIA_AI_MODEL", &c.AI.Model)
	str("METRIA_LOG_LEVEL", &c.Logging.Level)
	str("METRIA_LOG_FORMAT", &c.Logging.Format)
	str("METRIA_CHROME_PATH", &c.Reports.ChromePath)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint)
	if c.AI.APIKey == "" {
		switch c.AI.Provider {
		case ProviderGemini:
			str("GEMINI_API_KEY", &c.AI.APIKey)
		case ProviderAnthropic:
			str("ANTHROPIC_API_KEY", &c.AI.APIKey)
		}
	}
	if v := strings.TrimSpace(getenv("METRIA_SEED")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("METRIA_SEED: %w", err)
		}
		c.Database.Seed = b
	}
	if err := num("METRIA_AI_TIMEOUT", &c.AI.TimeoutSeconds); err != nil {
		return err
	}
	return num("METRIA_SESSION_TTL_HOURS", &c.Auth.SessionTTLHours)
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	switch c.AI.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("ai.provider must be one of gemini, anthropic, none; got %q", c.AI.Provider))
	}
	if c.AI.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("ai.timeout_seconds must be positive"))
	}
	if c.Auth.SessionTTLHours <= 0 {
		errs = append(errs, errors.New("auth.session_ttl_hours must be positive"))
	}
	return errors.Join(errs...)
}

func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c AuthConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

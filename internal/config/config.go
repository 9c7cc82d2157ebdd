package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Infrahub backend.
	InfrahubAddress       string
	InfrahubAPIToken      string
	InfrahubDefaultBranch string
	BackendTimeout        time.Duration
	BackendRetries        int

	// Generation-wait polling. Captured into workflow params at submit time.
	PollInterval time.Duration
	PollDeadline time.Duration

	// Catalog database and Temporal.
	DatabaseURL           string
	TemporalAddress       string
	TemporalTLSCert       string
	TemporalTLSKey        string
	TemporalTLSCACert     string
	TemporalTLSServerName string

	// HTTP surfaces.
	ListenAddr  string
	MetricsAddr string

	LogLevel  string
	LogFormat string

	// AuthDisabled skips API key checks on /api/v1. Local development only.
	AuthDisabled bool

	// DCDefaultsPath points at an optional YAML file overriding the built-in
	// catalog defaults (member groups, routing strategies).
	DCDefaultsPath string
}

func Load() (*Config, error) {
	cfg := &Config{
		InfrahubAddress:       getEnv("INFRAHUB_ADDRESS", ""),
		InfrahubAPIToken:      getEnv("INFRAHUB_API_TOKEN", ""),
		InfrahubDefaultBranch: getEnv("INFRAHUB_DEFAULT_BRANCH", "main"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		TemporalAddress:       getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalTLSCert:       getEnv("TEMPORAL_TLS_CERT", ""),
		TemporalTLSKey:        getEnv("TEMPORAL_TLS_KEY", ""),
		TemporalTLSCACert:     getEnv("TEMPORAL_TLS_CA_CERT", ""),
		TemporalTLSServerName: getEnv("TEMPORAL_TLS_SERVER_NAME", ""),
		ListenAddr:            getEnv("LISTEN_ADDR", ":8080"),
		MetricsAddr:           getEnv("METRICS_ADDR", ":9090"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		DCDefaultsPath:        getEnv("DC_DEFAULTS_PATH", ""),
	}

	var err error
	if cfg.PollInterval, err = getEnvDuration("POLL_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.PollDeadline, err = getEnvDuration("POLL_DEADLINE", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BackendTimeout, err = getEnvDuration("BACKEND_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.BackendRetries, err = getEnvInt("BACKEND_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.AuthDisabled, err = getEnvBool("AUTH_DISABLED", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the variables the given binary cannot run without are
// set. binary is "catalog-api" or "catalog-worker".
func (c *Config) Validate(binary string) error {
	var missing []string

	required := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	required("DATABASE_URL", c.DatabaseURL)
	required("TEMPORAL_ADDRESS", c.TemporalAddress)
	required("INFRAHUB_ADDRESS", c.InfrahubAddress)
	required("INFRAHUB_API_TOKEN", c.InfrahubAPIToken)

	if binary == "catalog-api" {
		required("LISTEN_ADDR", c.ListenAddr)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if (c.TemporalTLSCert == "") != (c.TemporalTLSKey == "") {
		return fmt.Errorf("TEMPORAL_TLS_CERT and TEMPORAL_TLS_KEY must both be set, or neither")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

// DefaultSecretKey is only suitable for local development.
const DefaultSecretKey = "dev-secret-key-change-in-production"

const (
	DefaultPort            = 8000
	DefaultHost            = "0.0.0.0"
	DefaultLogDir          = "logs"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the deployment settings. It is built once by Load and passed
// around by value.
type Config struct {
	SecretKey       string
	Debug           bool
	Port            int
	Host            string
	LogDir          string
	LogLevel        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// fileConfig mirrors Config for the optional YAML file. Pointers tell an
// absent key apart from a zero value.
type fileConfig struct {
	SecretKey       *string  `yaml:"secret_key"`
	Debug           *bool    `yaml:"debug"`
	Port            *int     `yaml:"port"`
	Host            *string  `yaml:"host"`
	LogDir          *string  `yaml:"log_dir"`
	LogLevel        *string  `yaml:"log_level"`
	CORSOrigins     []string `yaml:"cors_allowed_origins"`
	ShutdownTimeout *string  `yaml:"shutdown_timeout"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds a Config from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func LoadFrom(lookup LookupFunc) (Config, error) {
	cfg := Config{
		SecretKey:       DefaultSecretKey,
		Debug:           true,
		Port:            DefaultPort,
		Host:            DefaultHost,
		LogDir:          DefaultLogDir,
		LogLevel:        DefaultLogLevel,
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UsesDefaultSecret reports whether the development secret is still in use.
func (c Config) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if fc.SecretKey != nil {
		cfg.SecretKey = *fc.SecretKey
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.Host != nil {
		cfg.Host = *fc.Host
	}
	if fc.LogDir != nil {
		cfg.LogDir = *fc.LogDir
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if len(fc.CORSOrigins) > 0 {
		cfg.CORSOrigins = fc.CORSOrigins
	}
	if fc.ShutdownTimeout != nil {
		d, err := time.ParseDuration(*fc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("error parsing shutdown_timeout in %s: %w", path, err)
		}
		cfg.ShutdownTimeout = d
	}

	return nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup("SECRET_KEY"); ok {
		cfg.SecretKey = v
	}

	// DEBUG wins over the legacy FLASK_DEBUG name.
	if v, ok := firstOf(lookup, "DEBUG", "FLASK_DEBUG"); ok {
		cfg.Debug = strings.EqualFold(v, "true")
	}

	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("error parsing PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v, ok := firstOf(lookup, "HOST", "FLASK_HOST"); ok {
		cfg.Host = v
	}

	if v, ok := lookup("LOG_DIR"); ok && v != "" {
		cfg.LogDir = v
	}

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("error parsing SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}

	return nil
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", c.Port)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}

	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin is required")
	}
	for _, origin := range c.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS origin %q must be \"*\" or start with http:// or https://", origin)
		}
	}

	return nil
}

func firstOf(lookup LookupFunc, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

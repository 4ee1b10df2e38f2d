// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/guestbook/internal/store"
	"github.com/listenupapp/guestbook/internal/validation"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Store     StoreConfig
	Server    ServerConfig
	Templates TemplatesConfig
	Search    SearchConfig
	Metrics   MetricsConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
}

// StoreConfig selects and locates the datastore.
type StoreConfig struct {
	Backend string `env:"STORE_BACKEND" validate:"required,oneof=badger sqlite postgres"`
	// DataPath holds the badger directory, the sqlite file and the search index.
	DataPath    string `env:"DATA_PATH" validate:"required"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=Backend postgres"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name          string        `env:"SERVER_NAME" validate:"required"`
	Port          string        `env:"SERVER_PORT" validate:"required,numeric"`
	ReadTimeout   time.Duration `env:"SERVER_READ_TIMEOUT" validate:"gt=0s"`
	WriteTimeout  time.Duration `env:"SERVER_WRITE_TIMEOUT" validate:"gt=0s"`
	IdleTimeout   time.Duration `env:"SERVER_IDLE_TIMEOUT" validate:"gt=0s"`
	AdvertiseMDNS bool          `env:"ADVERTISE_MDNS"`
}

// TemplatesConfig controls where page templates come from.
// An empty Dir means the templates compiled into the binary.
type TemplatesConfig struct {
	Dir    string `env:"TEMPLATES_DIR" validate:"required_if=Reload true"`
	Reload bool   `env:"RELOAD_TEMPLATES"`
}

// SearchConfig holds full-text search configuration.
type SearchConfig struct {
	Enabled bool `env:"SEARCH_ENABLED"`
}

// MetricsConfig holds Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED"`
}

// CORSConfig holds cross-origin configuration. No origins disables CORS.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`
}

// RateLimitConfig limits form posts per client IP.
type RateLimitConfig struct {
	// Rate is requests per second. Zero disables limiting.
	Rate  float64 `env:"POST_RATE_LIMIT" validate:"gte=0"`
	Burst int     `env:"POST_RATE_BURST" validate:"gte=1"`
}

// Enabled reports whether form posts are rate limited.
func (c RateLimitConfig) Enabled() bool {
	return c.Rate > 0
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("guestbook", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Store flags
	dataPath := fs.String("data-path", "", "Directory for the datastore and search index (default: ~/Guestbook/data)")
	storeBackend := fs.String("store", "", "Store backend: "+strings.Join(store.Backends, ", ")+" (default: badger)")
	databaseURL := fs.String("database-url", "", "PostgreSQL connection string")

	// Server flags
	serverName := fs.String("server-name", "", "Name advertised over mDNS")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	advertiseMDNS := fs.String("advertise-mdns", "", "Advertise via mDNS/Zeroconf (default: false)")

	templatesDir := fs.String("templates-dir", "", "Load page templates from this directory instead of the built-in set")
	reloadTemplates := fs.String("reload-templates", "", "Re-parse templates when files in -templates-dir change")

	searchEnabled := fs.String("search-enabled", "", "Enable full-text search (default: true)")
	metricsEnabled := fs.String("metrics-enabled", "", "Expose Prometheus metrics on /metrics (default: true)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated list of allowed CORS origins")
	postRate := fs.String("post-rate", "", "Form posts per second per client, 0 disables (default: 0)")
	postBurst := fs.String("post-burst", "", "Form post burst size (default: 20)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	var p parser

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getConfigValue(*logLevel, "LOG_LEVEL", "info")),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(getConfigValue(*storeBackend, "STORE_BACKEND", store.BackendBadger)),
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
			DatabaseURL: getConfigValue(*databaseURL, "DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Name:          getConfigValue(*serverName, "SERVER_NAME", "Guestbook"),
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			ReadTimeout:   p.duration(*readTimeout, "SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:  p.duration(*writeTimeout, "SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:   p.duration(*idleTimeout, "SERVER_IDLE_TIMEOUT", 60*time.Second),
			AdvertiseMDNS: p.bool(*advertiseMDNS, "ADVERTISE_MDNS", false),
		},
		Templates: TemplatesConfig{
			Dir:    getConfigValue(*templatesDir, "TEMPLATES_DIR", ""),
			Reload: p.bool(*reloadTemplates, "RELOAD_TEMPLATES", false),
		},
		Search: SearchConfig{
			Enabled: p.bool(*searchEnabled, "SEARCH_ENABLED", true),
		},
		Metrics: MetricsConfig{
			Enabled: p.bool(*metricsEnabled, "METRICS_ENABLED", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "")),
		},
		RateLimit: RateLimitConfig{
			Rate:  p.float(*postRate, "POST_RATE_LIMIT", 0),
			Burst: p.int(*postBurst, "POST_RATE_BURST", 20),
		},
	}

	if err := p.err(); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if cfg.Templates.Dir != "" {
		dir, err := expandPath(cfg.Templates.Dir, "")
		if err != nil {
			return nil, fmt.Errorf("invalid templates dir: %w", err)
		}
		cfg.Templates.Dir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	return validation.New().Validate(c)
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data path to ~/Guestbook/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Guestbook", "data")

	expanded, err := expandPath(c.Store.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Store.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// parser converts typed config values and collects every conversion error,
// so a bad config reports all offending keys at once.
type parser struct {
	errs []error
}

func (p *parser) fail(envKey, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", envKey, value, err))
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}

// bool accepts true/1/yes and false/0/no, case-insensitive.
func (p *parser) bool(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	switch strings.ToLower(strValue) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	p.fail(envKey, strValue, errors.New("expected true or false"))
	return defaultValue
}

func (p *parser) int(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		p.fail(envKey, strValue, err)
		return defaultValue
	}
	return result
}

func (p *parser) float(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		p.fail(envKey, strValue, err)
		return defaultValue
	}
	return result
}

func (p *parser) duration(flagValue, envKey string, defaultValue time.Duration) time.Duration {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := time.ParseDuration(strValue)
	if err != nil {
		p.fail(envKey, strValue, err)
		return defaultValue
	}
	return result
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}

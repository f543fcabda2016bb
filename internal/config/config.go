package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds configuration for the StreamSafe console.
type Config struct {
	Addr          string `yaml:"addr"`            // Listen address (default ":4000")
	LogLevel      string `yaml:"log_level"`       // Log level: debug, info, warn, error
	LogFormat     string `yaml:"log_format"`      // Log format: text, json
	DBPath        string `yaml:"db_path"`         // SQLite session database path (":memory:" for testing)
	BackendURL    string `yaml:"backend_url"`     // Platform REST base address
	BackendWSURL  string `yaml:"backend_ws_url"`  // Platform push channel address (derived from BackendURL when empty)
	SecureCookies bool   `yaml:"secure_cookies"`  // Set Secure on session cookies (HTTPS deployments)
	MaxUploadMB   int64  `yaml:"max_upload_mb"`   // Upload size cap forwarded to the platform
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		Addr:        ":4000",
		LogLevel:    "info",
		LogFormat:   "text",
		DBPath:      "streamsafe.db",
		BackendURL:  "http://localhost:5000",
		MaxUploadMB: 500,
	}
}

// Load builds the configuration: defaults, then an optional YAML file,
// then environment variables (a .env file is honored when present).
func Load(file string) (Config, error) {
	cfg := Default()

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", file, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", file, err)
		}
	}

	// A local .env is a convenience for development; absence is not an error.
	_ = godotenv.Load()
	cfg.applyEnv()

	if cfg.BackendWSURL == "" {
		cfg.BackendWSURL = deriveWSURL(cfg.BackendURL)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Addr = getEnv("STREAMSAFE_ADDR", c.Addr)
	c.LogLevel = getEnv("STREAMSAFE_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("STREAMSAFE_LOG_FORMAT", c.LogFormat)
	c.DBPath = getEnv("STREAMSAFE_DB", c.DBPath)
	c.BackendURL = getEnv("STREAMSAFE_BACKEND_URL", c.BackendURL)
	c.BackendWSURL = getEnv("STREAMSAFE_BACKEND_WS_URL", c.BackendWSURL)

	if v := os.Getenv("STREAMSAFE_SECURE_COOKIES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SecureCookies = b
		}
	}
	if v := os.Getenv("STREAMSAFE_MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxUploadMB = n
		}
	}
}

// deriveWSURL maps the REST base address to the push channel address on
// the same host (http→ws, https→wss).
func deriveWSURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

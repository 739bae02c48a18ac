package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the canonical application configuration, merged from the YAML
// file, environment variables and command-line flags (flags win).
type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		TLS     struct {
			CertFile string `yaml:"cert_file"`
			KeyFile  string `yaml:"key_file"`
		} `yaml:"tls"`
	} `yaml:"server"`
	Storage struct {
		DBPath string `yaml:"db_path"`
		// SeedPath overrides the embedded tune seed dataset.
		SeedPath string `yaml:"seed_path"`
	} `yaml:"storage"`
	Seed struct {
		// Cron re-runs the (idempotent) seed loader on a schedule; empty
		// disables the scheduler.
		Cron string `yaml:"cron"`
	} `yaml:"seed"`
	Security struct {
		CORS struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
		IPWhitelist []string `yaml:"ip_whitelist"`
		APIKeys     []string `yaml:"api_keys"`
	} `yaml:"security"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	host := c.Server.Address
	port := c.Server.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &c, nil
}

// applyEnv overlays TUNEBOOK_* environment variables onto c and reports
// whether any were present.
func applyEnv(c *Config) bool {
	used := false
	if v := os.Getenv("TUNEBOOK_SERVER_ADDRESS"); v != "" {
		used = true
		c.Server.Address = v
	}
	if v := os.Getenv("TUNEBOOK_SERVER_PORT"); v != "" {
		used = true
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("TUNEBOOK_DB_PATH"); v != "" {
		used = true
		c.Storage.DBPath = v
	}
	if v := os.Getenv("TUNEBOOK_SEED_PATH"); v != "" {
		used = true
		c.Storage.SeedPath = v
	}
	if v := os.Getenv("TUNEBOOK_SEED_CRON"); v != "" {
		used = true
		c.Seed.Cron = v
	}
	if v := os.Getenv("TUNEBOOK_LOG_LEVEL"); v != "" {
		used = true
		c.Logging.Level = v
	}
	if v := os.Getenv("TUNEBOOK_API_KEYS"); v != "" {
		used = true
		c.Security.APIKeys = splitList(v)
	}
	return used
}

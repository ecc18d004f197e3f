package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DBDriver      string `yaml:"db_driver"`
	DBDSN         string `yaml:"db_dsn"`
	ServerPort    string `yaml:"server_port"`
	SessionSecret string `yaml:"session_secret"`
	TokenSecret   string `yaml:"token_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	LogLevel      string `yaml:"log_level"`

	AdminUsername string `yaml:"admin_username"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Load собирает конфиг: .env, затем YAML из GIRA_CONFIG (если задан),
// затем переменные окружения поверх.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("GIRA_CONFIG"); path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	overrideString(&cfg.DBDriver, "DB_DRIVER")
	overrideString(&cfg.DBDSN, "DB_DSN")
	overrideString(&cfg.ServerPort, "SERVER_PORT")
	overrideString(&cfg.SessionSecret, "SESSION_SECRET")
	overrideString(&cfg.TokenSecret, "TOKEN_SECRET")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.AdminUsername, "ADMIN_USERNAME")
	overrideString(&cfg.AdminEmail, "ADMIN_EMAIL")
	overrideString(&cfg.AdminPassword, "ADMIN_PASSWORD")

	if v := os.Getenv("TOKEN_TTL_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("TOKEN_TTL_HOURS must be a positive integer, got %q", v)
		}
		cfg.TokenTTLHours = n
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.DBDriver == "" {
		c.DBDriver = DriverPostgres
	}
	if c.ServerPort == "" {
		c.ServerPort = "8080"
	}
	if c.TokenSecret == "" {
		c.TokenSecret = c.SessionSecret
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 24
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.AdminEmail == "" {
		c.AdminEmail = "admin@gira.local"
	}
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN is not set")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	return nil
}

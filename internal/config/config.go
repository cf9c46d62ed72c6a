package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
)

// Config is the single source for the backend address and every client
// setting. Values come from an optional YAML file, then the environment
// (a .env file in the working directory is loaded first).
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MetricsAddress string        `yaml:"metrics_address"`

	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Audit   AuditConfig   `yaml:"audit"`
}

type SessionConfig struct {
	Backend string        `yaml:"backend"`
	File    string        `yaml:"file"`
	ID      string        `yaml:"id"`
	TTL     time.Duration `yaml:"ttl"`
	Prefix  string        `yaml:"prefix"`

	RedisAddress  string `yaml:"redis_address"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AuditConfig enables publishing operator audit events. Publishing is off
// when RabbitMQURL is empty.
type AuditConfig struct {
	RabbitMQURL string `yaml:"rabbitmq_url"`
	QueueName   string `yaml:"queue_name"`
}

func defaults() *Config {
	return &Config{
		APIBaseURL:     "http://127.0.0.1:8000",
		RequestTimeout: 15 * time.Second,
		Session: SessionConfig{
			Backend: SessionBackendFile,
			TTL:     12 * time.Hour,
			Prefix:  "evalctl:session",
		},
		Log: LogConfig{
			Level: "info",
		},
		Audit: AuditConfig{
			QueueName: "evaluation-audit",
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// EVALCTL_CONFIG is consulted; with neither set only the environment and
// defaults apply.
func Load(path string) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	cfg := defaults()

	if path == "" {
		path = os.Getenv("EVALCTL_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.APIBaseURL = getenv("API_BASE_URL", cfg.APIBaseURL)
	cfg.MetricsAddress = getenv("METRICS_ADDRESS", cfg.MetricsAddress)

	cfg.Session.Backend = getenv("SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.File = getenv("SESSION_FILE", cfg.Session.File)
	cfg.Session.ID = getenv("SESSION_ID", cfg.Session.ID)
	cfg.Session.Prefix = getenv("SESSION_PREFIX", cfg.Session.Prefix)
	cfg.Session.RedisAddress = getenv("REDIS_ADDRESS", cfg.Session.RedisAddress)
	cfg.Session.RedisPassword = getenv("REDIS_PASSWORD", cfg.Session.RedisPassword)

	cfg.Log.Level = getenv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getenv("LOG_FILE", cfg.Log.File)

	cfg.Audit.RabbitMQURL = getenv("RABBITMQ_URL", cfg.Audit.RabbitMQURL)
	cfg.Audit.QueueName = getenv("AUDIT_QUEUE_NAME", cfg.Audit.QueueName)

	var err error
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return err
	}
	if cfg.Session.TTL, err = getenvDuration("SESSION_TTL", cfg.Session.TTL); err != nil {
		return err
	}
	if cfg.Session.RedisDB, err = getenvInt("REDIS_DB", cfg.Session.RedisDB); err != nil {
		return err
	}
	return nil
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute URL", c.APIBaseURL)
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")

	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}

	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendFile:
	case SessionBackendRedis:
		if c.Session.RedisAddress == "" {
			return errors.New("REDIS_ADDRESS is required when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q (want memory, file or redis)", c.Session.Backend)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

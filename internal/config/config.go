// Package config loads server and CLI settings from an optional YAML file
// followed by environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gsarma/codetester/internal/code"
	"github.com/gsarma/codetester/internal/logger"
)

const (
	defaultPort              = "8080"
	defaultJudge0URL         = "http://judge0-server:2358"
	defaultWorkerConcurrency = 5
	defaultSessionTTL        = 24 * time.Hour
)

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port string `yaml:"port"`
	// Mode is "api", "worker" or empty for both in one process.
	Mode string `yaml:"mode"`
}

// DatabaseConfig holds Postgres settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// Judge0Config holds the default judge endpoint. Tenants may override it.
type Judge0Config struct {
	URL          string        `yaml:"url"`
	AuthToken    string        `yaml:"authToken"`
	RapidAPIKey  string        `yaml:"rapidAPIKey"`
	RapidAPIHost string        `yaml:"rapidAPIHost"`
	Timeout      time.Duration `yaml:"timeout"`
}

// PollConfig mirrors code.PollConfig in YAML form.
type PollConfig struct {
	SettleDelay     time.Duration `yaml:"settleDelay"`
	PollInterval    time.Duration `yaml:"pollInterval"`
	MaxPollInterval time.Duration `yaml:"maxPollInterval"`
	MaxWait         time.Duration `yaml:"maxWait"`
}

// RedisConfig holds quiz session storage settings. An empty Addr keeps
// sessions in memory.
type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	SessionTTL time.Duration `yaml:"sessionTTL"`
}

// WorkerConfig holds job worker settings.
type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// AppConfig is the full application configuration.
type AppConfig struct {
	Server            ServerConfig   `yaml:"server"`
	Database          DatabaseConfig `yaml:"database"`
	RootEncryptionKey string         `yaml:"rootEncryptionKey"`
	Judge0            Judge0Config   `yaml:"judge0"`
	Poll              PollConfig     `yaml:"poll"`
	Redis             RedisConfig    `yaml:"redis"`
	Worker            WorkerConfig   `yaml:"worker"`
	Logger            logger.Config  `yaml:"logger"`
	LanguagesFile     string         `yaml:"languagesFile"`
	QuizzesFile       string         `yaml:"quizzesFile"`
}

// Load reads path when non-empty, applies defaults and then environment
// overrides. A missing path is an error; an empty path is not.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file failed: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file failed: %w", err)
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// PollSettings converts the YAML poll settings for the runner. Zero fields
// fall back to the runner defaults.
func (c *AppConfig) PollSettings() code.PollConfig {
	return code.PollConfig{
		SettleDelay:     c.Poll.SettleDelay,
		PollInterval:    c.Poll.PollInterval,
		MaxPollInterval: c.Poll.MaxPollInterval,
		MaxWait:         c.Poll.MaxWait,
	}
}

// Judge0Settings returns the process-wide judge settings.
func (c *AppConfig) Judge0Settings() code.Judge0Config {
	return code.Judge0Config{
		URL:          c.Judge0.URL,
		AuthToken:    c.Judge0.AuthToken,
		RapidAPIKey:  c.Judge0.RapidAPIKey,
		RapidAPIHost: c.Judge0.RapidAPIHost,
		Timeout:      c.Judge0.Timeout,
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultPort
	}
	if cfg.Judge0.URL == "" {
		cfg.Judge0.URL = defaultJudge0URL
	}
	if cfg.Worker.Concurrency <= 0 {
		cfg.Worker.Concurrency = defaultWorkerConcurrency
	}
	if cfg.Redis.SessionTTL <= 0 {
		cfg.Redis.SessionTTL = defaultSessionTTL
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
	}
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.RootEncryptionKey, "ROOT_ENCRYPTION_KEY")
	setString(&cfg.Judge0.URL, "JUDGE0_URL")
	setString(&cfg.Judge0.AuthToken, "JUDGE0_AUTH_TOKEN")
	setString(&cfg.Judge0.RapidAPIKey, "RAPIDAPI_KEY")
	setString(&cfg.Judge0.RapidAPIHost, "RAPIDAPI_HOST")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.LanguagesFile, "LANGUAGES_FILE")
	setString(&cfg.QuizzesFile, "QUIZZES_FILE")
	setString(&cfg.Server.Mode, "MODE")
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Logger.Level, "LOG_LEVEL")
	setString(&cfg.Logger.Format, "LOG_FORMAT")

	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.Concurrency = n
		}
	}
	setDuration(&cfg.Poll.SettleDelay, "POLL_SETTLE_DELAY")
	setDuration(&cfg.Poll.MaxWait, "POLL_MAX_WAIT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setDuration ignores values time.ParseDuration rejects.
func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

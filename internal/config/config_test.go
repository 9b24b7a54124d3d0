package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gsarma/codetester/internal/config"
)

const sampleYAML = `
server:
  port: "9090"
judge0:
  url: https://judge0-ce.p.rapidapi.com
  rapidAPIKey: from-file
poll:
  settleDelay: 2s
  maxWait: 45s
redis:
  addr: localhost:6379
worker:
  concurrency: 2
logger:
  level: debug
  format: console
`

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "ROOT_ENCRYPTION_KEY", "JUDGE0_URL", "JUDGE0_AUTH_TOKEN",
		"RAPIDAPI_KEY", "RAPIDAPI_HOST", "REDIS_ADDR", "LANGUAGES_FILE", "QUIZZES_FILE",
		"MODE", "PORT", "LOG_LEVEL", "LOG_FORMAT", "WORKER_CONCURRENCY",
		"POLL_SETTLE_DELAY", "POLL_MAX_WAIT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "codetester.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RAPIDAPI_KEY", "from-env")
	t.Setenv("POLL_MAX_WAIT", "10s")
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Judge0.RapidAPIKey != "from-env" {
		t.Errorf("expected env to override file, got %s", cfg.Judge0.RapidAPIKey)
	}
	if cfg.Poll.SettleDelay != 2*time.Second || cfg.Poll.MaxWait != 10*time.Second {
		t.Errorf("unexpected poll config: %+v", cfg.Poll)
	}
	if cfg.Worker.Concurrency != 2 {
		t.Errorf("expected invalid env to keep file value 2, got %d", cfg.Worker.Concurrency)
	}
	if cfg.Logger.Level != "debug" || cfg.Logger.Format != "console" {
		t.Errorf("unexpected logger config: %+v", cfg.Logger)
	}

	poll := cfg.PollSettings()
	if poll.SettleDelay != 2*time.Second || poll.PollInterval != 0 {
		t.Errorf("unexpected runner poll settings: %+v", poll)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Judge0.URL == "" {
		t.Error("expected a default judge URL")
	}
	if cfg.Worker.Concurrency != 5 {
		t.Errorf("expected default concurrency 5, got %d", cfg.Worker.Concurrency)
	}
	if cfg.Redis.SessionTTL != 24*time.Hour {
		t.Errorf("expected default session TTL 24h, got %s", cfg.Redis.SessionTTL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_SampleConfig(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join("..", "..", "configs", "codetester.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Judge0.Timeout != 10*time.Second || cfg.Poll.MaxPollInterval != 2*time.Second {
		t.Errorf("unexpected durations: %+v %+v", cfg.Judge0, cfg.Poll)
	}
	if cfg.Redis.SessionTTL != 24*time.Hour || cfg.LanguagesFile == "" || cfg.QuizzesFile == "" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

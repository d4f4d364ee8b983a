package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `
app_name: studyhub
run_mode: release
logger:
  level: 5
  format: json
  desensitize: true
data:
  driver: mongodb
  mongodb:
    database: studyhub
    master:
      uri: mongodb://localhost:27017
    slaves:
      - uri: mongodb://replica:27017
      - uri: ""
queue:
  driver: sqlite
  sqlite:
    path: /tmp/offline.db
delivery:
  max_retries: 8
  backoff_max: 1m
deletion:
  batch_size: 250
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.AppName != "studyhub" || !cfg.IsProd() {
		t.Errorf("app = %q mode = %q", cfg.AppName, cfg.RunMode)
	}
	if cfg.Logger.Level != 5 || cfg.Logger.Format != "json" || !cfg.Logger.Desensitize {
		t.Errorf("logger = %+v", cfg.Logger)
	}
	if cfg.Data.Driver != "mongodb" || cfg.Data.MongoDB.Master.URI != "mongodb://localhost:27017" {
		t.Errorf("data = %+v", cfg.Data.MongoDB)
	}
	if len(cfg.Data.MongoDB.Slaves) != 1 || cfg.Data.MongoDB.Slaves[0].Weight != 1 {
		t.Errorf("slaves = %+v", cfg.Data.MongoDB.Slaves)
	}
	if cfg.Queue.Driver != "sqlite" || cfg.Queue.SQLite.Path != "/tmp/offline.db" {
		t.Errorf("queue = %+v", cfg.Queue)
	}
	if cfg.Delivery.MaxRetries != 8 || cfg.Delivery.BackoffMax != time.Minute {
		t.Errorf("delivery = %+v", cfg.Delivery)
	}
	if cfg.Delivery.BackoffBase != time.Second {
		t.Errorf("backoff base default = %v", cfg.Delivery.BackoffBase)
	}
	if cfg.Deletion.BatchSize != 250 {
		t.Errorf("deletion batch size = %d", cfg.Deletion.BatchSize)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "app_name: collab\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Data.Driver != "memory" || cfg.Queue.Driver != "memory" {
		t.Errorf("drivers = %q, %q", cfg.Data.Driver, cfg.Queue.Driver)
	}
	if cfg.Validation.FreshnessWindow != 5*time.Minute {
		t.Errorf("freshness window = %v", cfg.Validation.FreshnessWindow)
	}
	if len(cfg.Validation.MediaPrefixes) != 1 {
		t.Errorf("media prefixes = %v", cfg.Validation.MediaPrefixes)
	}
	if cfg.Delivery.MaxRetries != 5 || cfg.Delivery.BackoffMax != 30*time.Second {
		t.Errorf("delivery = %+v", cfg.Delivery)
	}
	if cfg.Deletion.BatchSize != 500 {
		t.Errorf("deletion batch size = %d", cfg.Deletion.BatchSize)
	}
	if cfg.Delivery.BookkeepingTimeout != 5*time.Second || cfg.Delivery.TypingConcurrency != 8 {
		t.Errorf("delivery = %+v", cfg.Delivery)
	}
	if cfg.Messaging.RabbitMQ.Exchange != "collab.erasure" {
		t.Errorf("exchange = %q", cfg.Messaging.RabbitMQ.Exchange)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("COLLAB_QUEUE_DRIVER", "redis")
	t.Setenv("COLLAB_DELIVERY_MAX_RETRIES", "2")

	cfg, err := LoadConfig(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Queue.Driver != "redis" {
		t.Errorf("queue driver = %q, want redis", cfg.Queue.Driver)
	}
	if cfg.Delivery.MaxRetries != 2 {
		t.Errorf("max retries = %d, want 2", cfg.Delivery.MaxRetries)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() with missing file should return error")
	}
}

func TestInitAndReload(t *testing.T) {
	p := writeConfig(t, sample)
	if _, err := Init(p); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := os.WriteFile(p, []byte("app_name: renamed\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	cfg, err := GetConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AppName != "renamed" {
		t.Errorf("AppName = %q after reload", cfg.AppName)
	}
}

func TestOutOfRangeSettingsFallBack(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
delivery:
  max_retries: 0
  workers: -2
  bookkeeping_timeout: -1s
  breaker:
    failure_threshold: -3
deletion:
  batch_size: 0
observes:
  sentry:
    sample_rate: 4
logger:
  level: 0
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	d := cfg.Delivery
	if d.MaxRetries != 5 || d.Workers != 4 || d.BookkeepingTimeout != 5*time.Second || d.Breaker.FailureThreshold != 5 {
		t.Errorf("delivery = %+v breaker = %+v", d, d.Breaker)
	}
	if cfg.Deletion.BatchSize != 500 {
		t.Errorf("batch size = %d, want default", cfg.Deletion.BatchSize)
	}
	if cfg.Observes.Sentry.SampleRate != 1.0 {
		t.Errorf("sample rate = %v, want default", cfg.Observes.Sentry.SampleRate)
	}
	if cfg.Logger.Level != 0 {
		t.Errorf("logger level = %d, want 0 kept", cfg.Logger.Level)
	}
}

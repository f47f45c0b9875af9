package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != "8081" || cfg.API.Port != "8080" {
		t.Errorf("unexpected ports: %+v %+v", cfg.HTTP, cfg.API)
	}
	if cfg.DB.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %q", cfg.DB.Driver)
	}
	if cfg.Cache.TaskTTL != 60*time.Second || cfg.Cache.ListTTL != 15*time.Second {
		t.Errorf("unexpected cache TTLs: %+v", cfg.Cache)
	}
	if cfg.Kafka.Topic != "task-events" {
		t.Errorf("unexpected topic %q", cfg.Kafka.Topic)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", "")
	t.Setenv("TASKBOARD_DB_DRIVER", "SQLite")
	t.Setenv("TASKBOARD_DB_SQLITE_PATH", "/tmp/tasks.db")
	t.Setenv("TASKBOARD_CACHE_LIST_TTL", "5s")
	t.Setenv("TASKBOARD_API_UPSTREAM_URL", "http://db:8081/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DB.Driver != "sqlite" || cfg.DB.SQLitePath != "/tmp/tasks.db" {
		t.Errorf("unexpected db config: %+v", cfg.DB)
	}
	if cfg.Cache.ListTTL != 5*time.Second {
		t.Errorf("unexpected list TTL: %v", cfg.Cache.ListTTL)
	}
	if cfg.API.UpstreamURL != "http://db:8081" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.API.UpstreamURL)
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("ValidateServer() error = %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard.yaml")
	content := "http:\n  port: \"9000\"\ndb:\n  postgres:\n    dsn: postgres://localhost/tasks\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKBOARD_CONFIG", path)
	t.Setenv("TASKBOARD_HTTP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != "9100" {
		t.Errorf("environment should win over file, got %q", cfg.HTTP.Port)
	}
	if cfg.DB.PostgresDSN != "postgres://localhost/tasks" {
		t.Errorf("unexpected dsn %q", cfg.DB.PostgresDSN)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		db      DBConfig
		wantErr bool
	}{
		{"postgres without dsn", DBConfig{Driver: "postgres"}, true},
		{"postgres with dsn", DBConfig{Driver: "postgres", PostgresDSN: "postgres://x"}, false},
		{"sqlite", DBConfig{Driver: "sqlite", SQLitePath: ":memory:"}, false},
		{"unknown driver", DBConfig{Driver: "mysql"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{HTTP: HTTPConfig{Port: "8081"}, DB: tt.db}
			if err := cfg.ValidateServer(); (err != nil) != tt.wantErr {
				t.Errorf("ValidateServer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

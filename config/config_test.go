package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must be valid: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.AI.Provider != "auto" || cfg.AI.Timeout != 60*time.Second {
		t.Errorf("unexpected AI defaults %+v", cfg.AI)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected memory store, got %q", cfg.Store.Driver)
	}
	if cfg.Tracing.Endpoint != "" {
		t.Error("tracing should be disabled by default")
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoadFromFile_ValidYAML(t *testing.T) {
	content := `
server:
  addr: ":9090"
log:
  level: debug
  format: json
ai:
  provider: openrouter
  timeout: 30s
  openrouter:
    model: anthropic/claude-3.5-sonnet
store:
  driver: sqlite
  sqlite: /var/lib/workflowgen/workflows.db
tracing:
  endpoint: localhost:4318
  sampleRate: 0.5
rateLimit:
  requestsPerMinute: 30
catalogDir: ./templates
`
	fp := filepath.Join(t.TempDir(), "workflowgen.yaml")
	if err := os.WriteFile(fp, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := LoadFromFile(fp)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %q", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("unset keys should keep defaults, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.AI.Provider != "openrouter" || cfg.AI.Timeout != 30*time.Second {
		t.Errorf("unexpected AI config %+v", cfg.AI)
	}
	if cfg.AI.OpenRouter.Model != "anthropic/claude-3.5-sonnet" {
		t.Errorf("unexpected openrouter model %q", cfg.AI.OpenRouter.Model)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLite != "/var/lib/workflowgen/workflows.db" {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Tracing.Endpoint != "localhost:4318" || cfg.Tracing.SampleRate != 0.5 || cfg.Tracing.ServiceName != "workflowgen" {
		t.Errorf("unexpected tracing config %+v", cfg.Tracing)
	}
	if cfg.RateLimit.RequestsPerMinute != 30 || cfg.RateLimit.IdleTTL != 10*time.Minute {
		t.Errorf("unexpected rate limit config %+v", cfg.RateLimit)
	}
	if cfg.CatalogDir != "./templates" {
		t.Errorf("unexpected catalog dir %q", cfg.CatalogDir)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("server: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	_, err := Parse([]byte(`
ai:
  provider: copilot
store:
  driver: postgres
log:
  level: loud
  format: xml
tracing:
  sampleRate: 2
`))
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"ai.provider", "store.postgres.url", "log.level", "log.format", "tracing.sampleRate"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "mongo"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "mongo") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]string{"": "INFO", "debug": "DEBUG", "WARN": "WARN", "error": "ERROR"} {
		lvl, err := ParseLevel(in)
		if err != nil || lvl.String() != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, lvl, err)
		}
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}

	LogConfig{Level: "debug", Format: "json"}.NewLogger(&buf).Debug("shown", "k", "v")
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line: %v (%q)", err, buf.String())
	}
	if line["msg"] != "shown" || line["k"] != "v" {
		t.Errorf("unexpected log line %v", line)
	}
}

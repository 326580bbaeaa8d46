package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GoCodeAlone/workflowgen/ai"
	"github.com/GoCodeAlone/workflowgen/catalog"
	"github.com/GoCodeAlone/workflowgen/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clearProviderKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	clearProviderKeys(t)
	cfg := config.Default()
	cfg.AI.Provider = "local"
	cfg.Metrics.RuntimeMetrics = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	a, err := newApp(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	srv := httptest.NewServer(a.handler)
	t.Cleanup(func() {
		srv.Close()
		a.close(context.Background())
	})
	return srv
}

func TestAutoProvider(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		cfg  config.AIConfig
		want ai.Provider
	}{
		{"no keys", nil, config.AIConfig{}, ai.ProviderLocal},
		{"openai only", map[string]string{"OPENAI_API_KEY": "k"}, config.AIConfig{}, ai.ProviderOpenAI},
		{"openrouter before openai", map[string]string{"OPENAI_API_KEY": "k", "OPENROUTER_API_KEY": "k"}, config.AIConfig{}, ai.ProviderOpenRouter},
		{"anthropic first", map[string]string{"OPENROUTER_API_KEY": "k", "ANTHROPIC_API_KEY": "k"}, config.AIConfig{}, ai.ProviderAnthropic},
		{"config key", nil, config.AIConfig{OpenAI: config.ProviderConfig{APIKey: "k"}}, ai.ProviderOpenAI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearProviderKeys(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := autoProvider(tt.cfg); got != tt.want {
				t.Errorf("autoProvider() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildGenerator(t *testing.T) {
	clearProviderKeys(t)
	cat := catalog.MustDefault()

	gen, err := buildGenerator(config.AIConfig{Provider: "auto"}, cat, quietLogger())
	if err != nil || gen.Provider() != ai.ProviderLocal {
		t.Fatalf("auto without keys should be local, got %v, %v", gen, err)
	}

	gen, err = buildGenerator(config.AIConfig{Provider: "openrouter", OpenRouter: config.ProviderConfig{APIKey: "k"}}, cat, quietLogger())
	if err != nil || gen.Provider() != ai.ProviderOpenRouter {
		t.Fatalf("expected openrouter generator, got %v, %v", gen, err)
	}

	if _, err := buildGenerator(config.AIConfig{Provider: "anthropic"}, cat, quietLogger()); err == nil {
		t.Error("anthropic without a key should fail at startup")
	}
	if _, err := buildGenerator(config.AIConfig{Provider: "copilot"}, cat, quietLogger()); err == nil {
		t.Error("unknown provider should fail")
	}
}

func TestLoadConfig_FlagsOverFile(t *testing.T) {
	origConfig, origAddr, origProvider := *configFile, *addr, *provider
	t.Cleanup(func() {
		*configFile, *addr, *provider = origConfig, origAddr, origProvider
	})

	fp := filepath.Join(t.TempDir(), "workflowgen.yaml")
	if err := os.WriteFile(fp, []byte("server:\n  addr: \":9000\"\nai:\n  provider: openai\n"), 0644); err != nil {
		t.Fatal(err)
	}
	*configFile, *addr, *provider = fp, "", "local"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("file value should apply when no flag is given, got %q", cfg.Server.Addr)
	}
	if cfg.AI.Provider != "local" {
		t.Errorf("flag should override file, got %q", cfg.AI.Provider)
	}

	*provider = "nonsense"
	if _, err := loadConfig(); err == nil {
		t.Error("expected validation error for unknown provider")
	}
}

func TestServer_Routes(t *testing.T) {
	srv := newTestApp(t, testConfig(t))

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz: expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/workflows/generate", "application/json",
		strings.NewReader(`{"prompt":"Back up database to cloud storage daily"}`))
	if err != nil {
		t.Fatal(err)
	}
	var wf map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&wf)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || wf["name"] != "Scheduled Data Backup" {
		t.Fatalf("generate: got %d %v", resp.StatusCode, wf["name"])
	}

	resp, err = http.Get(srv.URL + "/api/workflows")
	if err != nil {
		t.Fatal(err)
	}
	var list []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list) != 1 {
		t.Errorf("expected the generation to be stored, got %d records", len(list))
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	for _, want := range []string{
		`workflowgen_generations_total{provider="local",source="template",status="ok"} 1`,
		`workflowgen_stored_workflows_total{status="ok"} 1`,
		`path="POST /api/workflows/generate"`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestServer_GenerateMiddleware(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.RequestsPerMinute = 1
	srv := newTestApp(t, cfg)

	resp, err := http.Post(srv.URL+"/api/workflows/generate", "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/workflows/generate", "application/json", strings.NewReader(`{"prompt":"Back up database daily"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests || resp.Header.Get("Retry-After") == "" {
		t.Errorf("expected 429 with Retry-After, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/examples")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("read routes are not rate limited, got %d", resp.StatusCode)
	}
}

func TestNewApp_BadCatalogDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogDir = filepath.Join(t.TempDir(), "missing")
	if _, err := newApp(context.Background(), cfg, quietLogger()); err == nil {
		t.Fatal("expected error for missing catalog directory")
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := testConfig(t)
	a, err := newApp(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, a, cfg.Server, quietLogger()) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for range 50 {
		if resp, err = http.Get(url); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

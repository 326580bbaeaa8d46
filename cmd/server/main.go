package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoCodeAlone/workflowgen/ai"
	"github.com/GoCodeAlone/workflowgen/ai/llm"
	"github.com/GoCodeAlone/workflowgen/ai/local"
	"github.com/GoCodeAlone/workflowgen/catalog"
	"github.com/GoCodeAlone/workflowgen/config"
	"github.com/GoCodeAlone/workflowgen/middleware"
	"github.com/GoCodeAlone/workflowgen/observability"
	"github.com/GoCodeAlone/workflowgen/observability/tracing"
	"github.com/GoCodeAlone/workflowgen/store"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

var (
	configFile = flag.String("config", "", "Path to server configuration YAML file")
	addr       = flag.String("addr", "", "HTTP listen address (default :8080)")
	provider   = flag.String("provider", "", "Generator: local, anthropic, openai, openrouter or auto")
	storeDrv   = flag.String("store", "", "Workflow store: memory, sqlite, postgres or redis")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn or error")
	logFormat  = flag.String("log-format", "", "Log format: text or json")
	catalogDir = flag.String("catalog-dir", "", "Directory of template YAML files replacing the built-in catalog")
)

// envFlags maps environment variables to the flags they fill in.
var envFlags = []struct {
	env  string
	flag string
	dst  *string
}{
	{"WORKFLOWGEN_CONFIG", "config", configFile},
	{"WORKFLOWGEN_ADDR", "addr", addr},
	{"WORKFLOWGEN_PROVIDER", "provider", provider},
	{"WORKFLOWGEN_STORE", "store", storeDrv},
	{"WORKFLOWGEN_LOG_LEVEL", "log-level", logLevel},
	{"WORKFLOWGEN_LOG_FORMAT", "log-format", logFormat},
	{"WORKFLOWGEN_CATALOG_DIR", "catalog-dir", catalogDir},
}

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}
	applyEnvOverrides()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

// envOrFlag returns the environment value for key, falling back to the
// flag value.
func envOrFlag(key string, flagVal *string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if flagVal != nil {
		return *flagVal
	}
	return ""
}

// applyEnvOverrides fills flags from WORKFLOWGEN_* variables. Flags given
// explicitly on the command line win.
func applyEnvOverrides() {
	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	for _, ef := range envFlags {
		if explicit[ef.flag] {
			continue
		}
		*ef.dst = envOrFlag(ef.env, ef.dst)
	}
}

// loadConfig reads the config file, if any, and layers the flags on top.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(*configFile); err != nil {
			return nil, err
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *provider != "" {
		cfg.AI.Provider = *provider
	}
	if *storeDrv != "" {
		cfg.Store.Driver = *storeDrv
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *catalogDir != "" {
		cfg.CatalogDir = *catalogDir
	}
	return cfg, cfg.Validate()
}

// app is the wired server before it starts listening.
type app struct {
	handler http.Handler
	service *ai.Service
	close   func(context.Context)
}

// newApp builds every component from cfg. The caller must call close.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	cat, err := loadCatalog(cfg.CatalogDir)
	if err != nil {
		return nil, err
	}

	tp, err := tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	workflows, err := store.Open(ctx, cfg.Store)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	gen, err := buildGenerator(cfg.AI, cat, logger)
	if err != nil {
		_ = workflows.Close()
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	metrics := observability.NewMetricsCollectorWithConfig(cfg.Metrics)
	svc := ai.NewService(gen,
		ai.WithTimeout(cfg.AI.Timeout),
		ai.WithStore(workflows),
		ai.WithLogger(logger),
		ai.WithRecorder(metrics),
		ai.WithTracer(tp.Tracer()),
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	mux := http.NewServeMux()
	ai.NewHandler(svc, workflows, cat, logger).RegisterRoutes(mux,
		limiter.Middleware,
		middleware.InputValidation(cfg.Validation),
	)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	logger.Info("Server configured",
		"provider", gen.Provider(),
		"store", cfg.Store.Driver,
		"templates", cat.Len(),
		"tracing", tp.Enabled(),
		"rate_limit_per_minute", cfg.RateLimit.RequestsPerMinute,
	)

	return &app{
		handler: tracing.Middleware("workflowgen")(metrics.Middleware(mux)),
		service: svc,
		close: func(ctx context.Context) {
			if err := workflows.Close(); err != nil {
				logger.Warn("Store close error", "error", err)
			}
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("Tracer shutdown error", "error", err)
			}
		},
	}, nil
}

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Default()
	}
	cat, err := catalog.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", dir, err)
	}
	return cat, nil
}

// buildGenerator picks the one generator used for the life of the process.
func buildGenerator(cfg config.AIConfig, cat *catalog.Catalog, logger *slog.Logger) (ai.WorkflowGenerator, error) {
	p, err := ai.ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if p == ai.ProviderAuto {
		p = autoProvider(cfg)
		logger.Info("Selected generator automatically", "provider", p)
	}

	switch p {
	case ai.ProviderAnthropic:
		return llm.NewClient(llm.ClientConfig{
			APIKey:  cfg.Anthropic.APIKey,
			Model:   cfg.Anthropic.Model,
			BaseURL: cfg.Anthropic.BaseURL,
		})
	case ai.ProviderOpenAI:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	case ai.ProviderOpenRouter:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:     cfg.OpenRouter.APIKey,
			Model:      cfg.OpenRouter.Model,
			BaseURL:    cfg.OpenRouter.BaseURL,
			OpenRouter: true,
		})
	default:
		return local.NewGenerator(cat, logger), nil
	}
}

// autoProvider returns the first external provider with a key, in the
// order anthropic, openrouter, openai, else local.
func autoProvider(cfg config.AIConfig) ai.Provider {
	candidates := []struct {
		p   ai.Provider
		key string
		env string
	}{
		{ai.ProviderAnthropic, cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY"},
		{ai.ProviderOpenRouter, cfg.OpenRouter.APIKey, "OPENROUTER_API_KEY"},
		{ai.ProviderOpenAI, cfg.OpenAI.APIKey, "OPENAI_API_KEY"},
	}
	for _, c := range candidates {
		if c.key != "" || os.Getenv(c.env) != "" {
			return c.p
		}
	}
	return ai.ProviderLocal
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		a.close(context.Background())
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}
	return serve(ctx, ln, a, cfg.Server, logger)
}

func serve(ctx context.Context, ln net.Listener, a *app, cfg config.ServerConfig, logger *slog.Logger) error {
	server := &http.Server{
		Handler:      a.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		a.close(shutdownCtx)
		return err
	})
	return g.Wait()
}

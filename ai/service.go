package ai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/GoCodeAlone/workflowgen/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a single generation.
const DefaultTimeout = 60 * time.Second

const tracerName = "github.com/GoCodeAlone/workflowgen/ai"

// Recorder receives generation and persistence outcomes.
type Recorder interface {
	RecordGeneration(provider, source, status string, duration time.Duration)
	RecordStore(status string)
}

type nopRecorder struct{}

func (nopRecorder) RecordGeneration(string, string, string, time.Duration) {}
func (nopRecorder) RecordStore(string)                                     {}

// Service runs the generator chosen at startup, bounds it with a timeout,
// and persists every successful result. Failures are never retried.
type Service struct {
	generator WorkflowGenerator
	timeout   time.Duration
	store     store.WorkflowStore
	logger    *slog.Logger
	recorder  Recorder
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the per-generation deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithStore persists generated workflows to st.
func WithStore(st store.WorkflowStore) Option {
	return func(s *Service) { s.store = st }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// NewService creates a Service around a single generator.
func NewService(gen WorkflowGenerator, opts ...Option) *Service {
	s := &Service{
		generator: gen,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Provider returns the provider of the configured generator.
func (s *Service) Provider() Provider {
	return s.generator.Provider()
}

// Generate validates req, runs the generator and stores the result.
// Generator failures are returned as *GenerationError, which matches
// ErrGenerationFailed.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GeneratedWorkflow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	provider := s.generator.Provider()
	ctx, span := s.tracer.Start(ctx, "ai.generate",
		trace.WithAttributes(
			attribute.String("ai.provider", string(provider)),
			attribute.Bool("ai.include_auth", req.IncludeAuth),
			attribute.Bool("ai.include_error_handling", req.IncludeErrorHandling),
		),
	)
	defer span.End()

	start := time.Now()
	wf, err := s.run(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		genErr := &GenerationError{Provider: provider, Err: err}
		s.recorder.RecordGeneration(string(provider), "none", "error", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("workflow generation failed", "provider", provider, "duration", elapsed, "error", err)
		return nil, genErr
	}

	if wf.Provider == "" {
		wf.Provider = provider
	}
	source := wf.Source()
	s.recorder.RecordGeneration(string(provider), source, "ok", elapsed)
	span.SetAttributes(
		attribute.String("ai.source", source),
		attribute.String("ai.template", wf.Template),
		attribute.Int("workflow.node_count", wf.NodeCount),
	)
	s.logger.Info("workflow generated",
		"provider", provider,
		"source", source,
		"template", wf.Template,
		"nodes", wf.NodeCount,
		"duration", elapsed,
	)

	s.persist(ctx, req, wf)
	return wf, nil
}

func (s *Service) run(ctx context.Context, req GenerateRequest) (*GeneratedWorkflow, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	wf, err := s.generator.GenerateWorkflow(ctx, req)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, errors.New("generator returned no workflow")
	}
	return wf, nil
}

// persist stores wf. A storage failure is logged and does not fail the
// generation.
func (s *Service) persist(ctx context.Context, req GenerateRequest, wf *GeneratedWorkflow) {
	if s.store == nil {
		return
	}
	doc, err := json.Marshal(wf.WorkflowJSON)
	if err != nil {
		s.recorder.RecordStore("error")
		s.logger.Warn("failed to encode workflow for storage", "error", err)
		return
	}
	rec := &store.WorkflowRecord{
		Name:         wf.Name,
		Description:  wf.Description,
		Prompt:       req.Prompt,
		WorkflowJSON: doc,
		NodeCount:    wf.NodeCount,
	}
	if err := s.store.Create(context.WithoutCancel(ctx), rec); err != nil {
		s.recorder.RecordStore("error")
		s.logger.Warn("failed to store generated workflow", "name", wf.Name, "error", err)
		return
	}
	s.recorder.RecordStore("ok")
	s.logger.Debug("stored generated workflow", "id", rec.ID, "name", rec.Name)
}

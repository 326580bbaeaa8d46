package ai

import "context"

// WorkflowGenerator turns a validated request into a complete workflow.
// Implementations are the local deterministic scorer and the external
// text-generation clients; one is chosen at startup.
type WorkflowGenerator interface {
	// Provider names the backend for logs and metrics.
	Provider() Provider

	// GenerateWorkflow creates a workflow from a natural language request.
	GenerateWorkflow(ctx context.Context, req GenerateRequest) (*GeneratedWorkflow, error)
}

// GeneratorFunc adapts a function to WorkflowGenerator.
type GeneratorFunc struct {
	Name Provider
	Fn   func(ctx context.Context, req GenerateRequest) (*GeneratedWorkflow, error)
}

// Provider implements WorkflowGenerator.
func (g GeneratorFunc) Provider() Provider { return g.Name }

// GenerateWorkflow implements WorkflowGenerator.
func (g GeneratorFunc) GenerateWorkflow(ctx context.Context, req GenerateRequest) (*GeneratedWorkflow, error) {
	return g.Fn(ctx, req)
}

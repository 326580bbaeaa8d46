package local

import (
	"context"
	"log/slog"

	"github.com/GoCodeAlone/workflowgen/ai"
	"github.com/GoCodeAlone/workflowgen/catalog"
	"github.com/GoCodeAlone/workflowgen/n8n"
)

// Generator implements ai.WorkflowGenerator without any external calls.
type Generator struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewGenerator creates a local generator over c.
func NewGenerator(c *catalog.Catalog, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{catalog: c, logger: logger}
}

// Provider implements ai.WorkflowGenerator.
func (g *Generator) Provider() ai.Provider { return ai.ProviderLocal }

// GenerateWorkflow scores the prompt against the catalog and assembles the
// best template, or a synthesized one when nothing matched. The auth and
// error handling flags have no effect here.
func (g *Generator) GenerateWorkflow(ctx context.Context, req ai.GenerateRequest) (*ai.GeneratedWorkflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best, score := SelectBest(req.Prompt, g.catalog.Templates())
	if best == nil {
		g.logger.Debug("no template matched, synthesizing", "prompt_len", len(req.Prompt))
		return Build(Synthesize(req.Prompt), ""), nil
	}
	g.logger.Debug("template selected", "template", best.Name, "score", score)
	return Build(best, best.Name), nil
}

// Build assembles t into a response. matched is the catalog template name,
// empty for synthesized templates.
func Build(t *catalog.Template, matched string) *ai.GeneratedWorkflow {
	doc := n8n.Assemble(t.Name, t.Nodes, t.Connections)
	return &ai.GeneratedWorkflow{
		Name:               t.Name,
		Description:        t.Description,
		TriggerType:        string(t.TriggerType),
		NodeCount:          len(doc.Nodes),
		EstimatedSetupTime: t.EstimatedSetupTime,
		SetupInstructions:  append([]string(nil), t.SetupInstructions...),
		Nodes:              doc.Nodes,
		Connections:        doc.Connections,
		WorkflowJSON:       doc,
		Provider:           ai.ProviderLocal,
		Template:           matched,
	}
}

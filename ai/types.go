package ai

import "github.com/GoCodeAlone/workflowgen/n8n"

// GenerateRequest contains the input for workflow generation.
type GenerateRequest struct {
	Prompt               string `json:"prompt" validate:"required,min=10"`
	IncludeAuth          bool   `json:"includeAuth"`
	IncludeErrorHandling bool   `json:"includeErrorHandling"`
}

// GeneratedWorkflow is the response document for one generation. Nodes and
// Connections mirror the ones inside WorkflowJSON.
type GeneratedWorkflow struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	TriggerType        string          `json:"triggerType"`
	NodeCount          int             `json:"nodeCount"`
	EstimatedSetupTime string          `json:"estimatedSetupTime"`
	SetupInstructions  []string        `json:"setupInstructions"`
	Nodes              []n8n.Node      `json:"nodes"`
	Connections        n8n.Connections `json:"connections"`
	WorkflowJSON       n8n.Document    `json:"workflowJson"`

	// Provider is the generator that produced the workflow.
	Provider Provider `json:"-"`
	// Template is the matched catalog template, empty for synthesized and
	// externally generated workflows.
	Template string `json:"-"`
}

// Source reports how the workflow was produced, for metrics and tracing.
func (w *GeneratedWorkflow) Source() string {
	switch {
	case w.Provider != ProviderLocal:
		return "external"
	case w.Template != "":
		return "template"
	default:
		return "fallback"
	}
}

// Provider identifies a generation backend.
type Provider string

const (
	ProviderLocal      Provider = "local"
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderAuto       Provider = "auto"
)

// ParseProvider validates a configured provider name.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(s); p {
	case ProviderLocal, ProviderAnthropic, ProviderOpenAI, ProviderOpenRouter, ProviderAuto:
		return p, nil
	case "":
		return ProviderAuto, nil
	default:
		return "", &ValidationError{Field: "provider", Message: "unknown provider " + s}
	}
}

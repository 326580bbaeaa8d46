package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/GoCodeAlone/workflowgen/ai"
)

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	openAIModel       = "gpt-4o"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterModel   = "openai/gpt-4o"

	chatTemperature = 0.7
	chatMaxTokens   = 2000
)

// OpenAIConfig configures an OpenAI-compatible chat completions client.
// With OpenRouter set the key, model and base URL default to OpenRouter's.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	OpenRouter bool
	HTTPClient *http.Client
}

// OpenAIClient implements ai.WorkflowGenerator over /chat/completions with
// JSON response format.
type OpenAIClient struct {
	provider   ai.Provider
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient creates a client for OpenAI or OpenRouter.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	provider, envKey, model, baseURL := ai.ProviderOpenAI, "OPENAI_API_KEY", openAIModel, openAIBaseURL
	if cfg.OpenRouter {
		provider, envKey, model, baseURL = ai.ProviderOpenRouter, "OPENROUTER_API_KEY", openRouterModel, openRouterBaseURL
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(envKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s not set", envKey)
	}
	if cfg.Model != "" {
		model = cfg.Model
	}
	if cfg.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIClient{
		provider:   provider,
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClientOrDefault(cfg.HTTPClient),
	}, nil
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Provider implements ai.WorkflowGenerator.
func (c *OpenAIClient) Provider() ai.Provider { return c.provider }

// GenerateWorkflow asks the model for a complete workflow document.
func (c *OpenAIClient) GenerateWorkflow(ctx context.Context, req ai.GenerateRequest) (*ai.GeneratedWorkflow, error) {
	text, err := c.complete(ctx, ai.SystemPrompt(req), ai.GeneratePrompt(req))
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	return ParseWorkflow(text, c.provider)
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    chatTemperature,
		MaxTokens:      chatMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	respBody, err := do(c.httpClient, httpReq, c.provider)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("response %s has no choices", resp.ID)
	}
	return resp.Choices[0].Message.Content, nil
}

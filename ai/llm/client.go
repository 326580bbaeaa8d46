// Package llm holds the external text-generation strategies: the Anthropic
// Messages API and OpenAI-compatible chat completions.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/GoCodeAlone/workflowgen/ai"
	"github.com/GoCodeAlone/workflowgen/observability/tracing"
)

const (
	defaultModel   = "claude-sonnet-4-20250514"
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	maxTokens      = 4096

	// maxResponseBytes caps how much of a provider response is read.
	maxResponseBytes = 4 << 20
)

// APIError is a non-200 answer from a provider.
type APIError struct {
	Provider   ai.Provider
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// ClientConfig holds configuration for the Anthropic LLM client.
type ClientConfig struct {
	APIKey     string // Defaults to ANTHROPIC_API_KEY env var
	Model      string // Defaults to claude-sonnet-4-20250514
	BaseURL    string // Defaults to https://api.anthropic.com
	HTTPClient *http.Client
}

// Client implements ai.WorkflowGenerator using the Anthropic Messages API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Anthropic LLM client.
func NewClient(cfg ClientConfig) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClientOrDefault(cfg.HTTPClient),
	}, nil
}

func httpClientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Transport: tracing.Transport(nil)}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type apiResponse struct {
	ID         string         `json:"id"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// Provider implements ai.WorkflowGenerator.
func (c *Client) Provider() ai.Provider { return ai.ProviderAnthropic }

// GenerateWorkflow asks the model for a complete workflow document.
func (c *Client) GenerateWorkflow(ctx context.Context, req ai.GenerateRequest) (*ai.GeneratedWorkflow, error) {
	text, err := c.call(ctx, ai.SystemPrompt(req), ai.GeneratePrompt(req))
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	return ParseWorkflow(text, ai.ProviderAnthropic)
}

func (c *Client) call(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(apiRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
		System:      system,
		Messages:    []message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	respBody, err := do(c.httpClient, httpReq, ai.ProviderAnthropic)
	if err != nil {
		return "", err
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	var texts []string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	if len(texts) == 0 {
		return "", fmt.Errorf("response %s has no text content", apiResp.ID)
	}
	return strings.Join(texts, "\n"), nil
}

// do sends req and returns the body of a 200 response.
func do(client *http.Client, req *http.Request, provider ai.Provider) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: provider, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

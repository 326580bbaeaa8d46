package local

import (
	"strings"
	"unicode/utf8"

	"github.com/GoCodeAlone/workflowgen/catalog"
)

// FallbackName is the name of every synthesized workflow.
const FallbackName = "Custom Automation Workflow"

const descriptionLimit = 100

// ScheduleRule maps prompt words to a cron expression for the schedule
// trigger.
type ScheduleRule struct {
	Words []string
	Cron  string
}

// ScheduleRules are evaluated in order; the first rule with a word present
// in the prompt wins. No match means a webhook trigger.
var ScheduleRules = []ScheduleRule{
	{Words: []string{"daily"}, Cron: "0 9 * * *"},
	{Words: []string{"weekly"}, Cron: "0 9 * * 1"},
	{Words: []string{"night"}, Cron: "0 2 * * *"},
	{Words: []string{"schedule", "time"}, Cron: "0 */6 * * *"},
}

// stepRule appends node when any of words is present.
type stepRule struct {
	words []string
	node  func() catalog.NodeSpec
}

var stepRules = []stepRule{
	{words: []string{"data", "process", "transform"}, node: processDataNode},
	{words: []string{"email", "mail", "send"}, node: sendEmailNode},
	{words: []string{"api", "http", "request"}, node: apiRequestNode},
}

var fallbackInstructions = []string{
	"Review and customize the generated nodes for your specific use case",
	"Configure authentication and credentials where needed",
	"Update URLs, email addresses, and other parameters",
	"Test the workflow with sample data",
	"Add additional nodes or modify logic as required",
}

// Synthesize builds a minimal template from coarse intent signals in the
// prompt. The result always starts with a trigger node and has no declared
// connections.
func Synthesize(prompt string) *catalog.Template {
	p := strings.ToLower(prompt)

	trigger := catalog.TriggerWebhook
	nodes := []catalog.NodeSpec{webhookNode()}
	if cron, ok := scheduleFor(p); ok {
		trigger = catalog.TriggerSchedule
		nodes[0] = scheduleNode(cron)
	}

	for _, rule := range stepRules {
		if containsAny(p, rule.words) {
			nodes = append(nodes, rule.node())
		}
	}

	return &catalog.Template{
		Name:               FallbackName,
		Description:        `Custom workflow based on your description: "` + truncate(prompt, descriptionLimit) + `"`,
		TriggerType:        trigger,
		EstimatedSetupTime: "7 minutes",
		Nodes:              nodes,
		SetupInstructions:  append([]string(nil), fallbackInstructions...),
	}
}

func scheduleFor(p string) (string, bool) {
	for _, rule := range ScheduleRules {
		if containsAny(p, rule.Words) {
			return rule.Cron, true
		}
	}
	return "", false
}

func containsAny(p string, words []string) bool {
	for _, w := range words {
		if strings.Contains(p, w) {
			return true
		}
	}
	return false
}

// truncate keeps the first limit runes and marks the cut with "...".
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func scheduleNode(cron string) catalog.NodeSpec {
	return catalog.NodeSpec{
		Name:        "Schedule Trigger",
		Type:        "n8n-nodes-base.scheduleTrigger",
		TypeVersion: 1,
		Position:    [2]int{240, 300},
		Parameters: map[string]any{
			"rule": map[string]any{
				"interval": []any{
					map[string]any{"field": "cronExpression", "expression": cron},
				},
			},
		},
	}
}

func webhookNode() catalog.NodeSpec {
	return catalog.NodeSpec{
		Name:        "Webhook",
		Type:        "n8n-nodes-base.webhook",
		TypeVersion: 1,
		Position:    [2]int{240, 300},
		Parameters: map[string]any{
			"httpMethod": "POST",
			"path":       "custom-webhook",
			"options":    map[string]any{},
		},
	}
}

func processDataNode() catalog.NodeSpec {
	return catalog.NodeSpec{
		Name:        "Process Data",
		Type:        "n8n-nodes-base.set",
		TypeVersion: 1,
		Position:    [2]int{460, 300},
		Parameters: map[string]any{
			"values": map[string]any{
				"string": []any{
					map[string]any{"name": "processed_data", "value": "={{JSON.stringify($json)}}"},
					map[string]any{"name": "timestamp", "value": `={{$now.format("YYYY-MM-DD HH:mm:ss")}}`},
				},
			},
			"options": map[string]any{},
		},
	}
}

func sendEmailNode() catalog.NodeSpec {
	return catalog.NodeSpec{
		Name:        "Send Email",
		Type:        "n8n-nodes-base.emailSend",
		TypeVersion: 1,
		Position:    [2]int{680, 300},
		Parameters: map[string]any{
			"fromEmail": "noreply@yoursite.com",
			"toEmail":   "admin@yoursite.com",
			"subject":   "Automated Notification",
			"text":      "This is an automated message from your workflow.\n\nData: {{JSON.stringify($json)}}",
		},
	}
}

func apiRequestNode() catalog.NodeSpec {
	return catalog.NodeSpec{
		Name:        "API Request",
		Type:        "n8n-nodes-base.httpRequest",
		TypeVersion: 1,
		Position:    [2]int{680, 500},
		Parameters: map[string]any{
			"url":             "https://api.example.com/endpoint",
			"authentication":  "genericCredentialType",
			"genericAuthType": "httpHeaderAuth",
			"sendBody":        true,
			"bodyContentType": "json",
		},
	}
}

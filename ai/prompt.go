package ai

import "strings"

const systemPromptBase = `You are an expert n8n workflow generator. Given a plain English description of an automation need, generate a complete, working n8n workflow JSON.

Your response must be valid JSON with this structure:
{
  "name": "Workflow Name",
  "description": "Clear description of what this workflow does",
  "triggerType": "Type of trigger (e.g., Webhook, Schedule, Manual)",
  "nodeCount": number,
  "estimatedSetupTime": "X minutes",
  "setupInstructions": ["Step 1", "Step 2", "Step 3"],
  "workflowJson": {
    "name": "Workflow Name",
    "nodes": [...],
    "connections": {...},
    "active": true,
    "settings": {...},
    "versionId": "uuid",
    "meta": {...}
  }
}

Important n8n workflow structure rules:
1. Each node must have: parameters, id (uuid), name, type, position [x, y], typeVersion
2. Common node types:
   - n8n-nodes-base.webhook (for webhooks)
   - n8n-nodes-base.httpRequest (for API calls)
   - n8n-nodes-base.emailSend (for sending emails)
   - n8n-nodes-base.set (for data manipulation)
   - n8n-nodes-base.respondToWebhook (for webhook responses)
   - n8n-nodes-base.scheduleTrigger (for time-based triggers)
   - n8n-nodes-base.if (for conditional logic)
   - n8n-nodes-base.switch (for multiple conditions)
3. Connections format: { "NodeName": { "main": [[{ "node": "TargetNode", "type": "main", "index": 0 }]] } }
4. Position nodes logically: start at [240, 300] and move right by ~220px for each node
5. Use realistic parameter values and proper node configurations
6. Include proper UUIDs for ids and versionId
7. Set active: true and include proper settings and meta objects`

const (
	authInstruction          = "Include authentication setup where relevant."
	errorHandlingInstruction = "Add error handling nodes and try/catch logic."
	closingInstruction       = "Generate a complete, functional n8n workflow based on the user's description."
)

// SystemPrompt returns the system prompt for external generators. The
// request flags add their instructions before the closing line.
func SystemPrompt(req GenerateRequest) string {
	var b strings.Builder
	b.WriteString(systemPromptBase)
	b.WriteString("\n\n")
	if req.IncludeAuth {
		b.WriteString(authInstruction)
		b.WriteString("\n")
	}
	if req.IncludeErrorHandling {
		b.WriteString(errorHandlingInstruction)
		b.WriteString("\n")
	}
	b.WriteString(closingInstruction)
	return b.String()
}

// GeneratePrompt returns the user message for a request: the prompt itself.
func GeneratePrompt(req GenerateRequest) string {
	return strings.TrimSpace(req.Prompt)
}

package catalog

// NodeType describes a popular downstream node for reference display.
type NodeType struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

var examplePrompts = []string{
	"Send me an email when someone fills out my contact form",
	"Post to Slack when a new GitHub issue is created",
	"Save new Airtable records to Google Sheets every hour",
	"Send daily weather reports to my team via email",
	"Create Trello cards from new customer support tickets",
	"Sync new customers from Stripe to my CRM",
	"Monitor website uptime and send alerts when down",
	"Auto-generate invoices from completed projects",
	"Back up database to cloud storage daily",
	"Send welcome emails to new newsletter subscribers",
}

var popularNodeTypes = []NodeType{
	{Name: "Webhook Trigger", Type: "n8n-nodes-base.webhook", Category: "Trigger"},
	{Name: "HTTP Request", Type: "n8n-nodes-base.httpRequest", Category: "Action"},
	{Name: "Email Send", Type: "n8n-nodes-base.emailSend", Category: "Action"},
	{Name: "Schedule Trigger", Type: "n8n-nodes-base.scheduleTrigger", Category: "Trigger"},
	{Name: "Edit Fields", Type: "n8n-nodes-base.set", Category: "Utility"},
	{Name: "If/Switch", Type: "n8n-nodes-base.if", Category: "Utility"},
	{Name: "Code", Type: "n8n-nodes-base.code", Category: "Utility"},
	{Name: "Slack", Type: "n8n-nodes-base.slack", Category: "Action"},
	{Name: "Google Sheets", Type: "n8n-nodes-base.googleSheets", Category: "Action"},
	{Name: "Airtable", Type: "n8n-nodes-base.airtable", Category: "Action"},
}

// Examples returns the example prompts shown as suggestion chips.
func Examples() []string {
	return append([]string(nil), examplePrompts...)
}

// NodeTypes returns the popular node types in display order.
func NodeTypes() []NodeType {
	return append([]NodeType(nil), popularNodeTypes...)
}

package local

// Scoring weights.
const (
	KeywordWeight     = 3.0
	ProgressiveBonus  = 0.5
	CrossCuttingPoint = 2.0
	EnterpriseWeight  = 4.0
	ComplexityWeight  = 2.0
	FlagshipCueBonus  = 5.0
)

// CrossCutting pairs a coarse prompt signal with a template keyword. When
// both are present the template earns Points.
type CrossCutting struct {
	Signal  string
	Keyword string
	Points  float64
}

// CrossCuttingBonuses are fixed associations, not synonym expansion.
var CrossCuttingBonuses = []CrossCutting{
	{Signal: "form", Keyword: "contact form", Points: CrossCuttingPoint},
	{Signal: "notify", Keyword: "notification", Points: CrossCuttingPoint},
	{Signal: "database", Keyword: "backup", Points: CrossCuttingPoint},
	{Signal: "customer", Keyword: "crm", Points: CrossCuttingPoint},
	{Signal: "order", Keyword: "ecommerce", Points: CrossCuttingPoint},
	{Signal: "deploy", Keyword: "deployment", Points: CrossCuttingPoint},
	{Signal: "post", Keyword: "social media", Points: CrossCuttingPoint},
	{Signal: "monitor", Keyword: "monitoring", Points: CrossCuttingPoint},
}

// ComplexityTerms mark a prompt as asking for an elaborate workflow. They
// only affect the flagship template.
var ComplexityTerms = []string{
	"score", "scoring", "salesforce", "asana", "sms", "alert", "dashboard",
	"analytics", "calendar", "priority", "high-value", "personalized",
	"sequence", "multi", "multiple", "integration", "webhook", "trigger",
	"automation",
}

// EnterpriseTerms mark a prompt as enterprise sales oriented. They only
// affect the flagship template.
var EnterpriseTerms = []string{
	"enterprise", "lead", "crm", "sales team", "budget", "company size", "industry",
}

// CoOccurrence awards Points to the flagship template when both terms
// appear in the prompt.
type CoOccurrence struct {
	A, B   string
	Points float64
}

// CoOccurrenceBonuses are checked independently; several may apply.
var CoOccurrenceBonuses = []CoOccurrence{
	{A: "lead", B: "score", Points: 10},
	{A: "salesforce", B: "crm", Points: 8},
	{A: "sms", B: "alert", Points: 6},
	{A: "asana", B: "task", Points: 6},
	{A: "analytics", B: "dashboard", Points: 5},
}

// FlagshipCues give the flagship template FlagshipCueBonus once when any
// of them is present.
var FlagshipCues = []string{
	"enterprise", "complex", "advanced", "multiple", "integration", "workflow",
}

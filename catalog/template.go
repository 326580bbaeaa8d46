package catalog

// TriggerType names how a generated workflow starts.
type TriggerType string

const (
	TriggerWebhook  TriggerType = "Webhook"
	TriggerSchedule TriggerType = "Schedule"
	TriggerManual   TriggerType = "Manual"
)

// NodeSpec is one authored step of a template. It carries no id; ids are
// assigned each time a workflow is assembled.
type NodeSpec struct {
	Name        string         `yaml:"name" json:"name"`
	Type        string         `yaml:"type" json:"type"`
	TypeVersion int            `yaml:"typeVersion" json:"typeVersion"`
	Position    [2]int         `yaml:"position" json:"position"`
	Parameters  map[string]any `yaml:"parameters" json:"parameters"`
}

// Connections is an authored edge map: source node name to output groups,
// each group listing target node names.
type Connections map[string][][]string

// Template is an immutable catalog entry pairing a keyword signature with a
// literal node graph.
type Template struct {
	Name               string      `yaml:"name" json:"name"`
	Description        string      `yaml:"description" json:"description"`
	TriggerType        TriggerType `yaml:"triggerType" json:"triggerType"`
	EstimatedSetupTime string      `yaml:"estimatedSetupTime" json:"estimatedSetupTime"`
	// Flagship marks the high-complexity template favoured by the
	// enterprise heuristics.
	Flagship          bool        `yaml:"flagship" json:"flagship,omitempty"`
	Keywords          []string    `yaml:"keywords" json:"keywords"`
	Nodes             []NodeSpec  `yaml:"nodes" json:"nodes"`
	Connections       Connections `yaml:"connections" json:"connections,omitempty"`
	SetupInstructions []string    `yaml:"setupInstructions" json:"setupInstructions"`
}

// HasKeyword reports whether kw is one of the template's keywords.
func (t *Template) HasKeyword(kw string) bool {
	for _, k := range t.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// NodeNames returns the node names in declaration order.
func (t *Template) NodeNames() []string {
	names := make([]string, len(t.Nodes))
	for i, n := range t.Nodes {
		names[i] = n.Name
	}
	return names
}

// Summary is the listing shape used by the templates endpoint and CLI.
type Summary struct {
	Name               string      `json:"name"`
	Description        string      `json:"description"`
	TriggerType        TriggerType `json:"triggerType"`
	EstimatedSetupTime string      `json:"estimatedSetupTime"`
	NodeCount          int         `json:"nodeCount"`
	Keywords           []string    `json:"keywords"`
}

// Summary returns a listing view of the template.
func (t *Template) Summary() Summary {
	return Summary{
		Name:               t.Name,
		Description:        t.Description,
		TriggerType:        t.TriggerType,
		EstimatedSetupTime: t.EstimatedSetupTime,
		NodeCount:          len(t.Nodes),
		Keywords:           append([]string(nil), t.Keywords...),
	}
}

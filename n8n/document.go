// Package n8n models the workflow document format consumed by n8n and
// assembles catalog node lists into complete documents.
package n8n

// EdgeMain is the only connection type emitted.
const EdgeMain = "main"

// Node is a materialized workflow node with a request-scoped id.
type Node struct {
	Parameters  map[string]any `json:"parameters"`
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Position    [2]float64     `json:"position"`
	TypeVersion float64        `json:"typeVersion"`
}

// Edge points at a destination node input.
type Edge struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Outputs holds the edges of one source node, grouped by output index.
type Outputs struct {
	Main [][]Edge `json:"main"`
}

// Connections maps a source node name to its outputs.
type Connections map[string]Outputs

// Targets flattens every destination name reachable from src in output
// order.
func (c Connections) Targets(src string) []string {
	var out []string
	for _, group := range c[src].Main {
		for _, e := range group {
			out = append(out, e.Node)
		}
	}
	return out
}

// Document is the self-contained workflow payload imported into n8n.
type Document struct {
	Name        string         `json:"name"`
	Nodes       []Node         `json:"nodes"`
	Connections Connections    `json:"connections"`
	Active      bool           `json:"active"`
	Settings    map[string]any `json:"settings"`
	VersionID   string         `json:"versionId"`
	Meta        map[string]any `json:"meta"`
}

// NodeNames returns the names of the document's nodes in order.
func (d *Document) NodeNames() []string {
	names := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		names[i] = n.Name
	}
	return names
}

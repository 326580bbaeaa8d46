package n8n

import (
	"github.com/GoCodeAlone/workflowgen/catalog"
	"github.com/google/uuid"
)

// Assemble materializes specs into a complete document. Every node gets a
// fresh id and the document a fresh versionId, so two assemblies of the same
// specs differ only in identifiers. When declared is empty the nodes are
// chained linearly in order; otherwise declared is used as authored.
func Assemble(name string, specs []catalog.NodeSpec, declared catalog.Connections) Document {
	nodes := make([]Node, len(specs))
	for i, s := range specs {
		nodes[i] = Node{
			Parameters:  cloneMap(s.Parameters),
			ID:          uuid.NewString(),
			Name:        s.Name,
			Type:        s.Type,
			Position:    [2]float64{float64(s.Position[0]), float64(s.Position[1])},
			TypeVersion: float64(s.TypeVersion),
		}
	}

	var conns Connections
	if len(declared) > 0 {
		conns = FromDeclared(declared)
	} else {
		conns = Linear(nodes)
	}

	return Document{
		Name:        name,
		Nodes:       nodes,
		Connections: conns,
		Active:      true,
		Settings:    map[string]any{},
		VersionID:   uuid.NewString(),
		Meta:        map[string]any{"templateCredsSetupCompleted": false},
	}
}

// Linear chains nodes[i] -> nodes[i+1]. The last node has no outgoing edge.
func Linear(nodes []Node) Connections {
	conns := make(Connections, max(len(nodes)-1, 0))
	for i := 0; i+1 < len(nodes); i++ {
		conns[nodes[i].Name] = Outputs{
			Main: [][]Edge{{{Node: nodes[i+1].Name, Type: EdgeMain, Index: 0}}},
		}
	}
	return conns
}

// FromDeclared converts an authored name map into n8n edges, keeping the
// output grouping.
func FromDeclared(declared catalog.Connections) Connections {
	conns := make(Connections, len(declared))
	for src, groups := range declared {
		main := make([][]Edge, len(groups))
		for i, group := range groups {
			edges := make([]Edge, len(group))
			for j, dst := range group {
				edges[j] = Edge{Node: dst, Type: EdgeMain, Index: 0}
			}
			main[i] = edges
		}
		conns[src] = Outputs{Main: main}
	}
	return conns
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

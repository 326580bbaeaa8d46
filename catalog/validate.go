package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// ErrIntegrity is matched by every *IntegrityError.
var ErrIntegrity = errors.New("catalog integrity")

// IntegrityError lists every authoring problem found while validating a
// catalog. A catalog with any problem is rejected as a whole.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("catalog integrity: %s", strings.Join(e.Problems, "; "))
}

// Is reports whether target is ErrIntegrity.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// Validate checks authoring invariants across templates: unique template
// names, unique node names within a template, declared connections that
// only reference the template's own nodes, and parseable cron expressions.
func Validate(templates []Template) error {
	var problems []string
	seen := make(map[string]bool, len(templates))

	for i := range templates {
		t := &templates[i]
		label := t.Name
		if label == "" {
			label = fmt.Sprintf("template #%d", i+1)
			problems = append(problems, label+": missing name")
		} else if seen[t.Name] {
			problems = append(problems, fmt.Sprintf("%s: duplicate template name", label))
		}
		seen[t.Name] = true

		for _, p := range validateTemplate(t) {
			problems = append(problems, label+": "+p)
		}
	}

	if len(problems) > 0 {
		return &IntegrityError{Problems: problems}
	}
	return nil
}

func validateTemplate(t *Template) []string {
	var problems []string
	if t.TriggerType == "" {
		problems = append(problems, "missing trigger type")
	}
	if len(t.Keywords) == 0 {
		problems = append(problems, "no keywords")
	}
	if len(t.Nodes) == 0 {
		problems = append(problems, "no nodes")
		if len(t.Connections) > 0 {
			problems = append(problems, "connections declared over an empty node list")
		}
		return problems
	}

	names := make(map[string]bool, len(t.Nodes))
	for i, n := range t.Nodes {
		if n.Name == "" {
			problems = append(problems, fmt.Sprintf("node #%d has no name", i+1))
			continue
		}
		if n.Type == "" {
			problems = append(problems, fmt.Sprintf("node %q has no type", n.Name))
		}
		if names[n.Name] {
			problems = append(problems, fmt.Sprintf("duplicate node name %q", n.Name))
		}
		names[n.Name] = true

		for _, expr := range cronExpressions(n.Parameters) {
			if _, err := cron.ParseStandard(expr); err != nil {
				problems = append(problems, fmt.Sprintf("node %q: invalid cron expression %q: %v", n.Name, expr, err))
			}
		}
	}

	for src, outputs := range t.Connections {
		if !names[src] {
			problems = append(problems, fmt.Sprintf("connection source %q is not a node", src))
		}
		for _, group := range outputs {
			for _, dst := range group {
				if !names[dst] {
					problems = append(problems, fmt.Sprintf("connection %q -> %q targets a missing node", src, dst))
				}
			}
		}
	}
	return problems
}

// cronExpressions walks a parameter tree and collects the expression of
// every {field: cronExpression, expression: ...} interval entry.
func cronExpressions(v any) []string {
	var out []string
	switch val := v.(type) {
	case map[string]any:
		if field, _ := val["field"].(string); field == "cronExpression" {
			if expr, ok := val["expression"].(string); ok {
				out = append(out, expr)
			}
		}
		for _, child := range val {
			out = append(out, cronExpressions(child)...)
		}
	case []any:
		for _, child := range val {
			out = append(out, cronExpressions(child)...)
		}
	}
	return out
}

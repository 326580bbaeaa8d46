package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/GoCodeAlone/workflowgen/ai"
	"github.com/GoCodeAlone/workflowgen/n8n"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// ErrNoJSON means the model answered without a JSON object.
var ErrNoJSON = errors.New("no JSON found in response")

// SchemaError lists the ways a model response departs from the workflow
// shape.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "model response failed schema validation: " + strings.Join(e.Problems, "; ")
}

const workflowSchemaJSON = `{
  "type": "object",
  "required": ["name", "description", "triggerType", "setupInstructions", "workflowJson"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "triggerType": {"type": "string"},
    "estimatedSetupTime": {"type": "string"},
    "setupInstructions": {"type": "array", "items": {"type": "string"}},
    "workflowJson": {
      "type": "object",
      "required": ["nodes", "connections"],
      "properties": {
        "nodes": {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "object",
            "required": ["name", "type"],
            "properties": {
              "name": {"type": "string", "minLength": 1},
              "type": {"type": "string", "minLength": 1},
              "parameters": {"type": "object"},
              "position": {"type": "array", "items": {"type": "number"}},
              "typeVersion": {"type": "number"}
            }
          }
        },
        "connections": {
          "type": "object",
          "additionalProperties": {
            "type": "object",
            "properties": {
              "main": {
                "type": "array",
                "items": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["node"],
                    "properties": {"node": {"type": "string"}}
                  }
                }
              }
            }
          }
        },
        "settings": {"type": "object"},
        "meta": {"type": "object"}
      }
    }
  }
}`

var workflowSchema = gojsonschema.NewStringLoader(workflowSchemaJSON)

type modelWorkflow struct {
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	TriggerType        string       `json:"triggerType"`
	EstimatedSetupTime string       `json:"estimatedSetupTime"`
	SetupInstructions  []string     `json:"setupInstructions"`
	WorkflowJSON       n8n.Document `json:"workflowJson"`
}

// ParseWorkflow extracts, validates and normalizes a model response. The
// node count is recomputed and missing identifiers are filled in.
func ParseWorkflow(text string, provider ai.Provider) (*ai.GeneratedWorkflow, error) {
	raw := ExtractJSON(text)
	if raw == "" {
		return nil, ErrNoJSON
	}

	result, err := gojsonschema.Validate(workflowSchema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, &SchemaError{Problems: problems}
	}

	var mw modelWorkflow
	if err := json.Unmarshal([]byte(raw), &mw); err != nil {
		return nil, fmt.Errorf("failed to decode workflow: %w", err)
	}

	doc := normalize(mw.WorkflowJSON, mw.Name)
	return &ai.GeneratedWorkflow{
		Name:               mw.Name,
		Description:        mw.Description,
		TriggerType:        mw.TriggerType,
		NodeCount:          len(doc.Nodes),
		EstimatedSetupTime: mw.EstimatedSetupTime,
		SetupInstructions:  mw.SetupInstructions,
		Nodes:              doc.Nodes,
		Connections:        doc.Connections,
		WorkflowJSON:       doc,
		Provider:           provider,
	}, nil
}

func normalize(doc n8n.Document, name string) n8n.Document {
	if doc.Name == "" {
		doc.Name = name
	}
	if doc.VersionID == "" {
		doc.VersionID = uuid.NewString()
	}
	if doc.Settings == nil {
		doc.Settings = map[string]any{}
	}
	if doc.Meta == nil {
		doc.Meta = map[string]any{"templateCredsSetupCompleted": false}
	}
	if doc.Connections == nil {
		doc.Connections = n8n.Connections{}
	}
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.Parameters == nil {
			n.Parameters = map[string]any{}
		}
		if n.TypeVersion == 0 {
			n.TypeVersion = 1
		}
	}
	for _, out := range doc.Connections {
		for _, group := range out.Main {
			for j := range group {
				if group[j].Type == "" {
					group[j].Type = n8n.EdgeMain
				}
			}
		}
	}
	doc.Active = true
	return doc
}

// ExtractJSON finds the first JSON object or array in text, preferring a
// fenced code block.
func ExtractJSON(text string) string {
	if idx := strings.Index(text, "```json"); idx != -1 {
		start := idx + len("```json")
		if end := strings.Index(text[start:], "```"); end != -1 {
			return strings.TrimSpace(text[start : start+end])
		}
	}
	if idx := strings.Index(text, "```"); idx != -1 {
		start := idx + len("```")
		if end := strings.Index(text[start:], "```"); end != -1 {
			candidate := strings.TrimSpace(text[start : start+end])
			if len(candidate) > 0 && (candidate[0] == '{' || candidate[0] == '[') {
				return candidate
			}
		}
	}

	for i := 0; i < len(text); i++ {
		open := text[i]
		if open != '{' && open != '[' {
			continue
		}
		if end := matchingClose(text, i); end != -1 {
			return text[i : end+1]
		}
	}
	return ""
}

// matchingClose returns the index closing the bracket at start, skipping
// brackets inside strings, or -1 if it is never closed.
func matchingClose(text string, start int) int {
	open := text[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}
	depth := 0
	inString, escape := false, false
	for j := start; j < len(text); j++ {
		c := text[j]
		switch {
		case escape:
			escape = false
		case c == '\\' && inString:
			escape = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

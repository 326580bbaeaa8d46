package catalog

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestDefault_LoadsEmbeddedTemplates(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	want := []struct {
		name    string
		trigger TriggerType
		nodes   int
		branchy bool
	}{
		{"Enterprise Lead Processing Workflow", TriggerWebhook, 10, true},
		{"Advanced E-commerce Order Processing", TriggerWebhook, 7, true},
		{"Multi-Platform Content Distribution", TriggerWebhook, 7, true},
		{"IoT Data Processing & Analytics Platform", TriggerWebhook, 8, true},
		{"Financial Data Pipeline & Reporting", TriggerSchedule, 7, true},
		{"Customer Registration Workflow", TriggerWebhook, 5, false},
		{"E-commerce Order Processing", TriggerWebhook, 5, false},
		{"CI/CD Pipeline Notification", TriggerWebhook, 4, false},
		{"Social Media Cross-Posting", TriggerWebhook, 5, false},
		{"Website Monitoring & Alerts", TriggerSchedule, 5, false},
		{"Contact Form Email Notification", TriggerWebhook, 4, false},
		{"Slack Notification Workflow", TriggerWebhook, 2, false},
		{"Scheduled Data Backup", TriggerSchedule, 3, false},
		{"API Integration Workflow", TriggerWebhook, 3, false},
	}

	templates := c.Templates()
	if len(templates) != len(want) {
		t.Fatalf("expected %d templates, got %d", len(want), len(templates))
	}
	for i, w := range want {
		got := templates[i]
		if got.Name != w.name {
			t.Errorf("template %d: expected name %q, got %q", i, w.name, got.Name)
		}
		if got.TriggerType != w.trigger {
			t.Errorf("%s: expected trigger %q, got %q", w.name, w.trigger, got.TriggerType)
		}
		if len(got.Nodes) != w.nodes {
			t.Errorf("%s: expected %d nodes, got %d", w.name, w.nodes, len(got.Nodes))
		}
		if (len(got.Connections) > 0) != w.branchy {
			t.Errorf("%s: declared connections = %v, want %v", w.name, len(got.Connections) > 0, w.branchy)
		}
		if len(got.SetupInstructions) == 0 {
			t.Errorf("%s: no setup instructions", w.name)
		}
	}
}

func TestDefault_FlagshipIsEnterpriseLead(t *testing.T) {
	c := MustDefault()
	f := c.Flagship()
	if f == nil {
		t.Fatal("expected a flagship template")
	}
	if f.Name != "Enterprise Lead Processing Workflow" {
		t.Errorf("unexpected flagship %q", f.Name)
	}
}

func TestDefault_ConnectionsReferenceOwnNodes(t *testing.T) {
	for _, tmpl := range MustDefault().Templates() {
		names := make(map[string]bool)
		for _, n := range tmpl.Nodes {
			names[n.Name] = true
		}
		for src, outputs := range tmpl.Connections {
			if !names[src] {
				t.Errorf("%s: source %q not in nodes", tmpl.Name, src)
			}
			for _, group := range outputs {
				for _, dst := range group {
					if !names[dst] {
						t.Errorf("%s: target %q not in nodes", tmpl.Name, dst)
					}
				}
			}
		}
	}
}

func TestDefault_NodeDefaults(t *testing.T) {
	for _, tmpl := range MustDefault().Templates() {
		for _, n := range tmpl.Nodes {
			if n.TypeVersion != 1 {
				t.Errorf("%s/%s: expected typeVersion 1, got %d", tmpl.Name, n.Name, n.TypeVersion)
			}
			if !strings.HasPrefix(n.Type, "n8n-nodes-base.") {
				t.Errorf("%s/%s: unexpected type %q", tmpl.Name, n.Name, n.Type)
			}
			if n.Parameters == nil {
				t.Errorf("%s/%s: nil parameters", tmpl.Name, n.Name)
			}
		}
		for _, kw := range tmpl.Keywords {
			if kw != strings.ToLower(kw) {
				t.Errorf("%s: keyword %q not lowercase", tmpl.Name, kw)
			}
		}
	}
}

func TestDefault_ParametersDecodeNested(t *testing.T) {
	tmpl, ok := MustDefault().Lookup("Scheduled Data Backup")
	if !ok {
		t.Fatal("Scheduled Data Backup not found")
	}
	exprs := cronExpressions(tmpl.Nodes[0].Parameters)
	if len(exprs) != 1 || exprs[0] != "0 2 * * *" {
		t.Errorf("expected nightly cron expression, got %v", exprs)
	}
	if tmpl.Nodes[0].Position != [2]int{240, 300} {
		t.Errorf("unexpected trigger position %v", tmpl.Nodes[0].Position)
	}
}

func TestLookup_Missing(t *testing.T) {
	if _, ok := MustDefault().Lookup("No Such Template"); ok {
		t.Error("expected lookup miss")
	}
}

func TestLoad_OrdersByFileName(t *testing.T) {
	fsys := fstest.MapFS{
		"20-second.yaml": {Data: []byte(minimalTemplate("Second"))},
		"10-first.yaml":  {Data: []byte(minimalTemplate("First"))},
		"README.md":      {Data: []byte("ignored")},
	}
	c, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := c.Templates()
	if len(got) != 2 || got[0].Name != "First" || got[1].Name != "Second" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	fsys := fstest.MapFS{"bad.yaml": {Data: []byte("name: [unterminated")}}
	if _, err := Load(fsys); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	base := func() Template {
		return Template{
			Name:        "T",
			TriggerType: TriggerWebhook,
			Keywords:    []string{"kw"},
			Nodes: []NodeSpec{
				{Name: "A", Type: "n8n-nodes-base.webhook"},
				{Name: "B", Type: "n8n-nodes-base.set"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Template)
		problem string
	}{
		{"valid", func(*Template) {}, ""},
		{"duplicate node", func(t *Template) { t.Nodes[1].Name = "A" }, `duplicate node name "A"`},
		{"missing target", func(t *Template) { t.Connections = Connections{"A": {{"C"}}} }, `"A" -> "C" targets a missing node`},
		{"missing source", func(t *Template) { t.Connections = Connections{"Z": {{"B"}}} }, `source "Z" is not a node`},
		{"connections over empty nodes", func(t *Template) {
			t.Nodes = nil
			t.Connections = Connections{"A": {{"B"}}}
		}, "connections declared over an empty node list"},
		{"bad cron", func(t *Template) {
			t.Nodes[0].Parameters = map[string]any{
				"rule": map[string]any{"interval": []any{map[string]any{"field": "cronExpression", "expression": "every day"}}},
			}
		}, "invalid cron expression"},
		{"missing trigger", func(t *Template) { t.TriggerType = "" }, "missing trigger type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := base()
			tt.mutate(&tmpl)
			err := Validate([]Template{tmpl})
			if tt.problem == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.problem)
			}
			if !errors.Is(err, ErrIntegrity) {
				t.Errorf("expected errors.Is(err, ErrIntegrity)")
			}
			var ie *IntegrityError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *IntegrityError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.problem) {
				t.Errorf("expected %q in %q", tt.problem, err.Error())
			}
		})
	}
}

func TestValidate_DuplicateTemplateNames(t *testing.T) {
	tmpl := Template{Name: "Same", TriggerType: TriggerWebhook, Keywords: []string{"x"}, Nodes: []NodeSpec{{Name: "A", Type: "t"}}}
	err := Validate([]Template{tmpl, tmpl})
	if err == nil || !strings.Contains(err.Error(), "duplicate template name") {
		t.Fatalf("expected duplicate template error, got %v", err)
	}
}

func TestReferenceData(t *testing.T) {
	examples := Examples()
	if len(examples) != 10 {
		t.Fatalf("expected 10 examples, got %d", len(examples))
	}
	examples[0] = "mutated"
	if Examples()[0] == "mutated" {
		t.Error("Examples must return a copy")
	}

	types := NodeTypes()
	if len(types) != 10 {
		t.Fatalf("expected 10 node types, got %d", len(types))
	}
	if types[0].Name != "Webhook Trigger" || types[0].Category != "Trigger" {
		t.Errorf("unexpected first node type %+v", types[0])
	}
	if types[9].Type != "n8n-nodes-base.airtable" {
		t.Errorf("unexpected last node type %+v", types[9])
	}
}

func minimalTemplate(name string) string {
	return `name: ` + name + `
description: test
triggerType: Webhook
estimatedSetupTime: 1 minute
keywords: [Test]
nodes:
  - name: Webhook
    type: n8n-nodes-base.webhook
    position: [240, 300]
setupInstructions: [do it]
`
}

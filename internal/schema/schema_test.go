package schema

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "schema.yaml", `
variables:
  DATABASE_URL:
    required: true
    type: url
    description: primary database
  PORT:
    type: number
    example: "3000"
ignore_patterns:
  - "^CI_"
rules:
  - name: no-tabs
    description: values must not contain tabs
    pattern: "^[^\t]*$"
    severity: warning
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(s.Variables))
	}
	if !s.Variables["DATABASE_URL"].Required || s.Variables["DATABASE_URL"].Type != "url" {
		t.Errorf("DATABASE_URL descriptor wrong: %+v", s.Variables["DATABASE_URL"])
	}
	if s.RequiredCount() != 1 {
		t.Errorf("RequiredCount = %d, want 1", s.RequiredCount())
	}
	if len(s.Rules) != 1 || s.Rules[0].Name != "no-tabs" {
		t.Errorf("rules not loaded: %+v", s.Rules)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "schema.json", `{
  "variables": {
    "API_KEY": {"required": true, "pattern": "^sk-"}
  }
}`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Variables["API_KEY"].Pattern != "^sk-" {
		t.Errorf("pattern not loaded: %+v", s.Variables["API_KEY"])
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "schema.toml", `
[variables.LOG_LEVEL]
required = true
type = "string"
example = "info"
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !s.Variables["LOG_LEVEL"].Required {
		t.Errorf("LOG_LEVEL descriptor wrong: %+v", s.Variables["LOG_LEVEL"])
	}
}

func TestLoadRejectsUnknownType(t *testing.T) {
	path := writeFile(t, "schema.yaml", `
variables:
  PORT:
    type: integer
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown variable type")
	}
}

func TestLoadRejectsBadRuleSeverity(t *testing.T) {
	path := writeFile(t, "schema.yaml", `
variables:
  A: {}
rules:
  - name: broken
    severity: fatal
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown rule severity")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing schema file")
	}
}

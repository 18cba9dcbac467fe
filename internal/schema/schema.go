// Package schema defines the declarative description of expected environment
// variables and the validator that checks a parsed file against it.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jenian/envcheck/internal/finding"
)

// VarSchema describes one expected variable.
type VarSchema struct {
	Required    bool     `yaml:"required" json:"required" toml:"required"`
	Type        string   `yaml:"type,omitempty" json:"type,omitempty" toml:"type,omitempty" validate:"omitempty,oneof=string number boolean url email json"`
	Pattern     string   `yaml:"pattern,omitempty" json:"pattern,omitempty" toml:"pattern,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty" toml:"description,omitempty"`
	Example     string   `yaml:"example,omitempty" json:"example,omitempty" toml:"example,omitempty"`
	AllowEmpty  bool     `yaml:"allow_empty,omitempty" json:"allowEmpty,omitempty" toml:"allow_empty,omitempty"`
	Deprecated  bool     `yaml:"deprecated,omitempty" json:"deprecated,omitempty" toml:"deprecated,omitempty"`
	ReplacedBy  []string `yaml:"replaced_by,omitempty" json:"replacedBy,omitempty" toml:"replaced_by,omitempty"`

	re *regexp.Regexp // compiled lazily from Pattern
}

// pattern returns the compiled regex for Pattern, caching the result.
func (vs *VarSchema) pattern() (*regexp.Regexp, error) {
	if vs.re != nil || vs.Pattern == "" {
		return vs.re, nil
	}
	re, err := regexp.Compile(vs.Pattern)
	if err != nil {
		return nil, err
	}
	vs.re = re
	return re, nil
}

// Predicate decides whether a candidate value is acceptable. Implementations
// may be compiled pattern matchers or callbacks injected by the host
// application.
type Predicate interface {
	Check(value string) bool
}

// PredicateFunc adapts a plain function to the Predicate interface.
type PredicateFunc func(value string) bool

func (f PredicateFunc) Check(value string) bool { return f(value) }

// Rule is a schema-level custom rule. A rule may declare a regex pattern, an
// injected predicate, or both; each failing condition fires independently.
type Rule struct {
	Name        string           `yaml:"name" json:"name" toml:"name" validate:"required"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty" toml:"description,omitempty"`
	Pattern     string           `yaml:"pattern,omitempty" json:"pattern,omitempty" toml:"pattern,omitempty"`
	Severity    finding.Severity `yaml:"severity" json:"severity" toml:"severity" validate:"required,oneof=error warning info"`
	Suggestion  string           `yaml:"suggestion,omitempty" json:"suggestion,omitempty" toml:"suggestion,omitempty"`
	Check       Predicate        `yaml:"-" json:"-" toml:"-"`

	re *regexp.Regexp
}

// Schema is the full expected-variable contract. Read-only after Load.
type Schema struct {
	Variables      map[string]*VarSchema `yaml:"variables" json:"variables" toml:"variables" validate:"dive"`
	Rules          []*Rule               `yaml:"rules,omitempty" json:"rules,omitempty" toml:"rules,omitempty" validate:"dive"`
	IgnorePatterns []string              `yaml:"ignore_patterns,omitempty" json:"ignorePatterns,omitempty" toml:"ignore_patterns,omitempty"`
}

// RequiredCount returns how many variables the schema marks required.
func (s *Schema) RequiredCount() int {
	n := 0
	for _, vs := range s.Variables {
		if vs.Required {
			n++
		}
	}
	return n
}

var check = validator.New()

// Load reads a schema document from disk, choosing the decoder by file
// extension (.json, .toml, else YAML), and validates the descriptors. Any
// failure is a configuration error, not a finding.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}

	var s Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &s)
	case ".toml":
		err = toml.Unmarshal(data, &s)
	default:
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}

	if err := check.Struct(&s); err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}
	return &s, nil
}

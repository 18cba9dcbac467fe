package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jenian/envcheck/internal/envfile"
	"github.com/jenian/envcheck/internal/finding"
)

// Validator checks parsed variables against one schema. Construct once per
// schema; safe for concurrent use after construction.
type Validator struct {
	schema *Schema
	ignore []*regexp.Regexp
}

// NewValidator compiles the schema's patterns, ignore patterns and custom
// rules up front. A pattern that fails to compile is a configuration error.
func NewValidator(s *Schema) (*Validator, error) {
	v := &Validator{schema: s}

	for _, p := range s.IgnorePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		v.ignore = append(v.ignore, re)
	}
	for key, vs := range s.Variables {
		if _, err := vs.pattern(); err != nil {
			return nil, fmt.Errorf("invalid pattern for %s: %w", key, err)
		}
	}
	for _, r := range s.Rules {
		if r.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for rule %s: %w", r.Name, err)
		}
		r.re = re
	}

	return v, nil
}

func (v *Validator) ignored(key string) bool {
	for _, re := range v.ignore {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// Validate runs the schema checks in a fixed order so output is
// deterministic: required variables, unused variables, per-variable checks,
// then custom rules.
func (v *Validator) Validate(vars []envfile.Variable) *finding.Result {
	result := finding.NewResult()
	index := indexVars(vars)

	v.checkRequired(index, result)
	v.checkUnused(vars, result)
	v.checkVariables(vars, index, result)
	v.checkRules(vars, index, result)

	result.Summary = finding.Summary{
		TotalVariables:    len(index),
		RequiredVariables: v.schema.RequiredCount(),
		MissingVariables:  result.CountErrors(finding.TypeMissingRequired),
		UnusedVariables:   result.CountWarnings(finding.TypeUnusedVariable),
		SecurityIssues:    result.CountAll(finding.TypeSecurityRisk),
	}
	return result
}

func (v *Validator) checkRequired(index map[string]envfile.Variable, result *finding.Result) {
	keys := make([]string, 0, len(v.schema.Variables))
	for key := range v.schema.Variables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vs := v.schema.Variables[key]
		if !vs.Required {
			continue
		}
		if _, ok := index[key]; ok {
			continue
		}
		result.Add(finding.SeverityError, finding.Finding{
			Type:       finding.TypeMissingRequired,
			Key:        key,
			Message:    fmt.Sprintf("required variable %s is missing", key),
			Suggestion: reconstructAssignment(key, vs),
		})
	}
}

func (v *Validator) checkUnused(vars []envfile.Variable, result *finding.Result) {
	seen := make(map[string]bool)
	for _, observed := range vars {
		if seen[observed.Key] {
			continue
		}
		seen[observed.Key] = true

		if _, ok := v.schema.Variables[observed.Key]; ok {
			continue
		}
		if v.ignored(observed.Key) {
			continue
		}
		result.Add(finding.SeverityWarning, finding.Finding{
			Type:    finding.TypeUnusedVariable,
			Key:     observed.Key,
			Message: fmt.Sprintf("variable %s is not declared in the schema", observed.Key),
			Line:    observed.Line,
		})
	}
}

func (v *Validator) checkVariables(vars []envfile.Variable, index map[string]envfile.Variable, result *finding.Result) {
	for _, observed := range vars {
		if index[observed.Key] != observed {
			continue // earlier occurrence of a duplicate key
		}
		vs, ok := v.schema.Variables[observed.Key]
		if !ok {
			continue
		}

		if vs.Deprecated {
			suggestion := ""
			if len(vs.ReplacedBy) > 0 {
				suggestion = "use " + strings.Join(vs.ReplacedBy, " or ") + " instead"
			}
			result.Add(finding.SeverityWarning, finding.Finding{
				Type:       finding.TypeDeprecated,
				Key:        observed.Key,
				Message:    fmt.Sprintf("variable %s is deprecated", observed.Key),
				Line:       observed.Line,
				Suggestion: suggestion,
			})
		}

		value := strings.TrimSpace(observed.Value)
		if value == "" {
			if !vs.AllowEmpty {
				result.Add(finding.SeverityError, finding.Finding{
					Type:    finding.TypeInvalidFormat,
					Key:     observed.Key,
					Message: fmt.Sprintf("variable %s must not be empty", observed.Key),
					Line:    observed.Line,
				})
			}
			// Type and pattern checks are meaningless on an empty value.
			continue
		}

		if vs.Type != "" {
			if msg := checkType(vs.Type, value); msg != "" {
				result.Add(finding.SeverityError, finding.Finding{
					Type:       finding.TypeInvalidFormat,
					Key:        observed.Key,
					Message:    fmt.Sprintf("variable %s %s", observed.Key, msg),
					Line:       observed.Line,
					Suggestion: vs.Example,
				})
			}
		}

		if re, _ := vs.pattern(); re != nil && !re.MatchString(value) {
			result.Add(finding.SeverityError, finding.Finding{
				Type:       finding.TypeInvalidFormat,
				Key:        observed.Key,
				Message:    fmt.Sprintf("variable %s does not match pattern %s", observed.Key, vs.Pattern),
				Line:       observed.Line,
				Suggestion: vs.Example,
			})
		}
	}
}

func (v *Validator) checkRules(vars []envfile.Variable, index map[string]envfile.Variable, result *finding.Result) {
	for _, rule := range v.schema.Rules {
		message := rule.Description
		if message == "" {
			message = fmt.Sprintf("value rejected by rule %s", rule.Name)
		}

		for _, observed := range vars {
			if index[observed.Key] != observed {
				continue
			}
			// Pattern and predicate are independent conditions; both may
			// fire for the same variable.
			if rule.re != nil && !rule.re.MatchString(observed.Value) {
				result.Add(rule.Severity, finding.Finding{
					Type:       finding.TypeCustom,
					Key:        observed.Key,
					Message:    message,
					Line:       observed.Line,
					Suggestion: rule.Suggestion,
				})
			}
			if rule.Check != nil && !rule.Check.Check(observed.Value) {
				result.Add(rule.Severity, finding.Finding{
					Type:       finding.TypeCustom,
					Key:        observed.Key,
					Message:    message,
					Line:       observed.Line,
					Suggestion: rule.Suggestion,
				})
			}
		}
	}
}

// checkType returns a non-empty problem description when value does not
// satisfy the declared type.
func checkType(typ, value string) string {
	switch typ {
	case "number":
		if !envfile.LooksLikeNumber(value) {
			return "must be a number"
		}
	case "boolean":
		if !envfile.LooksLikeBool(value) {
			return "must be a boolean (true/false/1/0/yes/no)"
		}
	case "url":
		if !envfile.LooksLikeURL(value) {
			return "must be a valid URL"
		}
	case "email":
		if !envfile.LooksLikeEmail(value) {
			return "must be a valid email address"
		}
	case "json":
		if !json.Valid([]byte(value)) {
			return "must be valid JSON"
		}
	}
	return ""
}

// GenerateExample renders a starter example file from the schema: one line
// per declared variable in key order, example values or placeholders,
// descriptions as inline comments.
func GenerateExample(s *Schema) string {
	keys := make([]string, 0, len(s.Variables))
	for key := range s.Variables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	vars := make([]envfile.Variable, 0, len(keys))
	for _, key := range keys {
		vs := s.Variables[key]
		value := vs.Example
		if value == "" {
			value = "<" + strings.ToLower(key) + ">"
		}
		vars = append(vars, envfile.Variable{Key: key, Value: value, Comment: vs.Description})
	}
	return envfile.Stringify(vars) + "\n"
}

// reconstructAssignment builds the suggestion line for a missing variable:
// the example value or a placeholder, annotated with the description.
func reconstructAssignment(key string, vs *VarSchema) string {
	value := vs.Example
	if value == "" {
		value = "<" + strings.ToLower(key) + ">"
	}
	line := key + "=" + value
	if vs.Description != "" {
		line += " # " + vs.Description
	}
	return line
}

func indexVars(vars []envfile.Variable) map[string]envfile.Variable {
	idx := make(map[string]envfile.Variable, len(vars))
	for _, v := range vars {
		idx[v.Key] = v
	}
	return idx
}

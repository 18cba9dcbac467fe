// Package example validates an environment file against a reference example
// file by set comparison. The example format has no required/optional
// distinction: presence in the reference is the expectation.
package example

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jenian/envcheck/internal/envfile"
	"github.com/jenian/envcheck/internal/finding"
)

// Validator compares observed variables with a parsed reference file.
type Validator struct {
	ref      []envfile.Variable
	refIndex map[string]envfile.Variable
	ignore   []*regexp.Regexp
}

// NewValidator builds a validator from a parsed reference file and a list of
// key-ignore regex patterns.
func NewValidator(ref *envfile.File, ignorePatterns []string) (*Validator, error) {
	v := &Validator{
		ref:      ref.Variables,
		refIndex: ref.Index(),
	}
	for _, p := range ignorePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		v.ignore = append(v.ignore, re)
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

// Validate runs the example checks in a fixed order: missing, unused,
// empty-vs-populated, format mismatch, placeholder notes.
func (v *Validator) Validate(vars []envfile.Variable) *finding.Result {
	result := finding.NewResult()
	index := indexVars(vars)

	v.checkMissing(index, result)
	v.checkUnused(vars, result)
	v.checkEmpty(vars, index, result)
	v.checkShapes(vars, index, result)
	v.notePlaceholders(vars, index, result)

	result.Summary = finding.Summary{
		TotalVariables:    len(index),
		RequiredVariables: len(v.refIndex),
		MissingVariables:  result.CountErrors(finding.TypeMissingRequired),
		UnusedVariables:   result.CountWarnings(finding.TypeUnusedVariable),
	}
	return result
}

func (v *Validator) checkMissing(index map[string]envfile.Variable, result *finding.Result) {
	seen := make(map[string]bool)
	for _, rv := range v.ref {
		if seen[rv.Key] {
			continue
		}
		seen[rv.Key] = true

		if _, ok := index[rv.Key]; ok || v.ignored(rv.Key) {
			continue
		}
		result.Add(finding.SeverityError, finding.Finding{
			Type:       finding.TypeMissingRequired,
			Key:        rv.Key,
			Message:    fmt.Sprintf("variable %s from the example file is missing", rv.Key),
			Suggestion: envfile.Stringify([]envfile.Variable{rv}),
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

		if _, ok := v.refIndex[observed.Key]; ok || v.ignored(observed.Key) {
			continue
		}
		result.Add(finding.SeverityWarning, finding.Finding{
			Type:    finding.TypeUnusedVariable,
			Key:     observed.Key,
			Message: fmt.Sprintf("variable %s is not present in the example file", observed.Key),
			Line:    observed.Line,
		})
	}
}

func (v *Validator) checkEmpty(vars []envfile.Variable, index map[string]envfile.Variable, result *finding.Result) {
	for _, observed := range vars {
		if index[observed.Key] != observed {
			continue
		}
		rv, ok := v.refIndex[observed.Key]
		if !ok {
			continue
		}
		if strings.TrimSpace(observed.Value) != "" {
			continue
		}
		if rv.Value == "" || envfile.IsPlaceholder(rv.Value) {
			continue
		}
		result.Add(finding.SeverityWarning, finding.Finding{
			Type:       finding.TypeInvalidFormat,
			Key:        observed.Key,
			Message:    fmt.Sprintf("variable %s is empty but the example provides a value", observed.Key),
			Line:       observed.Line,
			Suggestion: rv.Value,
		})
	}
}

// shapeCheck pairs a shape name with its detector. The slice order is the
// tie-break: the first shape the reference value has and the observed value
// lacks produces the single mismatch warning.
var shapeChecks = []struct {
	name    string
	matches func(string) bool
}{
	{"URL", envfile.LooksLikeURL},
	{"number", envfile.LooksLikeNumber},
	{"boolean", envfile.LooksLikeBool},
	{"email address", envfile.LooksLikeEmail},
}

func (v *Validator) checkShapes(vars []envfile.Variable, index map[string]envfile.Variable, result *finding.Result) {
	for _, observed := range vars {
		if index[observed.Key] != observed {
			continue
		}
		rv, ok := v.refIndex[observed.Key]
		if !ok {
			continue
		}
		if strings.TrimSpace(observed.Value) == "" || envfile.IsPlaceholder(rv.Value) {
			continue
		}

		for _, check := range shapeChecks {
			if !check.matches(rv.Value) {
				continue
			}
			if check.matches(observed.Value) {
				continue
			}
			result.Add(finding.SeverityWarning, finding.Finding{
				Type:    finding.TypeWeakPattern,
				Key:     observed.Key,
				Message: fmt.Sprintf("variable %s does not look like a %s, but the example value does", observed.Key, check.name),
				Line:    observed.Line,
			})
			break
		}
	}
}

func (v *Validator) notePlaceholders(vars []envfile.Variable, index map[string]envfile.Variable, result *finding.Result) {
	for _, observed := range vars {
		if index[observed.Key] != observed {
			continue
		}
		rv, ok := v.refIndex[observed.Key]
		if !ok || !envfile.IsPlaceholder(rv.Value) {
			continue
		}
		result.Add(finding.SeverityInfo, finding.Finding{
			Type:    finding.TypeWeakPattern,
			Key:     observed.Key,
			Message: fmt.Sprintf("example value for %s is a placeholder; no shape could be inferred", observed.Key),
			Line:    observed.Line,
		})
	}
}

func indexVars(vars []envfile.Variable) map[string]envfile.Variable {
	idx := make(map[string]envfile.Variable, len(vars))
	for _, v := range vars {
		idx[v.Key] = v
	}
	return idx
}

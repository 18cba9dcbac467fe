// Package finding defines the result types shared by all validators:
// severity-tagged findings, the per-run summary, and the merged result
// consumed by the output formatters.
package finding

import "time"

// Severity classifies how a finding affects the overall run.
type Severity string

const (
	SeverityError   Severity = "error"   // blocks validity
	SeverityWarning Severity = "warning" // blocks only in strict mode
	SeverityInfo    Severity = "info"    // advisory
)

// Type tags the kind of problem a finding reports.
type Type string

const (
	TypeMissingRequired Type = "missing_required"
	TypeInvalidFormat   Type = "invalid_format"
	TypeSecurityRisk    Type = "security_risk"
	TypeUnusedVariable  Type = "unused_variable"
	TypeWeakPattern     Type = "weak_pattern"
	TypeDeprecated      Type = "deprecated"
	TypeParseError      Type = "parse_error"
	TypeCustom          Type = "custom"
)

// Finding is one reported problem. Findings are never mutated after creation.
type Finding struct {
	Type       Type   `json:"type"`
	Key        string `json:"variable,omitempty"` // empty for file-level findings
	Message    string `json:"message"`
	Line       int    `json:"line,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Summary holds the aggregate counts for one validation run.
type Summary struct {
	TotalVariables    int           `json:"totalVariables"`
	RequiredVariables int           `json:"requiredVariables"`
	MissingVariables  int           `json:"missingVariables"`
	UnusedVariables   int           `json:"unusedVariables"`
	SecurityIssues    int           `json:"securityIssues"`
	Duration          time.Duration `json:"duration"`
}

// Result is the outcome of a validation pass. IsValid is true iff the error
// list is empty; warnings only fail a run under the caller's strict policy.
type Result struct {
	IsValid  bool      `json:"isValid"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
	Info     []Finding `json:"info"`
	Summary  Summary   `json:"summary"`
}

// NewResult returns an empty, valid result.
func NewResult() *Result {
	return &Result{
		IsValid:  true,
		Errors:   []Finding{},
		Warnings: []Finding{},
		Info:     []Finding{},
	}
}

// Add appends a finding to the list matching its severity and keeps IsValid
// consistent with the error list.
func (r *Result) Add(sev Severity, f Finding) {
	switch sev {
	case SeverityError:
		r.Errors = append(r.Errors, f)
		r.IsValid = false
	case SeverityWarning:
		r.Warnings = append(r.Warnings, f)
	default:
		r.Info = append(r.Info, f)
	}
}

// OK reports whether the run passed under the given strictness. In strict
// mode a non-empty warning list fails the run even though IsValid is true.
func (r *Result) OK(strict bool) bool {
	if !r.IsValid {
		return false
	}
	if strict && len(r.Warnings) > 0 {
		return false
	}
	return true
}

// CountErrors returns how many errors carry the given type tag.
func (r *Result) CountErrors(t Type) int {
	n := 0
	for _, f := range r.Errors {
		if f.Type == t {
			n++
		}
	}
	return n
}

// CountWarnings returns how many warnings carry the given type tag.
func (r *Result) CountWarnings(t Type) int {
	n := 0
	for _, f := range r.Warnings {
		if f.Type == t {
			n++
		}
	}
	return n
}

// CountAll returns how many findings across all three lists carry the given
// type tag.
func (r *Result) CountAll(t Type) int {
	n := r.CountErrors(t) + r.CountWarnings(t)
	for _, f := range r.Info {
		if f.Type == t {
			n++
		}
	}
	return n
}

// Merge concatenates the finding lists of several results into a fresh one.
// The merged result is valid only if every input was valid. Summaries are not
// merged; the orchestrator recomputes them from the merged lists.
func Merge(results ...*Result) *Result {
	merged := NewResult()
	for _, r := range results {
		if r == nil {
			continue
		}
		merged.Errors = append(merged.Errors, r.Errors...)
		merged.Warnings = append(merged.Warnings, r.Warnings...)
		merged.Info = append(merged.Info, r.Info...)
		if !r.IsValid {
			merged.IsValid = false
		}
	}
	return merged
}

// Dedupe collapses findings with identical type, variable and message within
// each list, keeping the first occurrence. Used when schema and example
// validation run together and report the same problem twice.
func (r *Result) Dedupe() {
	r.Errors = dedupe(r.Errors)
	r.Warnings = dedupe(r.Warnings)
	r.Info = dedupe(r.Info)
	r.IsValid = len(r.Errors) == 0
}

func dedupe(findings []Finding) []Finding {
	seen := make(map[string]bool, len(findings))
	out := findings[:0]
	for _, f := range findings {
		id := string(f.Type) + "\x00" + f.Key + "\x00" + f.Message
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, f)
	}
	return out
}

// Package validate wires the parser, the schema and example validators and
// the security analyzer into one run and merges their findings.
package validate

import (
	"fmt"
	"time"

	"github.com/jenian/envcheck/internal/envfile"
	"github.com/jenian/envcheck/internal/example"
	"github.com/jenian/envcheck/internal/finding"
	"github.com/jenian/envcheck/internal/schema"
	"github.com/jenian/envcheck/internal/security"
)

// Options selects which validation strategies run. SchemaPath and ExamplePath
// are both optional and may be combined; security analysis runs unless
// explicitly skipped.
type Options struct {
	SchemaPath   string
	ExamplePath  string
	Strict       bool
	Ignore       []string        // key regexes exempt from unused reporting
	Rules        []security.Rule // appended to the built-in security rules
	SkipSecurity bool
	NoUnused     bool // drop unused-variable warnings entirely
}

// Runner holds the validators built from one set of options. Construct once,
// then validate any number of files.
type Runner struct {
	opts      Options
	schemaVal *schema.Validator
	schemaDoc *schema.Schema
	exVal     *example.Validator
	exCount   int
	analyzer  *security.Analyzer
}

// NewRunner loads the schema and the reference example named in the options.
// A missing or unparseable schema or example file is a hard error, not a
// finding; the caller asked for a comparison that cannot happen.
func NewRunner(opts Options) (*Runner, error) {
	r := &Runner{opts: opts}

	if opts.SchemaPath != "" {
		doc, err := schema.Load(opts.SchemaPath)
		if err != nil {
			return nil, err
		}
		doc.IgnorePatterns = append(doc.IgnorePatterns, opts.Ignore...)
		val, err := schema.NewValidator(doc)
		if err != nil {
			return nil, err
		}
		r.schemaDoc = doc
		r.schemaVal = val
	}

	if opts.ExamplePath != "" {
		ref, err := envfile.LoadAny(opts.ExamplePath)
		if err != nil {
			return nil, err
		}
		if len(ref.Errors) > 0 {
			return nil, fmt.Errorf("reference file %s has %d parse errors, fix it first", opts.ExamplePath, len(ref.Errors))
		}
		val, err := example.NewValidator(ref, opts.Ignore)
		if err != nil {
			return nil, err
		}
		r.exVal = val
		r.exCount = len(ref.Index())
	}

	if !opts.SkipSecurity {
		r.analyzer = security.NewAnalyzer(opts.Rules...)
	}

	return r, nil
}

// Run loads and validates the file at path.
func (r *Runner) Run(path string) (*finding.Result, error) {
	file, err := envfile.LoadAny(path)
	if err != nil {
		return nil, err
	}
	return r.Validate(file), nil
}

// Validate runs every configured strategy over an already parsed file. Parse
// errors in the target short-circuit the run: comparing a half-parsed file
// against a schema would only bury the real problem under bogus findings.
func (r *Runner) Validate(file *envfile.File) *finding.Result {
	start := time.Now()

	if len(file.Errors) > 0 {
		result := finding.NewResult()
		for _, pe := range file.Errors {
			result.Add(finding.SeverityError, finding.Finding{
				Type:    finding.TypeParseError,
				Message: pe.Message,
				Line:    pe.Line,
			})
		}
		result.Summary.TotalVariables = len(file.Index())
		result.Summary.Duration = time.Since(start)
		return result
	}

	var results []*finding.Result
	if r.schemaVal != nil {
		results = append(results, r.schemaVal.Validate(file.Variables))
	}
	if r.exVal != nil {
		results = append(results, r.exVal.Validate(file.Variables))
	}
	if r.analyzer != nil {
		results = append(results, r.analyzer.Analyze(file.Variables))
	}

	merged := finding.Merge(results...)
	if r.schemaVal != nil && r.exVal != nil {
		// Schema and example validation overlap on missing and unused
		// variables; identical findings collapse to one. A rule firing twice
		// with distinct messages survives.
		merged.Dedupe()
	}

	if r.opts.NoUnused {
		kept := merged.Warnings[:0]
		for _, f := range merged.Warnings {
			if f.Type != finding.TypeUnusedVariable {
				kept = append(kept, f)
			}
		}
		merged.Warnings = kept
	}

	merged.Summary = r.summarize(file, merged)
	merged.Summary.Duration = time.Since(start)
	return merged
}

func (r *Runner) summarize(file *envfile.File, result *finding.Result) finding.Summary {
	s := finding.Summary{
		TotalVariables:   len(file.Index()),
		MissingVariables: result.CountErrors(finding.TypeMissingRequired),
		UnusedVariables:  result.CountWarnings(finding.TypeUnusedVariable),
		SecurityIssues:   result.CountAll(finding.TypeSecurityRisk),
	}
	switch {
	case r.schemaDoc != nil:
		s.RequiredVariables = r.schemaDoc.RequiredCount()
	case r.exVal != nil:
		s.RequiredVariables = r.exCount
	}
	return s
}

package example

import (
	"strings"
	"testing"

	"github.com/jenian/envcheck/internal/envfile"
	"github.com/jenian/envcheck/internal/finding"
)

func mustValidator(t *testing.T, refContent string, ignore []string) *Validator {
	t.Helper()
	v, err := NewValidator(envfile.Parse(refContent), ignore)
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}
	return v
}

func TestUnusedCheck(t *testing.T) {
	v := mustValidator(t, "A=1\nB=2", nil)

	result := v.Validate(envfile.Parse("A=1\nB=2\nC=3").Variables)

	if len(result.Errors) != 0 {
		t.Fatalf("expected zero errors, got %v", result.Errors)
	}
	if got := result.CountWarnings(finding.TypeUnusedVariable); got != 1 {
		t.Fatalf("expected exactly 1 unused warning, got %d: %v", got, result.Warnings)
	}
	if result.Warnings[0].Key != "C" || result.Warnings[0].Line != 3 {
		t.Errorf("unexpected unused finding: %+v", result.Warnings[0])
	}
}

func TestMissingCheck(t *testing.T) {
	v := mustValidator(t, "DATABASE_URL=postgres://localhost/app # primary db\nPORT=3000", nil)

	result := v.Validate(envfile.Parse("PORT=3000").Variables)

	if result.IsValid {
		t.Error("missing reference variable should invalidate the result")
	}
	if got := result.CountErrors(finding.TypeMissingRequired); got != 1 {
		t.Fatalf("expected 1 missing error, got %d", got)
	}
	f := result.Errors[0]
	if f.Suggestion != "DATABASE_URL=postgres://localhost/app # primary db" {
		t.Errorf("suggestion should reconstruct the reference entry: %q", f.Suggestion)
	}
}

func TestIgnorePatterns(t *testing.T) {
	v := mustValidator(t, "A=1\nCI_REF=x", []string{"^CI_"})

	result := v.Validate(envfile.Parse("A=1\nCI_JOB=y").Variables)
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("ignored keys should produce no findings: %+v", result)
	}
}

func TestEmptyVersusPopulated(t *testing.T) {
	v := mustValidator(t, "NAME=alice\nTOKEN=<your-token>", nil)

	result := v.Validate(envfile.Parse("NAME=\nTOKEN=").Variables)

	warnings := 0
	for _, f := range result.Warnings {
		if f.Type == finding.TypeInvalidFormat {
			warnings++
			if f.Key != "NAME" || f.Suggestion != "alice" {
				t.Errorf("unexpected empty-value finding: %+v", f)
			}
		}
	}
	// TOKEN's reference value is a placeholder, so only NAME is flagged.
	if warnings != 1 {
		t.Errorf("expected 1 empty-value warning, got %d", warnings)
	}
}

func TestFormatMismatch(t *testing.T) {
	v := mustValidator(t, "API_URL=https://api.example.com\nPORT=3000\nDEBUG=true\nCONTACT=ops@example.com", nil)

	result := v.Validate(envfile.Parse(
		"API_URL=not a url\nPORT=eighty\nDEBUG=maybe\nCONTACT=nobody",
	).Variables)

	if got := result.CountWarnings(finding.TypeWeakPattern); got != 4 {
		t.Fatalf("expected 4 shape warnings, got %d: %v", got, result.Warnings)
	}
	byKey := map[string]string{}
	for _, f := range result.Warnings {
		if f.Type == finding.TypeWeakPattern {
			byKey[f.Key] = f.Message
		}
	}
	if !strings.Contains(byKey["API_URL"], "URL") {
		t.Errorf("API_URL message: %q", byKey["API_URL"])
	}
	if !strings.Contains(byKey["PORT"], "number") {
		t.Errorf("PORT message: %q", byKey["PORT"])
	}
}

func TestFormatMismatchOnlyFirstShapeReported(t *testing.T) {
	// The reference value "0" is both a number and a boolean; only the first
	// failing shape in the fixed order may be reported.
	v := mustValidator(t, "FLAG=0", nil)

	result := v.Validate(envfile.Parse("FLAG=off").Variables)
	if got := result.CountWarnings(finding.TypeWeakPattern); got != 1 {
		t.Fatalf("expected a single shape warning, got %d: %v", got, result.Warnings)
	}
	if !strings.Contains(result.Warnings[0].Message, "number") {
		t.Errorf("number is tried before boolean, got: %q", result.Warnings[0].Message)
	}
}

func TestFormatMismatchMatchingShapesSilent(t *testing.T) {
	v := mustValidator(t, "PORT=3000", nil)
	result := v.Validate(envfile.Parse("PORT=8080").Variables)
	if got := result.CountWarnings(finding.TypeWeakPattern); got != 0 {
		t.Errorf("matching shapes should not warn: %v", result.Warnings)
	}
}

func TestPlaceholderInfo(t *testing.T) {
	v := mustValidator(t, "API_KEY=<your-api-key>", nil)

	result := v.Validate(envfile.Parse("API_KEY=sk-live-abc").Variables)
	if len(result.Info) != 1 || result.Info[0].Key != "API_KEY" {
		t.Fatalf("expected one placeholder note, got %+v", result.Info)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("placeholder reference values must not produce shape warnings: %v", result.Warnings)
	}
}

func TestSummaryRequiredEqualsReferenceSize(t *testing.T) {
	v := mustValidator(t, "A=1\nB=2\nC=3", nil)
	result := v.Validate(envfile.Parse("A=1").Variables)
	if result.Summary.RequiredVariables != 3 {
		t.Errorf("requiredVariables should equal the reference set size, got %d", result.Summary.RequiredVariables)
	}
	if result.Summary.MissingVariables != 2 {
		t.Errorf("expected 2 missing, got %d", result.Summary.MissingVariables)
	}
}

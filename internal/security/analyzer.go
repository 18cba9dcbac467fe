package security

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jenian/envcheck/internal/envfile"
	"github.com/jenian/envcheck/internal/finding"
)

// Analyzer runs the security checks over parsed variables. It carries no
// mutable state between calls; analyzing the same input twice produces
// identical findings.
type Analyzer struct {
	rules []Rule
}

// NewAnalyzer appends custom rules to the built-in set. Duplicate names are
// not overrides; every rule in the list fires independently.
func NewAnalyzer(custom ...Rule) *Analyzer {
	return &Analyzer{rules: append(BuiltinRules(), custom...)}
}

// Key substrings that mark a variable as secret-bearing for the
// hardcoded-secret check.
var secretKeyWords = []string{
	"secret", "key", "token", "password", "pass", "pwd", "auth", "credential", "private",
}

// Narrower set used for the placeholder-in-sensitive-variable check.
var sensitiveKeyWords = []string{"secret", "key", "token", "password", "auth"}

var secretShapes = []struct {
	name string
	re   *regexp.Regexp
}{
	// hex is a subset of the base64 alphabet; test it first.
	{"hex", regexp.MustCompile(`^[a-fA-F0-9]{32,}$`)},
	{"base64", regexp.MustCompile(`^[A-Za-z0-9+/]{24,}={0,2}$`)},
	{"random token", regexp.MustCompile(`^[A-Za-z0-9_.\-]{32,}$`)},
}

var weakSecrets = map[string]bool{
	"secret": true, "password": true, "passw0rd": true, "admin": true,
	"123456": true, "12345678": true, "test": true, "changeme": true,
	"default": true, "letmein": true, "qwerty": true, "abc123": true,
	"password123": true, "root": true, "pass": true, "welcome": true,
}

var (
	devWordRe = regexp.MustCompile(`(?i)\b(dev|development|test|testing|staging|debug)\b`)
	ccRe      = regexp.MustCompile(`^\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4}$`)
	ssnRe     = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	ipv4Re    = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
)

// Analyze runs four independent checks per variable: the rule patterns, the
// hardcoded-secret heuristics, the weak-pattern heuristics and the
// sensitive-data shapes. All of them may fire for the same variable.
func (a *Analyzer) Analyze(vars []envfile.Variable) *finding.Result {
	result := finding.NewResult()

	for _, v := range vars {
		a.checkRules(v, result)
		a.checkHardcodedSecret(v, result)
		a.checkWeakPatterns(v, result)
		a.checkSensitiveData(v, result)
	}

	result.Summary.TotalVariables = len(vars)
	result.Summary.SecurityIssues = result.CountAll(finding.TypeSecurityRisk)
	return result
}

func (a *Analyzer) checkRules(v envfile.Variable, result *finding.Result) {
	line := v.Key + "=" + v.Value
	for _, rule := range a.rules {
		if !rule.Pattern.MatchString(line) {
			continue
		}
		result.Add(rule.Severity, finding.Finding{
			Type:       finding.TypeSecurityRisk,
			Key:        v.Key,
			Message:    rule.Description,
			Line:       v.Line,
			Suggestion: rule.Suggestion,
		})
	}
}

func (a *Analyzer) checkHardcodedSecret(v envfile.Variable, result *finding.Result) {
	if !containsAny(strings.ToLower(v.Key), secretKeyWords) || v.Value == "" {
		return
	}

	for _, shape := range secretShapes {
		if shape.re.MatchString(v.Value) {
			result.Add(finding.SeverityWarning, finding.Finding{
				Type:       finding.TypeSecurityRisk,
				Key:        v.Key,
				Message:    fmt.Sprintf("value of %s looks like a hardcoded %s secret", v.Key, shape.name),
				Line:       v.Line,
				Suggestion: "load secrets from the environment or a secret manager at runtime",
			})
			break
		}
	}

	// Weak or short secrets are an independent, harder failure; a long
	// base64 blob and a weak value can both be reported for one variable.
	if weakSecrets[strings.ToLower(v.Value)] || len(v.Value) < 8 {
		result.Add(finding.SeverityError, finding.Finding{
			Type:       finding.TypeSecurityRisk,
			Key:        v.Key,
			Message:    fmt.Sprintf("value of %s is a weak or default secret", v.Key),
			Line:       v.Line,
			Suggestion: "use a generated secret of at least 8 characters",
		})
	}
}

func (a *Analyzer) checkWeakPatterns(v envfile.Variable, result *finding.Result) {
	value := v.Value
	lower := strings.ToLower(value)

	if lower == "true" || lower == "false" {
		result.Add(finding.SeverityInfo, finding.Finding{
			Type:    finding.TypeWeakPattern,
			Key:     v.Key,
			Message: fmt.Sprintf("variable %s is a bare boolean flag", v.Key),
			Line:    v.Line,
		})
	} else if value != "" &&
		(strings.Contains(lower, "localhost") || strings.Contains(lower, "127.0.0.1") || devWordRe.MatchString(value)) {
		result.Add(finding.SeverityWarning, finding.Finding{
			Type:    finding.TypeWeakPattern,
			Key:     v.Key,
			Message: fmt.Sprintf("value of %s points at a development or test environment", v.Key),
			Line:    v.Line,
		})
	}

	if containsAny(strings.ToLower(v.Key), sensitiveKeyWords) && envfile.IsPlaceholder(value) {
		result.Add(finding.SeverityWarning, finding.Finding{
			Type:       finding.TypeWeakPattern,
			Key:        v.Key,
			Message:    fmt.Sprintf("sensitive variable %s still holds a placeholder value", v.Key),
			Line:       v.Line,
			Suggestion: "replace the placeholder with the real value before deploying",
		})
	}
}

func (a *Analyzer) checkSensitiveData(v envfile.Variable, result *finding.Result) {
	add := func(what string) {
		result.Add(finding.SeverityWarning, finding.Finding{
			Type:       finding.TypeSecurityRisk,
			Key:        v.Key,
			Message:    fmt.Sprintf("value of %s looks like %s", v.Key, what),
			Line:       v.Line,
			Suggestion: "avoid committing personal data to environment files",
		})
	}

	if ccRe.MatchString(v.Value) {
		add("a credit card number")
	}
	if ssnRe.MatchString(v.Value) {
		add("a social security number")
	}
	if envfile.LooksLikeEmail(v.Value) {
		add("an email address")
	}
	if ipv4Re.MatchString(v.Value) {
		add("an IP address")
	}

	if u, err := url.Parse(v.Value); err == nil && u.User != nil && u.User.String() != "" {
		result.Add(finding.SeverityWarning, finding.Finding{
			Type:       finding.TypeSecurityRisk,
			Key:        v.Key,
			Message:    fmt.Sprintf("URL in %s embeds credentials", v.Key),
			Line:       v.Line,
			Suggestion: "move the username and password out of the URL",
		})
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Package security screens variable values for secrets, weak credentials and
// sensitive data. Rules are regex matchers over the literal KEY=value line;
// the built-in set is always active and custom rules are appended to it, not
// merged by name, so a duplicate name fires twice.
package security

import (
	"fmt"
	"regexp"

	"github.com/jenian/envcheck/internal/finding"
)

// Rule matches a KEY=value line against one compiled pattern.
type Rule struct {
	Name        string
	Description string
	Pattern     *regexp.Regexp
	Severity    finding.Severity
	Suggestion  string
}

// RuleSpec is an uncompiled rule as it appears in configuration.
type RuleSpec struct {
	Name        string           `yaml:"name" json:"name" validate:"required"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	Pattern     string           `yaml:"pattern" json:"pattern" validate:"required"`
	Severity    finding.Severity `yaml:"severity" json:"severity" validate:"required,oneof=error warning info"`
	Suggestion  string           `yaml:"suggestion,omitempty" json:"suggestion,omitempty"`
}

// Compile turns a spec into a usable rule. A bad pattern is a configuration
// error.
func (rs RuleSpec) Compile() (Rule, error) {
	re, err := regexp.Compile(rs.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid pattern for security rule %s: %w", rs.Name, err)
	}
	return Rule{
		Name:        rs.Name,
		Description: rs.Description,
		Pattern:     re,
		Severity:    rs.Severity,
		Suggestion:  rs.Suggestion,
	}, nil
}

// builtinRules is the fixed rule set, compiled once at package load.
var builtinRules = []Rule{
	{
		Name:        "hardcoded-password",
		Description: "password variable is set to a common default password",
		Pattern:     regexp.MustCompile(`(?i)(password|passwd|pwd)[A-Za-z0-9_]*=['"]?(password|passw0rd|123456|12345678|admin|root|changeme|letmein|qwerty|welcome|secret)['"]?$`),
		Severity:    finding.SeverityError,
		Suggestion:  "generate a strong unique password and load it from a secret manager",
	},
	{
		Name:        "hardcoded-api-key",
		Description: "variable appears to contain a hardcoded API key",
		Pattern:     regexp.MustCompile(`(?i)(api[_-]?key|apikey)[A-Za-z0-9_]*=['"]?[A-Za-z0-9_\-]{20,}['"]?$`),
		Severity:    finding.SeverityWarning,
		Suggestion:  "inject API keys at deploy time instead of committing them",
	},
	{
		Name:        "hardcoded-secret",
		Description: "variable appears to contain a hardcoded secret",
		Pattern:     regexp.MustCompile(`(?i)secret[A-Za-z0-9_]*=['"]?[A-Za-z0-9+/=_\-]{16,}['"]?$`),
		Severity:    finding.SeverityWarning,
		Suggestion:  "store secrets in a vault and reference them indirectly",
	},
	{
		Name:        "weak-jwt-secret",
		Description: "JWT signing secret is a common guessable word",
		Pattern:     regexp.MustCompile(`(?i)jwt[_-]?secret[A-Za-z0-9_]*=['"]?(secret|jwt|token|key|test|dev|changeme|password)['"]?$`),
		Severity:    finding.SeverityError,
		Suggestion:  "use a random secret of at least 32 bytes for JWT signing",
	},
	{
		Name:        "default-database-credentials",
		Description: "database URL embeds default credentials",
		Pattern:     regexp.MustCompile(`(?i)[A-Za-z0-9_]*=\w+://(root|admin|postgres|mysql|mongo|sa)(:(root|admin|password|postgres|mysql|mongo|sa|123456)?)?@`),
		Severity:    finding.SeverityError,
		Suggestion:  "create a dedicated database user with a strong password",
	},
}

// BuiltinRules returns a copy of the fixed built-in rule list.
func BuiltinRules() []Rule {
	out := make([]Rule, len(builtinRules))
	copy(out, builtinRules)
	return out
}

// Package config loads the .envcheck.yaml project configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jenian/envcheck/internal/security"
)

// FileName is the configuration file looked up in the project root.
const FileName = ".envcheck.yaml"

// Config represents the envcheck configuration file. All fields are optional
// and can be overridden by command-line flags.
type Config struct {
	Schema   string              `yaml:"schema"`   // path to a schema document
	Example  string              `yaml:"example"`  // path to a reference env file
	Strict   bool                `yaml:"strict"`   // treat warnings as failures
	Ignore   []string            `yaml:"ignore"`   // key regexes exempt from unused reporting
	NoUnused bool                `yaml:"no_unused"`
	Rules    []security.RuleSpec `yaml:"rules"` // extra security rules
}

// Load reads the config file from the given directory. A missing file is not
// an error; defaults are returned. An unreadable or invalid file is.
func Load(rootPath string) (*Config, error) {
	path := filepath.Join(rootPath, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// SecurityRules compiles the configured extra rules. A malformed rule is a
// configuration error.
func (c *Config) SecurityRules() ([]security.Rule, error) {
	rules := make([]security.Rule, 0, len(c.Rules))
	for _, spec := range c.Rules {
		rule, err := spec.Compile()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// DefaultContent is the starter configuration written by init-config.
const DefaultContent = `# .envcheck.yaml
# Configuration for envcheck.

# Validate against a schema document, a reference example file, or both.
# schema: envcheck.schema.yaml
# example: .env.example

# Treat warnings as failures.
# strict: true

# Skip reporting unused variables.
# no_unused: true

# Key regexes exempt from unused-variable reporting.
# ignore:
#   - "^CI_"

# Extra security rules, appended to the built-in set.
# rules:
#   - name: no-internal-hosts
#     description: internal hostnames must not appear in env files
#     pattern: "\\.corp\\.example\\.com"
#     severity: warning
`

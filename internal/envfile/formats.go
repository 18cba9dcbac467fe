package envfile

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the on-disk representation of an environment file.
type Format string

const (
	FormatEnv     Format = "env"
	FormatEnvrc   Format = "envrc"
	FormatShell   Format = "shell"
	FormatSystemd Format = "systemd"
	FormatCompose Format = "docker-compose"
	FormatK8s     Format = "k8s"
)

// DetectFormat determines the file format from its name. Unknown names fall
// back to the standard .env format.
func DetectFormat(path string) Format {
	name := filepath.Base(path)

	switch {
	case name == ".envrc":
		return FormatEnvrc
	case strings.HasPrefix(name, ".env") || strings.HasSuffix(name, ".env"):
		return FormatEnv
	case name == "docker-compose.yml" || name == "docker-compose.yaml" ||
		strings.HasPrefix(name, "docker-compose."):
		return FormatCompose
	case strings.HasSuffix(name, ".service"):
		return FormatSystemd
	case strings.HasSuffix(name, ".sh") || strings.HasSuffix(name, ".bash"):
		return FormatShell
	}

	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		if strings.Contains(name, "configmap") || strings.Contains(name, "secret") {
			return FormatK8s
		}
	}

	return FormatEnv
}

// LoadAny reads a file and parses it with the parser matching its detected
// format. All formats produce the same File shape so every validator can
// consume them.
func LoadAny(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch DetectFormat(path) {
	case FormatEnvrc, FormatShell:
		return ParseExports(string(data)), nil
	case FormatSystemd:
		return ParseSystemd(string(data)), nil
	case FormatCompose:
		return ParseCompose(data)
	case FormatK8s:
		return ParseK8s(data)
	default:
		return Parse(string(data)), nil
	}
}

var exportRe = regexp.MustCompile(`^export\s+([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*)$`)

// ParseExports extracts `export VAR=value` assignments from direnv .envrc
// files and shell scripts. Lines that are not exports are arbitrary shell
// code and are skipped, not reported as errors.
func ParseExports(content string) *File {
	f := &File{}

	for i, raw := range strings.Split(content, "\n") {
		lineNum := i + 1
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))

		if line == "" {
			f.EmptyLines = append(f.EmptyLines, lineNum)
			continue
		}
		if strings.HasPrefix(line, "#") {
			f.Comments = append(f.Comments, Comment{Line: lineNum, Text: strings.TrimSpace(strings.TrimPrefix(line, "#"))})
			continue
		}

		m := exportRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value, comment, quoted, err := splitValue(m[2])
		if err != nil {
			f.Errors = append(f.Errors, ParseError{Line: lineNum, Message: err.Error(), Raw: line})
			continue
		}
		f.Variables = append(f.Variables, Variable{
			Key:     m[1],
			Value:   value,
			Line:    lineNum,
			Quoted:  quoted,
			Comment: comment,
		})
	}

	return f
}

var systemdEnvRe = regexp.MustCompile(`^Environment\s*=\s*(.+)$`)

// ParseSystemd extracts Environment= assignments from systemd unit files.
func ParseSystemd(content string) *File {
	f := &File{}

	for i, raw := range strings.Split(content, "\n") {
		lineNum := i + 1
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))

		m := systemdEnvRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		// Environment="VAR=value" or Environment=VAR=value
		assign := strings.TrimSpace(m[1])
		if len(assign) >= 2 && assign[0] == '"' && assign[len(assign)-1] == '"' {
			assign = assign[1 : len(assign)-1]
		}

		km := keyRe.FindStringSubmatch(assign)
		if km == nil {
			f.Errors = append(f.Errors, ParseError{Line: lineNum, Message: "invalid Environment assignment", Raw: line})
			continue
		}
		f.Variables = append(f.Variables, Variable{
			Key:   km[1],
			Value: strings.TrimSpace(km[2]),
			Line:  lineNum,
		})
	}

	return f
}

// ParseCompose extracts service environment variables from a docker-compose
// document. YAML positions are not preserved, so records carry no line
// numbers; map entries are emitted in sorted key order so repeated runs
// produce identical files. A document that is not valid YAML is a hard error.
func ParseCompose(data []byte) (*File, error) {
	var compose struct {
		Services map[string]struct {
			Environment yaml.Node `yaml:"environment"`
		} `yaml:"services"`
	}
	if err := yaml.Unmarshal(data, &compose); err != nil {
		return nil, fmt.Errorf("failed to parse compose file: %w", err)
	}

	f := &File{}
	for _, name := range sortedKeys(compose.Services) {
		env := compose.Services[name].Environment
		switch env.Kind {
		case yaml.MappingNode:
			var kv map[string]string
			if err := env.Decode(&kv); err != nil {
				continue
			}
			for _, k := range sortedKeys(kv) {
				f.Variables = append(f.Variables, Variable{Key: k, Value: kv[k], Line: env.Line})
			}
		case yaml.SequenceNode:
			var items []string
			if err := env.Decode(&items); err != nil {
				continue
			}
			for _, item := range items {
				parts := strings.SplitN(item, "=", 2)
				if len(parts) != 2 {
					continue
				}
				f.Variables = append(f.Variables, Variable{
					Key:   strings.TrimSpace(parts[0]),
					Value: strings.TrimSpace(parts[1]),
					Line:  env.Line,
				})
			}
		}
	}
	return f, nil
}

// ParseK8s extracts the data section of a Kubernetes ConfigMap or Secret in
// sorted key order. Secret values are base64-decoded; values that fail to
// decode are kept as-is.
func ParseK8s(data []byte) (*File, error) {
	var obj struct {
		Kind string            `yaml:"kind"`
		Data map[string]string `yaml:"data"`
	}
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse kubernetes manifest: %w", err)
	}

	f := &File{}
	for _, k := range sortedKeys(obj.Data) {
		v := obj.Data[k]
		if obj.Kind == "Secret" {
			if decoded, err := base64.StdEncoding.DecodeString(v); err == nil {
				v = string(decoded)
			}
		}
		f.Variables = append(f.Variables, Variable{Key: k, Value: v})
	}
	return f, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

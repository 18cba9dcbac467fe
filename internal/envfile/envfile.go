// Package envfile parses environment variable files into positional variable
// records and renders them back out. The parser never aborts on a malformed
// line; it collects parse errors so a caller can report a whole file at once.
package envfile

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Variable is one parsed KEY=value assignment. Immutable once produced.
type Variable struct {
	Key     string
	Value   string // unescaped
	Line    int    // 1-based source line
	Quoted  bool   // literal value was wrapped in quotes
	Comment string // inline comment text, without the # marker
}

// Comment is a free-standing full-line comment.
type Comment struct {
	Line int
	Text string
}

// ParseError describes one malformed line. Individually non-fatal.
type ParseError struct {
	Line    int
	Message string
	Raw     string // offending line, trimmed
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Raw)
}

// File is the parse result. Every source line maps to exactly one of
// {variable, comment, blank, error}.
type File struct {
	Variables  []Variable
	Comments   []Comment
	EmptyLines []int
	Errors     []ParseError
}

var keyRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=(.*)$`)

// Parse splits content on line boundaries (LF or CRLF) and classifies each
// line independently. Malformed lines become entries in File.Errors; parsing
// always continues to the end of the input.
func Parse(content string) *File {
	f := &File{}

	lines := strings.Split(content, "\n")
	for i, raw := range lines {
		lineNum := i + 1
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))

		if line == "" {
			f.EmptyLines = append(f.EmptyLines, lineNum)
			continue
		}

		if strings.HasPrefix(line, "#") {
			f.Comments = append(f.Comments, Comment{
				Line: lineNum,
				Text: strings.TrimSpace(strings.TrimPrefix(line, "#")),
			})
			continue
		}

		m := keyRe.FindStringSubmatch(line)
		if m == nil {
			f.Errors = append(f.Errors, ParseError{
				Line:    lineNum,
				Message: "invalid assignment syntax",
				Raw:     line,
			})
			continue
		}

		value, comment, quoted, err := splitValue(m[2])
		if err != nil {
			f.Errors = append(f.Errors, ParseError{
				Line:    lineNum,
				Message: err.Error(),
				Raw:     line,
			})
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

// splitValue separates the region after the = sign into the literal value and
// an optional inline comment.
func splitValue(rest string) (value, comment string, quoted bool, err error) {
	rest = strings.TrimSpace(rest)

	if len(rest) > 0 && (rest[0] == '\'' || rest[0] == '"') {
		quote := rest[0]
		end := findClosingQuote(rest, quote)
		if end < 0 {
			return "", "", false, fmt.Errorf("unterminated quoted value")
		}
		value = rest[1:end]
		if quote == '"' {
			value = unescape(value)
		}
		tail := rest[end+1:]
		if idx := strings.Index(tail, "#"); idx >= 0 {
			comment = strings.TrimSpace(tail[idx+1:])
		}
		return value, comment, true, nil
	}

	if idx := strings.Index(rest, "#"); idx >= 0 {
		return strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+1:]), false, nil
	}
	return rest, "", false, nil
}

// findClosingQuote returns the index of the matching closing quote, or -1.
// Inside double quotes a backslash escapes the next character; single quotes
// take everything verbatim.
func findClosingQuote(s string, quote byte) int {
	for i := 1; i < len(s); i++ {
		if quote == '"' && s[i] == '\\' {
			i++
			continue
		}
		if s[i] == quote {
			return i
		}
	}
	return -1
}

// unescape applies the double-quote escape substitutions in their fixed
// order. The order is part of the contract; do not reorder.
func unescape(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\r`, "\r")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\\`, `\`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	return s
}

// Stringify renders variables one per line as KEY=value, wrapping the value
// in double quotes when its quoting flag is set and appending the inline
// comment when present. No re-escaping is performed on write, so values
// containing quote or newline characters do not round-trip losslessly.
func Stringify(vars []Variable) string {
	lines := make([]string, 0, len(vars))
	for _, v := range vars {
		line := v.Key + "="
		if v.Quoted {
			line += `"` + v.Value + `"`
		} else {
			line += v.Value
		}
		if v.Comment != "" {
			line += " # " + v.Comment
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Index returns a key lookup over the file's variables. When a key is
// assigned more than once the last occurrence wins, matching shell-sourcing
// semantics; the full ordered record list stays available on Variables.
func (f *File) Index() map[string]Variable {
	idx := make(map[string]Variable, len(f.Variables))
	for _, v := range f.Variables {
		idx[v.Key] = v
	}
	return idx
}

// Load reads and parses an env file. Read failures are hard errors.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

package example

import (
	"net/url"
	"sort"
	"strings"

	"github.com/jenian/envcheck/internal/envfile"
)

// Generate renders a shareable example file from a real environment file.
// Layout, comments and blank lines are preserved; values that could be
// secrets are replaced with placeholders.
func Generate(file *envfile.File) string {
	type renderedLine struct {
		line int
		text string
	}
	var lines []renderedLine

	for _, c := range file.Comments {
		lines = append(lines, renderedLine{c.Line, "# " + c.Text})
	}
	for _, n := range file.EmptyLines {
		lines = append(lines, renderedLine{n, ""})
	}
	for _, v := range file.Variables {
		value := exampleValue(v)
		if v.Quoted {
			value = `"` + value + `"`
		}
		text := v.Key + "=" + value
		if v.Comment != "" {
			text += " # " + v.Comment
		}
		lines = append(lines, renderedLine{v.Line, text})
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].line < lines[j].line })

	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.text
	}
	return strings.Join(parts, "\n") + "\n"
}

// exampleValue keeps values that carry no secret material and replaces the
// rest with a placeholder derived from the key.
func exampleValue(v envfile.Variable) string {
	value := v.Value
	switch {
	case value == "":
		return ""
	case envfile.IsPlaceholder(value):
		return value
	case envfile.LooksLikeBool(value), envfile.LooksLikeNumber(value):
		return value
	case envfile.LooksLikeURL(value):
		// A URL is shareable unless it embeds credentials.
		if u, err := url.Parse(value); err == nil && u.User != nil {
			return "<" + strings.ToLower(v.Key) + ">"
		}
		return value
	default:
		return "<" + strings.ToLower(v.Key) + ">"
	}
}

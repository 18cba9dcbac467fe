package envfile

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Value-shape heuristics shared by the example validator and the security
// analyzer.

var (
	placeholderWordRe = regexp.MustCompile(`(?i)^(your_.+|example_.+|placeholder|change_me|replace_me|x{3,}|todo|fixme)$`)
	emailRe           = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var boolWords = map[string]bool{
	"true": true, "false": true, "1": true, "0": true, "yes": true, "no": true,
}

// IsPlaceholder reports whether a value is recognizable as a template
// stand-in rather than a real configured value.
func IsPlaceholder(value string) bool {
	v := strings.TrimSpace(value)
	if len(v) >= 2 {
		switch {
		case v[0] == '<' && v[len(v)-1] == '>',
			v[0] == '[' && v[len(v)-1] == ']',
			v[0] == '{' && v[len(v)-1] == '}':
			return true
		}
	}
	return placeholderWordRe.MatchString(v)
}

// LooksLikeURL reports whether the value parses as an absolute URL.
func LooksLikeURL(value string) bool {
	u, err := url.Parse(value)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// LooksLikeNumber reports whether the value parses as a finite number.
func LooksLikeNumber(value string) bool {
	n, err := strconv.ParseFloat(value, 64)
	return err == nil && !math.IsInf(n, 0) && !math.IsNaN(n)
}

// LooksLikeBool reports case-insensitive membership in the boolean
// vocabulary {true, false, 1, 0, yes, no}.
func LooksLikeBool(value string) bool {
	return boolWords[strings.ToLower(value)]
}

// LooksLikeEmail reports whether the value matches a single-@, dot-containing
// email shape.
func LooksLikeEmail(value string) bool {
	return emailRe.MatchString(value)
}

// Package output renders validation results as colorized text, JSON or JUnit
// XML.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jenian/envcheck/internal/finding"
	"golang.org/x/term"
)

var (
	// Color support detection
	colorEnabled = initColorSupport()
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// initColorSupport initializes color support for the terminal
func initColorSupport() bool {
	// Check if stdout is a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}

	// On Windows, enable ANSI escape sequences (handled in formatter_windows.go)
	// On Unix-like systems, colors are supported if it's a terminal
	return enableANSI()
}

// Options selects the output format for one run.
type Options struct {
	JSON    bool
	JUnit   bool
	Silent  bool
	NoColor bool
	Path    string // the validated file, shown in headings
}

func (o Options) color(code string) string {
	if colorEnabled && !o.NoColor {
		return code
	}
	return ""
}

// Format renders the result to w in the format the options select. Silent
// suppresses all output; the caller still maps the result to an exit code.
func Format(w io.Writer, result *finding.Result, opts Options) error {
	if opts.Silent {
		return nil
	}
	if opts.JSON {
		return formatJSON(w, result, opts)
	}
	if opts.JUnit {
		return formatJUnit(w, result, opts)
	}
	return formatText(w, result, opts)
}

func formatText(w io.Writer, result *finding.Result, opts Options) error {
	path := opts.Path
	if path == "" {
		path = ".env"
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "%s%sErrors:%s\n", opts.color(colorBold), opts.color(colorRed), opts.color(colorReset))
		for _, f := range result.Errors {
			writeFinding(w, f, opts, colorRed)
		}
		fmt.Fprintln(w)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "%s%sWarnings:%s\n", opts.color(colorBold), opts.color(colorYellow), opts.color(colorReset))
		for _, f := range result.Warnings {
			writeFinding(w, f, opts, colorYellow)
		}
		fmt.Fprintln(w)
	}

	if len(result.Info) > 0 {
		fmt.Fprintf(w, "%s%sNotes:%s\n", opts.color(colorBold), opts.color(colorCyan), opts.color(colorReset))
		for _, f := range result.Info {
			writeFinding(w, f, opts, colorCyan)
		}
		fmt.Fprintln(w)
	}

	if result.IsValid && len(result.Warnings) == 0 && len(result.Info) == 0 {
		fmt.Fprintf(w, "%s%s✓ %s is valid.%s\n\n", opts.color(colorGreen), opts.color(colorBold), path, opts.color(colorReset))
	}

	writeSummary(w, result.Summary, opts)
	return nil
}

func writeFinding(w io.Writer, f finding.Finding, opts Options, color string) {
	fmt.Fprintf(w, "  %s%s%s", opts.color(color), label(f), opts.color(colorReset))
	if f.Line > 0 {
		fmt.Fprintf(w, " %s(line %d)%s", opts.color(colorGray), f.Line, opts.color(colorReset))
	}
	fmt.Fprintf(w, ": %s\n", f.Message)
	if f.Suggestion != "" {
		fmt.Fprintf(w, "    %s→ %s%s\n", opts.color(colorGray), f.Suggestion, opts.color(colorReset))
	}
}

// label names the finding in the text output: the variable if the finding has
// one, otherwise the file itself.
func label(f finding.Finding) string {
	if f.Key != "" {
		return f.Key
	}
	return "file"
}

func writeSummary(w io.Writer, s finding.Summary, opts Options) {
	fmt.Fprintf(w, "%schecked %d variables", opts.color(colorGray), s.TotalVariables)
	if s.RequiredVariables > 0 {
		fmt.Fprintf(w, " (%d required)", s.RequiredVariables)
	}
	fmt.Fprintf(w, ": %d missing, %d unused, %d security issues", s.MissingVariables, s.UnusedVariables, s.SecurityIssues)
	if s.Duration > 0 {
		fmt.Fprintf(w, " in %s", s.Duration.Round(time.Microsecond))
	}
	fmt.Fprintf(w, "%s\n", opts.color(colorReset))
}

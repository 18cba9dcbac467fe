package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	f := Parse("NODE_ENV=development\nPORT=3000\n")

	if len(f.Errors) != 0 {
		t.Fatalf("expected no parse errors, got %v", f.Errors)
	}
	if len(f.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(f.Variables))
	}

	want := []Variable{
		{Key: "NODE_ENV", Value: "development", Line: 1},
		{Key: "PORT", Value: "3000", Line: 2},
	}
	for i, w := range want {
		got := f.Variables[i]
		if got != w {
			t.Errorf("variable %d: got %+v, want %+v", i, got, w)
		}
	}
}

func TestParseQuotes(t *testing.T) {
	f := Parse("SINGLE='a b'\nDOUBLE=\"tab\\there\"")

	if len(f.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d (errors: %v)", len(f.Variables), f.Errors)
	}

	single := f.Variables[0]
	if single.Value != "a b" || !single.Quoted {
		t.Errorf("SINGLE: got value %q quoted=%v, want \"a b\" quoted=true", single.Value, single.Quoted)
	}

	double := f.Variables[1]
	if double.Value != "tab\there" {
		t.Errorf("DOUBLE: got %q, want tab character unescaped", double.Value)
	}
}

func TestParseSingleQuotesNoEscapes(t *testing.T) {
	f := Parse(`KEY='a\nb'`)
	if len(f.Variables) != 1 {
		t.Fatalf("expected 1 variable, got %d", len(f.Variables))
	}
	if f.Variables[0].Value != `a\nb` {
		t.Errorf("single-quoted value should be verbatim, got %q", f.Variables[0].Value)
	}
}

func TestParseEscapeOrder(t *testing.T) {
	cases := map[string]string{
		`A="\n"`:  "\n",
		`A="\r"`:  "\r",
		`A="\t"`:  "\t",
		`A="\\t"`: "\\\t", // \t substitution runs before \\
		`A="\""`:  `"`,
	}
	for input, want := range cases {
		f := Parse(input)
		if len(f.Variables) != 1 {
			t.Errorf("%s: expected 1 variable, got %d (errors: %v)", input, len(f.Variables), f.Errors)
			continue
		}
		if got := f.Variables[0].Value; got != want {
			t.Errorf("%s: got %q, want %q", input, got, want)
		}
	}
}

func TestParseInlineComments(t *testing.T) {
	f := Parse("A=1 # first\nB=\"two\" # second\nC=3#tight")

	if len(f.Variables) != 3 {
		t.Fatalf("expected 3 variables, got %d", len(f.Variables))
	}
	checks := []struct{ value, comment string }{
		{"1", "first"},
		{"two", "second"},
		{"3", "tight"},
	}
	for i, c := range checks {
		v := f.Variables[i]
		if v.Value != c.value || v.Comment != c.comment {
			t.Errorf("variable %d: got value=%q comment=%q, want value=%q comment=%q",
				i, v.Value, v.Comment, c.value, c.comment)
		}
	}
}

func TestParseBlankLineTracking(t *testing.T) {
	f := Parse("A=1\n\nB=2\n\nC=3")

	if len(f.Variables) != 3 {
		t.Fatalf("expected 3 variables, got %d", len(f.Variables))
	}
	if len(f.EmptyLines) != 2 || f.EmptyLines[0] != 2 || f.EmptyLines[1] != 4 {
		t.Errorf("expected empty lines [2 4], got %v", f.EmptyLines)
	}
}

func TestParseComments(t *testing.T) {
	f := Parse("# header comment\nA=1\n#tight comment")

	if len(f.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(f.Comments))
	}
	if f.Comments[0].Text != "header comment" || f.Comments[0].Line != 1 {
		t.Errorf("unexpected first comment: %+v", f.Comments[0])
	}
	if f.Comments[1].Text != "tight comment" {
		t.Errorf("unexpected second comment: %+v", f.Comments[1])
	}
}

func TestParseMalformedLineIsolation(t *testing.T) {
	f := Parse("GOOD=value\nthis line has no equals sign\n1BAD=starts-with-digit")

	if len(f.Errors) != 2 {
		t.Fatalf("expected 2 parse errors, got %d: %v", len(f.Errors), f.Errors)
	}
	if len(f.Variables) != 1 || f.Variables[0].Key != "GOOD" {
		t.Errorf("well-formed variable should survive malformed neighbors, got %v", f.Variables)
	}
	if f.Errors[0].Line != 2 {
		t.Errorf("expected first error on line 2, got %d", f.Errors[0].Line)
	}
}

func TestParseUnterminatedQuote(t *testing.T) {
	f := Parse(`KEY="never closed`)
	if len(f.Errors) != 1 {
		t.Fatalf("expected 1 parse error, got %d", len(f.Errors))
	}
	if !strings.Contains(f.Errors[0].Message, "unterminated") {
		t.Errorf("unexpected error message: %s", f.Errors[0].Message)
	}
}

func TestParseCRLF(t *testing.T) {
	f := Parse("A=1\r\nB=2\r\n")
	if len(f.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(f.Variables))
	}
	if f.Variables[0].Value != "1" || f.Variables[1].Value != "2" {
		t.Errorf("carriage returns should not leak into values: %v", f.Variables)
	}
}

func TestIndexLastWins(t *testing.T) {
	f := Parse("A=first\nA=second")
	if len(f.Variables) != 2 {
		t.Fatalf("parser should keep both records, got %d", len(f.Variables))
	}
	idx := f.Index()
	if idx["A"].Value != "second" {
		t.Errorf("duplicate key should resolve last-wins, got %q", idx["A"].Value)
	}
}

func TestStringifyRoundTrip(t *testing.T) {
	vars := []Variable{
		{Key: "NODE_ENV", Value: "development"},
		{Key: "NAME", Value: "a b", Quoted: true},
		{Key: "PORT", Value: "3000"},
	}

	out := Stringify(vars)
	reparsed := Parse(out)
	if len(reparsed.Errors) != 0 {
		t.Fatalf("stringify output should reparse cleanly: %v", reparsed.Errors)
	}
	if len(reparsed.Variables) != len(vars) {
		t.Fatalf("expected %d variables after round trip, got %d", len(vars), len(reparsed.Variables))
	}
	for i, v := range vars {
		got := reparsed.Variables[i]
		if got.Key != v.Key || got.Value != v.Value || got.Quoted != v.Quoted {
			t.Errorf("round trip mismatch at %d: got %+v, want %+v", i, got, v)
		}
	}
	if Stringify(reparsed.Variables) != out {
		t.Error("second stringify should reproduce the first")
	}
}

func TestStringifyComments(t *testing.T) {
	out := Stringify([]Variable{{Key: "A", Value: "1", Comment: "note"}})
	if out != "A=1 # note" {
		t.Errorf("got %q", out)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("A=1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(f.Variables) != 1 || f.Variables[0].Key != "A" {
		t.Errorf("unexpected variables: %v", f.Variables)
	}
}

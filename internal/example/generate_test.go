package example

import (
	"strings"
	"testing"

	"github.com/jenian/envcheck/internal/envfile"
)

func TestGenerateRedactsSecrets(t *testing.T) {
	file := envfile.Parse("API_KEY=sk-live-4f9d8a7b6c5e\nPORT=3000\nDEBUG=true")

	out := Generate(file)

	if strings.Contains(out, "sk-live") {
		t.Errorf("secret values must not survive generation:\n%s", out)
	}
	for _, want := range []string{"API_KEY=<api_key>", "PORT=3000", "DEBUG=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestGeneratePreservesLayout(t *testing.T) {
	file := envfile.Parse("# server settings\nPORT=8080 # http port\n\nHOST=0.0.0.0")

	out := Generate(file)

	want := "# server settings\nPORT=8080 # http port\n\nHOST=<host>\n"
	if out != want {
		t.Errorf("layout not preserved:\ngot  %q\nwant %q", out, want)
	}
}

func TestGenerateURLs(t *testing.T) {
	file := envfile.Parse("API_URL=https://api.example.com/v1\nDATABASE_URL=postgres://user:pw@db/app")

	out := Generate(file)

	if !strings.Contains(out, "API_URL=https://api.example.com/v1") {
		t.Errorf("credential-free URLs are shareable:\n%s", out)
	}
	if !strings.Contains(out, "DATABASE_URL=<database_url>") {
		t.Errorf("URLs with credentials must be redacted:\n%s", out)
	}
}

func TestGenerateKeepsPlaceholdersAndQuotes(t *testing.T) {
	file := envfile.Parse("TOKEN=<your-token>\nGREETING=\"hello world\"")

	out := Generate(file)

	if !strings.Contains(out, "TOKEN=<your-token>") {
		t.Errorf("existing placeholders should be kept:\n%s", out)
	}
	if !strings.Contains(out, `GREETING="<greeting>"`) {
		t.Errorf("quoting should survive redaction:\n%s", out)
	}
}

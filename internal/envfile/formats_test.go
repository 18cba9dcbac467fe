package envfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		".env":                   FormatEnv,
		".env.local":             FormatEnv,
		"production.env":         FormatEnv,
		".envrc":                 FormatEnvrc,
		"docker-compose.yml":     FormatCompose,
		"docker-compose.dev.yml": FormatCompose,
		"app.service":            FormatSystemd,
		"setup.sh":               FormatShell,
		"app-configmap.yaml":     FormatK8s,
		"db-secret.yml":          FormatK8s,
		"README.md":              FormatEnv,
	}
	for name, want := range cases {
		if got := DetectFormat(name); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestParseExports(t *testing.T) {
	content := `#!/bin/bash
# setup
export API_URL=https://api.example.com
export NAME="with space"
echo "not an assignment"
export lowercase_ok=1
`
	f := ParseExports(content)
	if len(f.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", f.Errors)
	}
	if len(f.Variables) != 3 {
		t.Fatalf("expected 3 variables, got %d", len(f.Variables))
	}
	if f.Variables[0].Key != "API_URL" || f.Variables[0].Value != "https://api.example.com" {
		t.Errorf("unexpected first variable: %+v", f.Variables[0])
	}
	if f.Variables[1].Value != "with space" || !f.Variables[1].Quoted {
		t.Errorf("quoted export should be unquoted: %+v", f.Variables[1])
	}
}

func TestParseSystemd(t *testing.T) {
	content := `[Unit]
Description=demo

[Service]
Environment=PORT=8080
Environment="DATABASE_URL=postgres://localhost/db"
ExecStart=/usr/bin/demo
`
	f := ParseSystemd(content)
	if len(f.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(f.Variables))
	}
	idx := f.Index()
	if idx["PORT"].Value != "8080" {
		t.Errorf("PORT = %q", idx["PORT"].Value)
	}
	if idx["DATABASE_URL"].Value != "postgres://localhost/db" {
		t.Errorf("DATABASE_URL = %q", idx["DATABASE_URL"].Value)
	}
}

func TestParseCompose(t *testing.T) {
	content := []byte(`services:
  web:
    environment:
      PORT: "3000"
      DEBUG: "true"
  worker:
    environment:
      - QUEUE_NAME=jobs
`)
	f, err := ParseCompose(content)
	if err != nil {
		t.Fatalf("ParseCompose failed: %v", err)
	}
	idx := f.Index()
	if idx["PORT"].Value != "3000" || idx["DEBUG"].Value != "true" || idx["QUEUE_NAME"].Value != "jobs" {
		t.Errorf("unexpected variables: %v", f.Variables)
	}
}

func TestParseComposeDeterministicOrder(t *testing.T) {
	content := []byte(`services:
  worker:
    environment:
      ZED: "1"
      ALPHA: "2"
  api:
    environment:
      MIDDLE: "3"
`)
	f, err := ParseCompose(content)
	if err != nil {
		t.Fatalf("ParseCompose failed: %v", err)
	}

	var keys []string
	for _, v := range f.Variables {
		keys = append(keys, v.Key)
	}
	// Services and their mapping entries are emitted in sorted key order so
	// repeated parses of the same document yield identical variable lists.
	want := []string{"MIDDLE", "ALPHA", "ZED"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d variables, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("variable order = %v, want %v", keys, want)
		}
	}
}

func TestParseK8sDeterministicOrder(t *testing.T) {
	content := []byte(`apiVersion: v1
kind: ConfigMap
data:
  ZED: "1"
  ALPHA: "2"
  MIDDLE: "3"
`)
	f, err := ParseK8s(content)
	if err != nil {
		t.Fatalf("ParseK8s failed: %v", err)
	}

	var keys []string
	for _, v := range f.Variables {
		keys = append(keys, v.Key)
	}
	want := []string{"ALPHA", "MIDDLE", "ZED"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d variables, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("variable order = %v, want %v", keys, want)
		}
	}
}

func TestParseComposeInvalidYAML(t *testing.T) {
	if _, err := ParseCompose([]byte("services: [unclosed")); err == nil {
		t.Fatal("expected an error for invalid YAML")
	}
}

func TestParseK8sSecret(t *testing.T) {
	content := []byte(`apiVersion: v1
kind: Secret
metadata:
  name: db
data:
  PASSWORD: c3VwZXJzZWNyZXQ=
`)
	f, err := ParseK8s(content)
	if err != nil {
		t.Fatalf("ParseK8s failed: %v", err)
	}
	if f.Index()["PASSWORD"].Value != "supersecret" {
		t.Errorf("secret value should be base64 decoded, got %q", f.Index()["PASSWORD"].Value)
	}
}

func TestParseK8sConfigMap(t *testing.T) {
	content := []byte(`apiVersion: v1
kind: ConfigMap
metadata:
  name: app
data:
  LOG_LEVEL: info
`)
	f, err := ParseK8s(content)
	if err != nil {
		t.Fatalf("ParseK8s failed: %v", err)
	}
	if f.Index()["LOG_LEVEL"].Value != "info" {
		t.Errorf("LOG_LEVEL = %q", f.Index()["LOG_LEVEL"].Value)
	}
}

func TestLoadAnyDispatch(t *testing.T) {
	dir := t.TempDir()

	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("A=1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	rcPath := filepath.Join(dir, ".envrc")
	if err := os.WriteFile(rcPath, []byte("export B=2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadAny(envPath)
	if err != nil || len(f.Variables) != 1 || f.Variables[0].Key != "A" {
		t.Errorf("LoadAny(.env): %v %v", f, err)
	}
	f, err = LoadAny(rcPath)
	if err != nil || len(f.Variables) != 1 || f.Variables[0].Key != "B" {
		t.Errorf("LoadAny(.envrc): %v %v", f, err)
	}
}

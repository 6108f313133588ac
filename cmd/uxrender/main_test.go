package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const cliSchema = `{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "tags":  {"type": "array", "items": {"type": "string"}, "_ux": {"display_format": "{{ value | join(', ') }}"}},
    "owner": {"type": "string", "_ux": {"display_format": "{{ value }} ({{ state.team }})"}}
  }
}`

func TestRunJSON(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeTemp(t, dir, "schema.json", cliSchema)
	dataPath := writeTemp(t, dir, "data.yaml", "title: Hello\ntags: [a, b]\nowner: ana\n")
	statePath := writeTemp(t, dir, "state.json", `{"team":"core"}`)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-config", dir,
		"-schema", schemaPath,
		"-data", dataPath,
		"-state", statePath,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v (stderr: %s)", err, stderr.String())
	}

	var tree map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &tree); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if tree["kind"] != "object" {
		t.Fatalf("kind = %v", tree["kind"])
	}
	out := stdout.String()
	if !strings.Contains(out, `"a, b"`) || !strings.Contains(out, `"ana (core)"`) {
		t.Fatalf("expected formatted values in output:\n%s", out)
	}
}

func TestRunTextToFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeTemp(t, dir, "schema.json", cliSchema)
	dataPath := writeTemp(t, dir, "data.json", `{"title":"Hello","tags":["x"],"owner":"bo"}`)
	outPath := filepath.Join(dir, "out.txt")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-config", dir,
		"-schema", schemaPath,
		"-data", dataPath,
		"-format", "text",
		"-output", outPath,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}
	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(written), "title: Hello") {
		t.Fatalf("unexpected text output:\n%s", written)
	}
}

func TestRunOpenAPIComponent(t *testing.T) {
	dir := t.TempDir()
	specPath := writeTemp(t, dir, "api.yaml", `openapi: 3.0.3
info: {title: T, version: "1"}
paths: {}
components:
  schemas:
    Item:
      type: object
      properties:
        name: {type: string}
`)
	dataPath := writeTemp(t, dir, "data.json", `{"name":"widget"}`)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-config", dir,
		"-schema", specPath,
		"-component", "Item",
		"-data", dataPath,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), `"widget"`) {
		t.Fatalf("expected component data in output:\n%s", stdout.String())
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeTemp(t, dir, "schema.json", cliSchema)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing schema", args: []string{"-config", dir}},
		{name: "unknown format", args: []string{"-config", dir, "-schema", schemaPath, "-format", "html"}},
		{name: "bad path", args: []string{"-config", dir, "-schema", schemaPath, "-path", "a[zz"}},
		{name: "missing file", args: []string{"-config", dir, "-schema", filepath.Join(dir, "nope.json")}},
		{name: "remote disabled", args: []string{"-config", dir, "-schema", "https://example.com/schema.json"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if err := run(context.Background(), tc.args, &stdout, &stderr); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

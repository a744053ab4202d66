package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportCommand_Stdout(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")
	seedHistory(t, env, "What is our Q3 revenue?")

	out, err := env.run("", "export", "1", "--format", "jsonl")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	var first map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if first["role"] != "user" || first["content"] != "What is our Q3 revenue?" {
		t.Errorf("unexpected first entry: %v", first)
	}
}

func TestExportCommand_Directory(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")
	seedHistory(t, env, "What is our Q3 revenue?")
	dir := t.TempDir()

	out, err := env.run("", "export", "1", "-f", "md", "-o", dir)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	path := filepath.Join(dir, "chat-1.md")
	if !strings.Contains(out, path) {
		t.Errorf("output should name the file, got %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if !strings.Contains(string(data), "# Chat #1") || !strings.Contains(string(data), "**Exported:**") {
		t.Errorf("unexpected markdown:\n%s", data)
	}
}

func TestExportCommand_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")

	tests := []struct {
		name string
		args []string
	}{
		{"invalid format", []string{"export", "1", "--format", "invalid"}},
		{"missing position", []string{"export"}},
		{"out of range", []string{"export", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.run("", tt.args...); err == nil {
				t.Errorf("exportCmd.Execute(%v) should fail", tt.args)
			}
		})
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a minimal valid config file rooted in a temp
// directory and returns its path plus the output directory.
func writeTestConfig(t *testing.T, extra string) (configPath, outDir string) {
	t.Helper()
	base := t.TempDir()
	outDir = filepath.Join(base, "out")
	configPath = filepath.Join(base, "config.toml")
	content := `
[paths]
database_path = "` + filepath.Join(base, "catalog.sqlite") + `"
output_dir = "` + outDir + `"
log_dir = "` + filepath.Join(base, "logs") + `"
` + extra
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath, outDir
}

func runCLI(t *testing.T, args []string, configPath string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/asrvd/repo-guardian/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Rules: config.RulesConfig{
			WorkflowExtensions: []string{".yml", ".yaml"},
		},
	}
}

func TestWorkflowsMissingDirectory(t *testing.T) {
	fs, err := NewFilesystem(filepath.Join(t.TempDir(), "nope"), testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := fs.Workflows(context.Background()); err == nil {
		t.Error("expected a retrieval error for a missing directory")
	}
}

func TestWorkflowsSkipsNonWorkflowFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ci.yml", "name: ci\n")
	writeFile(t, dir, "README.md", "# docs\n")
	writeFile(t, dir, "script.sh", "echo hi\n")

	fs, err := NewFilesystem(dir, testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	files, err := fs.Workflows(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 1 || files[0].Name != "ci.yml" {
		t.Errorf("expected only ci.yml, got %+v", files)
	}
}

func TestWorkflowsSortedOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zeta.yml", "a\n")
	writeFile(t, dir, "alpha.yaml", "b\n")
	writeFile(t, dir, "mid.yml", "c\n")

	fs, err := NewFilesystem(dir, testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	files, err := fs.Workflows(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"alpha.yaml", "mid.yml", "zeta.yml"}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(files))
	}
	for i, name := range want {
		if files[i].Name != name {
			t.Errorf("file %d: expected %s, got %s", i, name, files[i].Name)
		}
	}
}

func TestWorkflowsIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ci.yml", "a\n")
	writeFile(t, dir, "ci.example.yml", "b\n")
	writeFile(t, dir, filepath.Join("node_modules", "dep", "action.yml"), "c\n")

	cfg := testConfig()
	cfg.Rules.IgnorePatterns = []string{"node_modules/**", "**.example.yml"}

	fs, err := NewFilesystem(dir, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	files, err := fs.Workflows(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 1 || files[0].Name != "ci.yml" {
		t.Errorf("expected only ci.yml after ignores, got %+v", files)
	}
}

func TestWorkflowsInvalidIgnorePattern(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.IgnorePatterns = []string{"[unterminated"}

	if _, err := NewFilesystem(t.TempDir(), cfg, nil); err == nil {
		t.Error("expected an error for an invalid ignore pattern")
	}
}

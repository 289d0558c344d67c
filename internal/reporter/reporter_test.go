package reporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/asrvd/repo-guardian/internal/config"
	"github.com/asrvd/repo-guardian/internal/engine"
)

func TestReportFileName(t *testing.T) {
	at := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

	got := ReportFileName("octo/app", at)
	want := "octo-app-workflow-scan-2024-03-01.md"
	if got != want {
		t.Errorf("ReportFileName = %s, want %s", got, want)
	}
}

func TestGenerateWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")
	cfg := &config.Config{Format: "markdown", OutputFile: path}

	result := engine.ScanResult{Repository: "octo/app", Succeeded: true, Findings: []engine.Finding{}}
	r := New(cfg, nil)

	if err := r.Generate(result, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "No issues found.") {
		t.Errorf("unexpected report content: %s", data)
	}
}

func TestGenerateOutputDirNaming(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Format: "markdown", OutputDir: dir}
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	result := engine.ScanResult{Repository: "octo/app", Succeeded: true, Findings: []engine.Finding{}}
	if err := New(cfg, nil).Generate(result, at); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "octo-app-workflow-scan-2024-03-01.md")); err != nil {
		t.Errorf("expected conventionally named report file: %v", err)
	}
}

func TestGenerateJSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	cfg := &config.Config{Format: "json", OutputFile: path}

	result := engine.ScanResult{Repository: "octo/app", Succeeded: true, Findings: []engine.Finding{}}
	if err := New(cfg, nil).Generate(result, time.Now()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"repository": "octo/app"`) {
		t.Errorf("unexpected JSON content: %s", data)
	}
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	cfg := &config.Config{Format: "xml"}

	err := New(cfg, nil).Generate(engine.ScanResult{}, time.Now())
	if err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

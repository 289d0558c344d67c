package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/asrvd/repo-guardian/internal/config"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - id: no-self-hosted
    description: Job targets a self-hosted runner
    severity: medium
    pattern: 'runs-on:\s*.*self-hosted'
    remediation: Use GitHub-hosted runners for public repositories.
  - id: untrusted-checkout
    description: Third-party ref checked out
    severity: high
    kind: function
    pattern: untrusted-action-ref
`)

	set, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(set))
	}
	if set[0].Kind != KindRegex {
		t.Errorf("kind should default to regex, got %s", set[0].Kind)
	}
	if set[0].Severity != config.SeverityMedium {
		t.Errorf("expected medium severity, got %s", set[0].Severity)
	}
	if set[1].Kind != KindFunction {
		t.Errorf("expected function kind, got %s", set[1].Kind)
	}
	if err := set.Compile(); err != nil {
		t.Errorf("loaded rules failed to compile: %v", err)
	}
}

func TestLoadYAMLMissingID(t *testing.T) {
	path := writeRulesFile(t, "rules:\n  - pattern: 'x'\n")

	if _, err := LoadYAML(path); err == nil {
		t.Error("expected an error for a rule without an id")
	}
}

func TestLoadYAMLMissingFile(t *testing.T) {
	if _, err := LoadYAML(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing rules file")
	}
}

func TestActiveAppendsAndDisables(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - id: no-self-hosted
    severity: medium
    pattern: 'self-hosted'
`)
	cfg := &config.Config{
		Rules: config.RulesConfig{
			CustomRulesPath: path,
			Disabled:        []string{"pull-request-target"},
		},
	}

	set, err := Active(cfg)
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}

	if set[len(set)-1].ID != "no-self-hosted" {
		t.Error("custom rules should be appended after the defaults")
	}
	for _, r := range set {
		if r.ID == "pull-request-target" {
			t.Error("disabled rule still active")
		}
	}
}

func TestActiveRejectsInvalidCustomPattern(t *testing.T) {
	path := writeRulesFile(t, "rules:\n  - id: broken\n    pattern: '('\n")
	cfg := &config.Config{
		Rules: config.RulesConfig{CustomRulesPath: path},
	}

	if _, err := Active(cfg); err == nil {
		t.Error("expected an error for an invalid custom pattern")
	}
}

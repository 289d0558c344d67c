package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/asrvd/repo-guardian/internal/config"
)

// YAMLRule represents a single rule definition in a custom rules file
type YAMLRule struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Severity    string `yaml:"severity"`
	Kind        string `yaml:"kind"`
	Pattern     string `yaml:"pattern"`
	Remediation string `yaml:"remediation"`
}

// YAMLRuleFile is the top-level schema of a custom rules file
type YAMLRuleFile struct {
	Rules []YAMLRule `yaml:"rules"`
}

// LoadYAML loads custom rules from a YAML file. The returned set is not
// compiled; callers append it to the active set and compile once.
func LoadYAML(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file YAMLRuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	set := make(Set, 0, len(file.Rules))
	for i, yr := range file.Rules {
		if yr.ID == "" {
			return nil, fmt.Errorf("rules file %s: rule %d has no id", path, i)
		}
		kind := MatchKind(yr.Kind)
		if yr.Kind == "" {
			kind = KindRegex
		}
		set = append(set, Rule{
			ID:          yr.ID,
			Description: yr.Description,
			Severity:    config.ParseSeverity(yr.Severity),
			Kind:        kind,
			Pattern:     yr.Pattern,
			Remediation: yr.Remediation,
		})
	}
	return set, nil
}

// Active builds the rule set for a scan: defaults plus any custom rules,
// minus disabled ids, compiled and ready for the engine.
func Active(cfg *config.Config) (Set, error) {
	set := Default()

	if cfg.Rules.CustomRulesPath != "" {
		custom, err := LoadYAML(cfg.Rules.CustomRulesPath)
		if err != nil {
			return nil, err
		}
		set = append(set, custom...)
	}

	set = set.Without(cfg.Rules.Disabled)

	if err := set.Compile(); err != nil {
		return nil, err
	}
	return set, nil
}

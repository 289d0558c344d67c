package config

import (
	"runtime"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	ScanPath    string
	Repository  string // repository identifier used in report headings
	OutputFile  string
	OutputDir   string
	Format      string
	MinSeverity string
	Parallel    int
	Verbose     bool
	HistoryDB   string
	NoHistory   bool
	Rules       RulesConfig
}

// RulesConfig holds workflow rule configuration
type RulesConfig struct {
	Disabled           []string `mapstructure:"disabled"`
	CustomRulesPath    string   `mapstructure:"custom_rules_path"`
	IgnorePatterns     []string `mapstructure:"ignore_patterns"`
	WorkflowExtensions []string `mapstructure:"workflow_extensions"`
}

// Load loads configuration from defaults and viper overrides
func Load() *Config {
	cfg := &Config{
		Format:      "markdown",
		MinSeverity: "low",
		Parallel:    runtime.NumCPU(),
		HistoryDB:   ".repo-guardian/history.db",
		Rules: RulesConfig{
			WorkflowExtensions: []string{".yml", ".yaml"},
			IgnorePatterns: []string{
				"node_modules/**",
				".git/**",
				"**/*.example.yml",
			},
		},
	}

	if viper.IsSet("format") {
		cfg.Format = viper.GetString("format")
	}
	if viper.IsSet("severity") {
		cfg.MinSeverity = viper.GetString("severity")
	}
	if viper.IsSet("parallel") {
		cfg.Parallel = viper.GetInt("parallel")
	}
	if viper.IsSet("verbose") {
		cfg.Verbose = viper.GetBool("verbose")
	}
	if viper.IsSet("history_db") {
		cfg.HistoryDB = viper.GetString("history_db")
	}

	if viper.IsSet("rules") {
		viper.UnmarshalKey("rules", &cfg.Rules)
	}

	if cfg.Parallel <= 0 {
		cfg.Parallel = runtime.NumCPU()
	}

	return cfg
}

// SeverityLevel represents finding severity levels
type SeverityLevel int

const (
	SeverityLow SeverityLevel = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns string representation of severity level
func (s SeverityLevel) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseSeverity parses severity level from string
func ParseSeverity(s string) SeverityLevel {
	switch s {
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityLow
	}
}

// SeverityLevels returns all severity levels in display order,
// most severe first.
func SeverityLevels() []SeverityLevel {
	return []SeverityLevel{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

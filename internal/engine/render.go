package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/asrvd/repo-guardian/internal/config"
)

// Render produces the Markdown report for a scan result. It is a pure
// function of its arguments: identical input yields byte-identical
// output. The timestamp is caller-supplied so callers stay in control
// of determinism.
func Render(result ScanResult, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Workflow Security Report: %s\n\n", result.Repository))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.Format("2006-01-02 15:04:05 MST")))

	if !result.Succeeded {
		sb.WriteString("## Error\n\n")
		sb.WriteString(result.Message)
		sb.WriteString("\n")
		return sb.String()
	}

	if len(result.Findings) == 0 {
		sb.WriteString("No issues found.\n")
		return sb.String()
	}

	// Counts are derived from the findings, not from Stats, so results
	// round-tripped through a sink render the same summary.
	counts := make(map[config.SeverityLevel]int, 4)
	for _, f := range result.Findings {
		counts[f.Severity]++
	}

	sb.WriteString("## Summary\n\n")
	for _, severity := range config.SeverityLevels() {
		sb.WriteString(fmt.Sprintf("- %s: %d\n",
			strings.ToUpper(severity.String()), counts[severity]))
	}
	sb.WriteString("\n")

	for _, severity := range config.SeverityLevels() {
		findings := filterBySeverity(result.Findings, severity)
		if len(findings) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", strings.ToUpper(severity.String())))
		for _, finding := range findings {
			sb.WriteString(fmt.Sprintf("- **%s:%d** %s (`%s`)\n",
				finding.File, finding.Line, finding.Description, finding.RuleID))
			sb.WriteString(fmt.Sprintf("  - Matched: `%s`\n", finding.MatchedText))
			sb.WriteString(fmt.Sprintf("  - Remediation: %s\n", finding.Remediation))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// filterBySeverity returns findings of exactly the given severity,
// preserving their order.
func filterBySeverity(findings []Finding, severity config.SeverityLevel) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

package rules

import "github.com/asrvd/repo-guardian/internal/config"

// Default returns the built-in workflow rule set. Order matters: when
// several rules match the same line, findings are emitted in this order.
func Default() Set {
	return Set{
		{
			ID:          "no-plaintext-secrets",
			Description: "Hardcoded credential assigned to a secret-like key",
			Severity:    config.SeverityCritical,
			Kind:        KindRegex,
			Pattern:     `(?i)[a-z0-9_-]*(password|passwd|token|secret|key)[a-z0-9_-]*\s*:\s*["'][^"'$]+["']`,
			Remediation: "Store the value in repository or organization secrets and reference it with ${{ secrets.NAME }}.",
		},
		{
			ID:          "pin-actions-versions",
			Description: "Action pinned to a mutable ref instead of a commit SHA",
			Severity:    config.SeverityHigh,
			Kind:        KindRegex,
			Pattern:     `(?i)uses:\s*["']?[^\s"'@]+@(main|master|latest|v?\d+(\.\d+)*)["']?\s*(#.*)?$`,
			Remediation: "Pin the action to a full commit SHA so the referenced code cannot change underneath you.",
		},
		{
			ID:          "third-party-action-review",
			Description: "Third-party action outside the first-party namespaces",
			Severity:    config.SeverityMedium,
			Kind:        KindFunction,
			Pattern:     "untrusted-action-ref",
			Remediation: "Review the action's source before use, or fork it into a namespace you control.",
		},
		{
			ID:          "script-injection",
			Description: "Untrusted event data interpolated directly into a script",
			Severity:    config.SeverityHigh,
			Kind:        KindRegex,
			Pattern:     `\$\{\{\s*github\.(event\.[A-Za-z_.\[\]0-9]*\.(title|body|message|name|email)|head_ref)\s*\}\}`,
			Remediation: "Pass the value through an environment variable and reference the variable in the script instead of interpolating the expression.",
		},
		{
			ID:          "pull-request-target",
			Description: "Workflow triggered by pull_request_target",
			Severity:    config.SeverityHigh,
			Kind:        KindRegex,
			Pattern:     `(?i)\bpull_request_target\b`,
			Remediation: "Prefer the pull_request trigger; if pull_request_target is required, never check out or execute the incoming PR's code.",
		},
	}
}

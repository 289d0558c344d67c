package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/asrvd/repo-guardian/internal/config"
)

// MatchKind represents how a rule evaluates a line
type MatchKind string

const (
	// KindRegex evaluates a compiled regular expression against the line.
	KindRegex MatchKind = "regex"
	// KindFunction evaluates a named match function against the line.
	// Used where a single RE2 pattern cannot express the condition
	// (RE2 has no lookaround).
	KindFunction MatchKind = "function"
)

// Rule represents a single workflow security rule. Rules are data:
// the engine treats every rule identically and evaluates each one
// independently per line.
type Rule struct {
	ID          string
	Description string
	Severity    config.SeverityLevel
	Kind        MatchKind
	Pattern     string // regex source, or match function name for KindFunction
	Remediation string

	regex *regexp.Regexp
	fn    MatchFunc
}

// MatchFunc is a line-match capability for rules that cannot be
// expressed as a single pattern.
type MatchFunc func(line string) bool

// Match reports whether the rule matches the given raw line.
func (r *Rule) Match(line string) bool {
	switch r.Kind {
	case KindRegex:
		return r.regex != nil && r.regex.MatchString(line)
	case KindFunction:
		return r.fn != nil && r.fn(line)
	default:
		return false
	}
}

// Set is an ordered collection of rules. Order is significant: it
// determines the order of findings when multiple rules match one line.
type Set []Rule

// Compile resolves every rule's pattern (regex compilation or match
// function lookup) and validates the set. It must be called before the
// set is handed to an engine.
func (s Set) Compile() error {
	seen := make(map[string]bool, len(s))
	for i := range s {
		r := &s[i]
		if r.ID == "" {
			return fmt.Errorf("rule %d: empty id", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("rule %q: duplicate id", r.ID)
		}
		seen[r.ID] = true

		switch r.Kind {
		case KindRegex:
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return fmt.Errorf("rule %q: invalid pattern: %w", r.ID, err)
			}
			r.regex = re
		case KindFunction:
			fn, ok := matchFuncs[r.Pattern]
			if !ok {
				return fmt.Errorf("rule %q: unknown match function %q", r.ID, r.Pattern)
			}
			r.fn = fn
		default:
			return fmt.Errorf("rule %q: unknown match kind %q", r.ID, r.Kind)
		}
	}
	return nil
}

// Without returns a copy of the set with the named rules removed.
// Unknown ids are ignored.
func (s Set) Without(ids []string) Set {
	if len(ids) == 0 {
		return s
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := make(Set, 0, len(s))
	for _, r := range s {
		if !drop[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// matchFuncs is the registry of named match functions referenced by
// KindFunction rules, including rules loaded from YAML.
var matchFuncs = map[string]MatchFunc{
	"untrusted-action-ref": matchUntrustedActionRef,
}

var usesRefPattern = regexp.MustCompile(`(?i)^\s*-?\s*uses:\s*["']?([^\s"'#]+)`)

// firstPartyOwners are action namespaces exempt from third-party review.
var firstPartyOwners = map[string]bool{
	"actions": true,
	"github":  true,
}

// matchUntrustedActionRef reports whether the line references an action
// outside the first-party namespaces. Local paths and docker refs are
// excluded: local actions ship with the repository, and docker refs are
// covered by image policy rather than action review.
func matchUntrustedActionRef(line string) bool {
	m := usesRefPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	ref := m[1]
	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "docker://") {
		return false
	}
	owner, rest, ok := strings.Cut(ref, "/")
	if !ok || rest == "" {
		return false
	}
	return !firstPartyOwners[strings.ToLower(owner)]
}

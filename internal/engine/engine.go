package engine

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/asrvd/repo-guardian/internal/config"
	"github.com/asrvd/repo-guardian/internal/rules"
)

// WorkflowFile is a single workflow definition supplied by a source
// provider. The engine never fetches content itself.
type WorkflowFile struct {
	Name    string `json:"name"`
	Content string `json:"-"`
}

// Finding represents one rule matching one line of one workflow file.
// Severity, description and remediation are copied from the rule at
// scan time, so later rule-set changes do not alter past findings.
type Finding struct {
	File        string               `json:"file"`
	Line        int                  `json:"line"`
	RuleID      string               `json:"rule_id"`
	Severity    config.SeverityLevel `json:"severity"`
	Description string               `json:"description"`
	Remediation string               `json:"remediation"`
	MatchedText string               `json:"matched_text"`
}

// Stats contains scan statistics
type Stats struct {
	FilesScanned int                          `json:"files_scanned"`
	FilesSkipped int                          `json:"files_skipped"`
	LinesScanned int                          `json:"lines_scanned"`
	BySeverity   map[config.SeverityLevel]int `json:"by_severity"`
}

// ScanResult is the outcome of scanning one repository's workflow
// files. Findings are ordered by input file order, then line order.
type ScanResult struct {
	Repository string    `json:"repository"`
	Succeeded  bool      `json:"succeeded"`
	Message    string    `json:"message"`
	Findings   []Finding `json:"findings"`
	Stats      Stats     `json:"stats"`
}

// Engine evaluates an ordered rule set against workflow text. It holds
// no mutable state: one engine may serve any number of concurrent scans.
type Engine struct {
	rules    rules.Set
	logger   *zap.Logger
	parallel int
}

// Option configures an Engine
type Option func(*Engine)

// WithParallelism bounds the number of files analyzed concurrently
// within one scan.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallel = n
		}
	}
}

// New creates an engine over a compiled rule set.
func New(set rules.Set, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		rules:    set,
		logger:   logger,
		parallel: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() rules.Set {
	return e.rules
}

// Scan evaluates every rule against every line of every file. Files are
// analyzed concurrently but findings are reassembled in input order, so
// output is deterministic for a given input. Cancelling ctx stops the
// scan between files and returns whatever was built so far.
func (e *Engine) Scan(ctx context.Context, repository string, files []WorkflowFile) ScanResult {
	result := ScanResult{
		Repository: repository,
		Succeeded:  true,
		Findings:   make([]Finding, 0),
		Stats:      Stats{BySeverity: make(map[config.SeverityLevel]int)},
	}

	perFile := make([][]Finding, len(files))
	perFileLines := make([]int, len(files))
	skipped := make([]bool, len(files))
	aborted := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)
	for i := range files {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				aborted[i] = true
				return nil
			default:
			}
			f := files[i]
			if !utf8.ValidString(f.Content) {
				e.logger.Warn("Skipping file with undecodable content",
					zap.String("file", f.Name))
				skipped[i] = true
				return nil
			}
			perFile[i], perFileLines[i] = e.scanFile(f)
			return nil
		})
	}
	g.Wait()

	for i := range files {
		// Files never analyzed because the scan was cancelled do not
		// count as scanned or skipped.
		if aborted[i] {
			continue
		}
		if skipped[i] {
			result.Stats.FilesSkipped++
			continue
		}
		result.Stats.FilesScanned++
		result.Stats.LinesScanned += perFileLines[i]
		for _, finding := range perFile[i] {
			result.Findings = append(result.Findings, finding)
			result.Stats.BySeverity[finding.Severity]++
		}
	}

	result.Message = fmt.Sprintf("scanned %d workflow files, %d findings",
		result.Stats.FilesScanned, len(result.Findings))

	e.logger.Info("Scan completed",
		zap.String("repository", repository),
		zap.Int("files", result.Stats.FilesScanned),
		zap.Int("findings", len(result.Findings)))

	return result
}

// scanFile evaluates the rule set against one file's lines. Every rule
// is evaluated independently per line: one line may yield several
// findings, in rule-set order.
func (e *Engine) scanFile(f WorkflowFile) ([]Finding, int) {
	var findings []Finding

	lines := strings.Split(f.Content, "\n")
	for lineNum, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		for i := range e.rules {
			rule := &e.rules[i]
			if rule.Match(line) {
				findings = append(findings, Finding{
					File:        f.Name,
					Line:        lineNum + 1,
					RuleID:      rule.ID,
					Severity:    rule.Severity,
					Description: rule.Description,
					Remediation: rule.Remediation,
					MatchedText: strings.TrimSpace(line),
				})
			}
		}
	}

	return findings, len(lines)
}

// ScanFailure builds the result for a repository whose workflow source
// could not be retrieved at all. This is a normal, reportable outcome
// for one unit of work, not a fault: a caller scanning many
// repositories carries on with the rest.
func ScanFailure(repository string, err error) ScanResult {
	return ScanResult{
		Repository: repository,
		Succeeded:  false,
		Message:    fmt.Sprintf("failed to retrieve workflow files: %v", err),
		Findings:   make([]Finding, 0),
		Stats:      Stats{BySeverity: make(map[config.SeverityLevel]int)},
	}
}

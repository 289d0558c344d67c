package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/asrvd/repo-guardian/internal/config"
	"github.com/asrvd/repo-guardian/internal/engine"
)

// Sink receives a scan result and its rendered report. Implementations
// may print, write files, or persist; the engine never knows.
type Sink interface {
	Write(result engine.ScanResult, report string) error
}

// Reporter renders scan results and forwards them to a sink.
type Reporter struct {
	config *config.Config
	logger *zap.Logger
}

// New creates a new reporter instance
func New(cfg *config.Config, logger *zap.Logger) *Reporter {
	return &Reporter{
		config: cfg,
		logger: logger,
	}
}

// Generate renders the result in the configured format and hands it to
// the configured destination (stdout, or a file when one is set).
func (r *Reporter) Generate(result engine.ScanResult, generatedAt time.Time) error {
	var output string

	switch strings.ToLower(r.config.Format) {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		output = string(data) + "\n"
	case "markdown", "":
		output = engine.Render(result, generatedAt)
	default:
		return fmt.Errorf("unsupported output format: %s", r.config.Format)
	}

	var sink Sink
	switch {
	case r.config.OutputFile != "":
		sink = &File{Path: r.config.OutputFile, Logger: r.logger}
	case r.config.OutputDir != "":
		sink = &File{
			Path:   filepath.Join(r.config.OutputDir, ReportFileName(result.Repository, generatedAt)),
			Logger: r.logger,
		}
	default:
		sink = &Console{}
	}

	return sink.Write(result, output)
}

// ReportFileName returns the conventional report file name for a
// repository scanned at the given time.
func ReportFileName(repository string, at time.Time) string {
	// Slashes in "owner/repo" identifiers would otherwise nest directories.
	safe := strings.ReplaceAll(repository, "/", "-")
	return fmt.Sprintf("%s-workflow-scan-%s.md", safe, at.Format("2006-01-02"))
}

// Console writes the report to stdout.
type Console struct{}

func (c *Console) Write(_ engine.ScanResult, report string) error {
	_, err := fmt.Print(report)
	return err
}

// File writes the report to a single file path.
type File struct {
	Path   string
	Logger *zap.Logger
}

func (f *File) Write(_ engine.ScanResult, report string) error {
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(f.Path, []byte(report), 0644); err != nil {
		return fmt.Errorf("failed to write report to file: %w", err)
	}
	if f.Logger != nil {
		f.Logger.Info("Report written", zap.String("file", f.Path))
	}
	return nil
}

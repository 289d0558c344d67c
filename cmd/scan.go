package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/asrvd/repo-guardian/internal/config"
	"github.com/asrvd/repo-guardian/internal/engine"
	"github.com/asrvd/repo-guardian/internal/history"
	"github.com/asrvd/repo-guardian/internal/reporter"
	"github.com/asrvd/repo-guardian/internal/rules"
	"github.com/asrvd/repo-guardian/internal/source"
)

func runScan(cmd *cobra.Command, args []string) error {
	logger := initLogger()
	defer logger.Sync()

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	cfg := loadConfig()

	// A single --output file would be overwritten once per path.
	if cfg.OutputFile != "" && len(paths) > 1 {
		return fmt.Errorf("--output writes a single file; use --output-dir when scanning %d paths", len(paths))
	}

	set, err := rules.Active(cfg)
	if err != nil {
		return fmt.Errorf("failed to build rule set: %w", err)
	}
	eng := engine.New(set, logger, engine.WithParallelism(cfg.Parallel))

	var store *history.Store
	if !cfg.NoHistory {
		store, err = history.Open(cfg.HistoryDB, logger)
		if err != nil {
			logger.Warn("Scan history unavailable", zap.Error(err))
		} else {
			defer store.Close()
		}
	}

	ctx := context.Background()
	minSeverity := config.ParseSeverity(cfg.MinSeverity)
	rep := reporter.New(cfg, logger)

	var failed, flagged int
	for _, path := range paths {
		// Each path is an independent unit of work: a retrieval failure
		// on one repository never aborts the rest.
		result := scanOne(ctx, eng, cfg, logger, path)
		now := time.Now()

		if err := rep.Generate(result, now); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
		if store != nil {
			if err := store.Save(ctx, result, now); err != nil {
				logger.Warn("Failed to record scan history", zap.Error(err))
			}
		}

		if !result.Succeeded {
			failed++
			continue
		}
		for _, f := range result.Findings {
			if f.Severity >= minSeverity {
				flagged++
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scans failed to retrieve workflow files", failed, len(paths))
	}
	if flagged > 0 {
		return fmt.Errorf("found %d issues at or above %s severity", flagged, minSeverity)
	}
	return nil
}

// scanOne resolves one path to a workflow directory, retrieves its
// files and runs the engine. Retrieval failures become failed results,
// not errors.
func scanOne(ctx context.Context, eng *engine.Engine, cfg *config.Config, logger *zap.Logger, path string) engine.ScanResult {
	repo := cfg.Repository
	if repo == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		repo = filepath.Base(abs)
	}

	dir := resolveWorkflowDir(path)
	provider, err := source.NewFilesystem(dir, cfg, logger)
	if err != nil {
		return engine.ScanFailure(repo, err)
	}

	files, err := provider.Workflows(ctx)
	if err != nil {
		return engine.ScanFailure(repo, err)
	}

	return eng.Scan(ctx, repo, files)
}

// resolveWorkflowDir prefers the conventional .github/workflows
// subdirectory when present, falling back to the path itself so any
// directory of workflow files can be scanned directly.
func resolveWorkflowDir(path string) string {
	conventional := filepath.Join(path, ".github", "workflows")
	if info, err := os.Stat(conventional); err == nil && info.IsDir() {
		return conventional
	}
	return path
}

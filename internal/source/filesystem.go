package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/asrvd/repo-guardian/internal/config"
	"github.com/asrvd/repo-guardian/internal/engine"
)

// Provider supplies workflow files for one scan. Fetching,
// authentication and pagination are the provider's responsibility;
// the engine only sees (name, content) pairs.
type Provider interface {
	Workflows(ctx context.Context) ([]engine.WorkflowFile, error)
}

// Filesystem reads workflow files from a local directory tree.
type Filesystem struct {
	dir        string
	extensions []string
	ignore     []glob.Glob
	logger     *zap.Logger
}

// NewFilesystem creates a provider rooted at dir. Ignore patterns from
// the configuration are compiled once; an invalid pattern fails
// construction rather than silently matching nothing.
func NewFilesystem(dir string, cfg *config.Config, logger *zap.Logger) (*Filesystem, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ignore := make([]glob.Glob, 0, len(cfg.Rules.IgnorePatterns))
	for _, pattern := range cfg.Rules.IgnorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		ignore = append(ignore, g)
	}

	extensions := cfg.Rules.WorkflowExtensions
	if len(extensions) == 0 {
		extensions = []string{".yml", ".yaml"}
	}

	return &Filesystem{
		dir:        dir,
		extensions: extensions,
		ignore:     ignore,
		logger:     logger,
	}, nil
}

// Workflows walks the directory and returns workflow files in sorted
// name order. A missing or unreadable root is a retrieval failure;
// non-workflow files are skipped silently and unreadable individual
// files are skipped with a warning.
func (f *Filesystem) Workflows(ctx context.Context) ([]engine.WorkflowFile, error) {
	if _, err := os.Stat(f.dir); err != nil {
		return nil, fmt.Errorf("workflow directory unavailable: %w", err)
	}

	var files []engine.WorkflowFile
	err := filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, relErr := filepath.Rel(f.dir, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if f.ignored(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !f.isWorkflowFile(path) || f.ignored(rel) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			f.logger.Warn("Failed to read workflow file",
				zap.String("file", path), zap.Error(readErr))
			return nil
		}
		files = append(files, engine.WorkflowFile{
			Name:    rel,
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk workflow directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func (f *Filesystem) isWorkflowFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range f.extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (f *Filesystem) ignored(rel string) bool {
	for _, g := range f.ignore {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

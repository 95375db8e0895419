package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Orchestrator coordinates running a Pipeline over the files of a local directory.
type Orchestrator struct {
	cfg   PipelineConfig
	makeW func(p Pipeline, cfg PipelineConfig) *Worker
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(cfg PipelineConfig) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		makeW: NewWorker,
	}
}

// Run processes files with a single Worker batch.
func (o *Orchestrator) Run(ctx context.Context, p Pipeline, files []string) (*BatchReport, error) {
	if len(files) == 0 {
		return &BatchReport{PipelineName: p.Name(), Status: StatusCompleted}, nil
	}

	return o.makeW(p, o.cfg).ProcessBatch(ctx, files)
}

// RunDir discovers the files in dir with one of exts and runs them.
func (o *Orchestrator) RunDir(ctx context.Context, p Pipeline, dir string, exts ...string) (*BatchReport, error) {
	files, err := DiscoverFiles(dir, exts...)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, p, files)
}

// DiscoverFiles lists regular files in dir (non-recursive) whose extension is
// one of exts, sorted by name. Hidden files and Office lock files are skipped.
func DiscoverFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", dir, err)
	}

	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[strings.ToLower(filepath.Ext(name))]; !ok {
				continue
			}
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

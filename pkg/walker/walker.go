// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package walker enumerates source files under a root directory and rewrites
// them in place, one at a time, using a compiled rule list.
package walker

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/logshift/pkg/config"
	"github.com/walteh/logshift/pkg/log"
	"github.com/walteh/logshift/pkg/rewrite"
	"github.com/walteh/logshift/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains configuration for the walker
type Options struct {
	// Config is the logshift configuration
	Config *config.Config
	// Rewriter applies the substitution rules to file content
	Rewriter rewrite.Rewriter
	// StatusMgr handles file I/O and per-file outcome tracking
	StatusMgr *status.Manager
	// Console renders the per-file progress lines
	Console *log.Logger
	// UserLogger provides per-file user feedback for skipped files
	UserLogger *log.UserLogger
}

// 📊 Summary describes one completed migration run
type Summary struct {
	Scanned      int // Files matching the target extensions
	Rewritten    int // Files whose content changed
	Unchanged    int // Files processed with no matching call sites
	Skipped      int // Files excluded by an ignore pattern
	Replacements int // Total call sites and import lines rewritten
}

// 🚶 Walker runs a migration over a directory tree
type Walker struct {
	cfg        *config.Config
	rules      []rewrite.Rule
	rewriter   rewrite.Rewriter
	statusMgr  *status.Manager
	console    *log.Logger
	userLogger *log.UserLogger
}

// 🏭 New creates a new walker with the given options
func New(opts Options) (*Walker, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Rewriter == nil {
		return nil, errors.Errorf("rewriter is required")
	}
	if opts.StatusMgr == nil {
		return nil, errors.Errorf("status manager is required")
	}
	if opts.Console == nil {
		return nil, errors.Errorf("console logger is required")
	}

	rules, err := opts.Config.Migration.Compile()
	if err != nil {
		return nil, errors.Errorf("compiling migration rules: %w", err)
	}
	if err := opts.Rewriter.ValidateRules(rules); err != nil {
		return nil, errors.Errorf("validating rules: %w", err)
	}

	return &Walker{
		cfg:        opts.Config,
		rules:      rules,
		rewriter:   opts.Rewriter,
		statusMgr:  opts.StatusMgr,
		console:    opts.Console,
		userLogger: opts.UserLogger,
	}, nil
}

// 🏃 Run walks the tree and rewrites every matching file in place. Files are
// processed strictly one at a time; the first failure aborts the run and
// already-rewritten files stay rewritten.
func (w *Walker) Run(ctx context.Context) (*Summary, error) {
	logger := zerolog.Ctx(ctx)

	w.console.StartRun(ctx, log.RunOperation{
		Root:       w.cfg.Root,
		Extensions: w.cfg.Extensions,
		Migration:  w.cfg.Migration.FromFacility + " -> " + w.cfg.Migration.ToFacility,
	})
	defer w.console.EndRun(ctx)

	// Enumerate matching files up front so progress has a total
	files, skipped, err := w.listFiles(ctx)
	if err != nil {
		return nil, errors.Errorf("listing files under %s: %w", w.cfg.Root, err)
	}

	summary := &Summary{
		Scanned: len(files) + len(skipped),
		Skipped: len(skipped),
	}

	for _, file := range skipped {
		w.statusMgr.TrackFile(ctx, file, status.FileInfo{
			Path:   file,
			Status: status.StatusSkipped,
		})
		if w.userLogger != nil {
			w.userLogger.LogFileChange(log.FileChange{
				Type:        log.FileSkipped,
				Path:        file,
				Description: "ignored by pattern",
			})
		}
	}

	w.statusMgr.StartOperation(ctx, len(files))
	defer w.statusMgr.FinishOperation(ctx)

	for i, file := range files {
		if err := w.processFile(ctx, file, summary); err != nil {
			w.statusMgr.TrackFile(ctx, file, status.FileInfo{
				Path:   file,
				Status: status.StatusError,
				Error:  err,
			})
			return nil, errors.Errorf("processing file %s: %w", file, err)
		}
		w.statusMgr.UpdateProgress(ctx, i+1)
	}

	logger.Debug().
		Int("rewritten", summary.Rewritten).
		Int("unchanged", summary.Unchanged).
		Int("skipped", summary.Skipped).
		Int("replacements", summary.Replacements).
		Msg("run complete")

	return summary, nil
}

// 📄 processFile reads, rewrites and writes back a single file. Content is
// written back even when no rule matched, matching the one-shot in-place
// contract.
func (w *Walker) processFile(ctx context.Context, file string, summary *Summary) error {
	content, err := w.statusMgr.ReadFile(ctx, file)
	if err != nil {
		return errors.Errorf("reading: %w", err)
	}

	result, err := w.rewriter.Rewrite(ctx, bytes.NewReader(content), w.rules)
	if err != nil {
		return errors.Errorf("rewriting: %w", err)
	}

	if err := w.statusMgr.WriteFileInPlace(ctx, file, result.ModifiedContent); err != nil {
		return errors.Errorf("writing: %w", err)
	}

	fileStatus := status.StatusUnchanged
	if result.WasModified {
		fileStatus = status.StatusRewritten
		summary.Rewritten++
		summary.Replacements += result.ReplacementCount
	} else {
		summary.Unchanged++
	}

	w.statusMgr.TrackFile(ctx, file, status.FileInfo{
		Path:         file,
		Status:       fileStatus,
		Replacements: result.ReplacementCount,
	})

	w.console.LogFileOperation(ctx, log.FileOperation{
		Path:         file,
		Status:       fileStatus.String(),
		IsRewritten:  result.WasModified,
		Replacements: result.ReplacementCount,
	})

	return nil
}

// 📋 listFiles enumerates files under the root in lexical walk order,
// returning paths relative to the root. Files without a matching extension
// are never opened and never reported; files excluded by an ignore pattern
// are returned separately.
func (w *Walker) listFiles(ctx context.Context) (files, skipped []string, err error) {
	walkErr := filepath.WalkDir(w.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !w.matchesExtension(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(w.cfg.Root, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}

		if w.shouldIgnore(rel) {
			skipped = append(skipped, rel)
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if walkErr != nil {
		return nil, nil, walkErr
	}
	return files, skipped, nil
}

// 🔍 matchesExtension checks whether a file name ends in a target extension
func (w *Walker) matchesExtension(name string) bool {
	for _, ext := range w.cfg.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// 🙈 shouldIgnore checks if a relative path matches any ignore pattern
func (w *Walker) shouldIgnore(path string) bool {
	for _, pattern := range w.cfg.IgnorePatterns {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

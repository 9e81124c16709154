// Copyright 2025 SentinelAI Systems
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

package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sentinelai/sentinel/ingestion"
)

const (
	// ProcessedDirName is the inbox subdirectory for ingested files.
	ProcessedDirName = "processed"

	// ErrorDirName is the inbox subdirectory for files that failed.
	ErrorDirName = "error"

	// DefaultStabilityWindow is how long a file's size must stay
	// unchanged before it is considered fully written.
	DefaultStabilityWindow = 2 * time.Second

	// maxStabilityChecks bounds the wait for files that keep growing.
	maxStabilityChecks = 30
)

// Watcher picks up documents dropped into the inbox directory and runs
// them through the ingestion pipeline.
type Watcher struct {
	inbox        string
	processedDir string
	errorDir     string
	pipeline     *ingestion.Pipeline
	fsw          *fsnotify.Watcher
	stability    time.Duration
	logger       *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// WithStabilityWindow overrides how long a file's size must remain
// unchanged before ingestion starts.
func WithStabilityWindow(d time.Duration) Option {
	return func(w *Watcher) error {
		if d > 0 {
			w.stability = d
		}
		return nil
	}
}

// NewWatcher creates the inbox, processed and error directories if
// needed and starts watching the inbox.
func NewWatcher(inbox string, pipeline *ingestion.Pipeline, opts ...Option) (*Watcher, error) {
	if inbox == "" {
		return nil, ErrInboxRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}

	w := &Watcher{
		inbox:        inbox,
		processedDir: filepath.Join(inbox, ProcessedDirName),
		errorDir:     filepath.Join(inbox, ErrorDirName),
		pipeline:     pipeline,
		stability:    DefaultStabilityWindow,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	w.logger = w.logger.With("component", "watcher")

	for _, dir := range []string{w.inbox, w.processedDir, w.errorDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(w.inbox); err != nil {
		fsw.Close()
		return nil, err
	}
	w.fsw = fsw

	return w, nil
}

// Run sweeps files already sitting in the inbox, then processes new
// arrivals until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.logger.Info("watching inbox", "dir", w.inbox)

	if err := w.sweep(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.eligible(event.Name) {
				continue
			}
			w.process(ctx, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "err", err)
		}
	}
}

// sweep processes files that were already in the inbox before the
// watcher started.
func (w *Watcher) sweep(ctx context.Context) error {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.inbox, entry.Name())
		if !w.eligible(path) {
			continue
		}
		w.process(ctx, path)
	}
	return nil
}

// eligible filters out directories, hidden files and editor temp files.
func (w *Watcher) eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".tmp", ".part", ".swp", ".crdownload", ".log":
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		// Already moved or deleted between event and check
		return false
	}
	return info.Mode().IsRegular()
}

// process ingests one file and moves it to processed/ or error/.
func (w *Watcher) process(ctx context.Context, path string) {
	base := filepath.Base(path)

	if err := w.waitStable(ctx, path); err != nil {
		w.logger.Warn("skipping unstable file", "file", base, "err", err)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Error("error reading inbox file", "file", base, "err", err)
		return
	}

	doc, err := w.pipeline.Ingest(ctx, base, data, "")
	if err != nil {
		w.logger.Error("error ingesting inbox file", "file", base, "err", err)
		w.moveToError(path, err)
		return
	}

	w.logger.Info("inbox file ingested", "file", base, "document", doc.Id)

	if _, err := moveInto(w.processedDir, path); err != nil {
		w.logger.Error("error moving processed file", "file", base, "err", err)
	}
}

// waitStable blocks until the file size has stayed unchanged for the
// stability window, so half-copied files are not ingested.
func (w *Watcher) waitStable(ctx context.Context, path string) error {
	lastSize := int64(-1)

	for i := 0; i < maxStabilityChecks; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.stability):
		}
	}
	return fmt.Errorf("file %q kept growing", filepath.Base(path))
}

// moveToError moves a failed file to error/ and writes a .log file next
// to it with the failure reason.
func (w *Watcher) moveToError(path string, cause error) {
	dest, err := moveInto(w.errorDir, path)
	if err != nil {
		w.logger.Error("error moving failed file", "file", filepath.Base(path), "err", err)
		return
	}

	logPath := dest + ".log"
	content := fmt.Sprintf("%s: ingestion failed: %v\n", time.Now().Format(time.RFC3339), cause)
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		w.logger.Error("error writing failure log", "file", logPath, "err", err)
	}
}

// moveInto renames a file into dir, appending a timestamp to the name
// when a file with the same name is already there.
func moveInto(dir, path string) (string, error) {
	base := filepath.Base(path)
	dest := filepath.Join(dir, base)

	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		dest = filepath.Join(dir, fmt.Sprintf("%s.%s%s", stem, time.Now().Format("20060102-150405.000"), ext))
	}

	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

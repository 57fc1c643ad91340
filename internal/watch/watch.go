// Package watch monitors the inbox directory and hands newly dropped
// recordings to the pipeline.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"minutes/internal/logging"
)

// Handler processes one recording dropped into the inbox.
type Handler func(ctx context.Context, path string) error

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".wma":  true,
}

// Watcher monitors one inbox directory. Recordings are handled one at a
// time in arrival order; the pipeline never runs chunks or meetings in
// parallel.
type Watcher struct {
	dir     string
	handler Handler
	logger  *slog.Logger
	fw      *fsnotify.Watcher

	// settle controls how long a file must stop growing before it is
	// considered fully written.
	settle      time.Duration
	settleLimit time.Duration
}

// New builds a watcher over the given inbox directory.
func New(dir string, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create inbox watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:         dir,
		handler:     handler,
		logger:      logging.NewComponentLogger(logger, "watch"),
		fw:          fw,
		settle:      500 * time.Millisecond,
		settleLimit: 2 * time.Minute,
	}, nil
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// Run processes the inbox until the context is cancelled. Files already
// sitting in the inbox are handled before new events.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching inbox", logging.String("dir", w.dir))

	if err := w.processBacklog(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fw.Events:
			if !ok {
				return fmt.Errorf("inbox watcher closed")
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			w.handle(ctx, event.Name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return fmt.Errorf("inbox watcher closed")
			}
			w.logger.Warn("inbox watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) processBacklog(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			continue
		}
		w.handle(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

func (w *Watcher) handle(ctx context.Context, path string) {
	if !IsAudioFile(path) {
		w.logger.Debug("ignoring non-audio file", logging.String("path", path))
		return
	}
	if err := w.waitSettled(ctx, path); err != nil {
		w.logger.Warn("recording never settled", logging.String("path", path), logging.Error(err))
		return
	}
	w.logger.Info("recording detected", logging.String("path", path))
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error("processing failed", logging.String("path", path), logging.Error(err))
	}
}

// waitSettled waits until the file size stops changing between polls, so
// a recording still being copied into the inbox is not picked up half
// written.
func (w *Watcher) waitSettled(ctx context.Context, path string) error {
	deadline := time.Now().Add(w.settleLimit)
	var lastSize int64 = -1
	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()
		if time.Now().After(deadline) {
			return fmt.Errorf("still growing after %s", w.settleLimit)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.settle):
		}
	}
}

// IsAudioFile reports whether the path has a recognized recording
// extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

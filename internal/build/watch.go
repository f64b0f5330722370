package build

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/conneroisu/prime-website/internal/logging"
	"github.com/conneroisu/prime-website/internal/watcher"
)

// WatchLoop re-runs the tasks whose source trees changed.
type WatchLoop struct {
	pipeline     *Pipeline
	runner       *Runner
	fingerprints *Fingerprinter
	logger       logging.Logger
	mutex        chanMutex
}

// chanMutex serialises rebuilds; a batch arriving mid-build waits.
type chanMutex chan struct{}

func (m chanMutex) lock(ctx context.Context) bool {
	select {
	case m <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (m chanMutex) unlock() { <-m }

// NewWatchLoop creates a loop that rebuilds through runner.
func NewWatchLoop(pipeline *Pipeline, runner *Runner, logger logging.Logger) *WatchLoop {
	return &WatchLoop{
		pipeline:     pipeline,
		runner:       runner,
		fingerprints: NewFingerprinter(),
		logger:       logger.WithComponent("watch"),
		mutex:        make(chanMutex, 1),
	}
}

// Prime records the current fingerprint of every watched tree so the first
// batch of events only rebuilds what actually changed.
func (w *WatchLoop) Prime() {
	for _, target := range w.pipeline.WatchTargets() {
		if _, err := w.fingerprints.Changed(target.Task, target.Dir, target.Pattern); err != nil {
			w.logger.Warn(context.Background(), err, "Failed to fingerprint sources", "dir", target.Dir)
		}
	}
}

// Watch registers the watched trees with fw and handles its batches.
func (w *WatchLoop) Watch(fw *watcher.FileWatcher) error {
	fw.AddFilter(watcher.NoGitFilter)
	fw.AddFilter(watcher.NoEditorTempFilter)
	fw.AddFilter(watcher.ExcludeDirFilter(w.pipeline.config.OutputDir))

	for _, target := range w.pipeline.WatchTargets() {
		if err := fw.AddRecursive(target.Dir); err != nil {
			return err
		}
	}
	fw.AddHandler(w.Handle)
	return nil
}

// Handle runs, in watch-target order, each task with a changed event under
// its tree and a changed fingerprint. Failures are logged; watching goes on.
func (w *WatchLoop) Handle(ctx context.Context, events []watcher.ChangeEvent) error {
	if !w.mutex.lock(ctx) {
		return ctx.Err()
	}
	defer w.mutex.unlock()

	op := logging.StartOperation(w.logger, "rebuild")
	var rebuilt int
	var failures []error
	for _, target := range w.affected(events) {
		changed, err := w.fingerprints.Changed(target.Task, target.Dir, target.Pattern)
		if err != nil {
			w.logger.Warn(ctx, err, "Failed to fingerprint sources", "dir", target.Dir)
		}
		if !changed {
			w.logger.Debug(ctx, "Sources unchanged, skipping", "task", target.Task)
			continue
		}

		task, err := w.pipeline.Registry().Get(target.Task)
		if err != nil {
			return err
		}
		rebuilt++
		// The runner already logged the failure with its step name.
		if _, err := w.runner.Run(ctx, task); err != nil {
			failures = append(failures, err)
		}
	}

	switch {
	case rebuilt == 0:
	case len(failures) > 0:
		op.EndWithError(ctx, stderrors.Join(failures...), "Rebuild failed", "tasks", rebuilt)
	default:
		op.End(ctx, "Rebuild finished", "tasks", rebuilt)
	}
	return nil
}

func (w *WatchLoop) affected(events []watcher.ChangeEvent) []WatchTarget {
	var out []WatchTarget
	for _, target := range w.pipeline.WatchTargets() {
		for _, event := range events {
			if within(target.Dir, event.Path) {
				out = append(out, target)
				break
			}
		}
	}
	return out
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Package watcher turns fsnotify events into debounced batches of changes.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/prime-website/internal/logging"
)

// FileWatcher watches directory trees and delivers debounced change batches
// to its handlers.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	logger    logging.Logger
	filters   []FileFilter
	handlers  []ChangeHandler
	recursive map[string]bool
	mutex     sync.RWMutex
}

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter reports whether a path is interesting. All filters must accept
// a path for its events to be delivered.
type FileFilter func(path string) bool

// ChangeHandler handles one debounced batch of events.
type ChangeHandler func(ctx context.Context, events []ChangeEvent) error

// Debouncer groups rapid file changes together
type Debouncer struct {
	delay   time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending []ChangeEvent
	mutex   sync.Mutex
}

// NewDebouncer creates a debouncer that emits a batch once delay has passed
// without new events.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		events: make(chan ChangeEvent, 100),
		output: make(chan []ChangeEvent, 10),
	}
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(debounceDelay),
		logger:    logger.WithComponent("watcher"),
		recursive: make(map[string]bool),
	}, nil
}

// AddFilter adds a file filter
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath watches a single directory without its subdirectories. A missing
// directory is skipped.
func (fw *FileWatcher) AddPath(path string) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fw.logger.Debug(context.Background(), "Skipping missing watch path", "path", path)
		return nil
	}
	return fw.watcher.Add(path)
}

// AddRecursive watches root and every directory below it. Directories
// created later under root are picked up as they appear. A missing root is
// skipped.
func (fw *FileWatcher) AddRecursive(root string) error {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		fw.logger.Debug(context.Background(), "Skipping missing watch root", "path", root)
		return nil
	}

	fw.mutex.Lock()
	fw.recursive[root] = true
	fw.mutex.Unlock()

	return fw.addTree(root)
}

func (fw *FileWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Start starts the file watcher
func (fw *FileWatcher) Start(ctx context.Context) error {
	go fw.debouncer.start(ctx)
	go fw.processEvents(ctx)
	go fw.watchLoop(ctx)
	return nil
}

// Stop stops the file watcher and cleans up resources
func (fw *FileWatcher) Stop() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(ctx, event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(ctx context.Context, event fsnotify.Event) {
	info, statErr := os.Stat(event.Name)

	// New directories under a recursive root need their own watch.
	if statErr == nil && info.IsDir() {
		if event.Op&fsnotify.Create == fsnotify.Create && fw.underRecursiveRoot(event.Name) {
			if err := fw.addTree(event.Name); err != nil {
				fw.logger.Warn(ctx, err, "Failed to watch new directory", "path", event.Name)
			}
		}
		return
	}

	if !fw.accepts(event.Name) {
		return
	}

	changeEvent := ChangeEvent{Type: eventTypeOf(event.Op), Path: event.Name}
	if statErr == nil {
		changeEvent.ModTime = info.ModTime()
		changeEvent.Size = info.Size()
	}

	select {
	case fw.debouncer.events <- changeEvent:
	default:
		fw.logger.Debug(ctx, "Dropping file event, debouncer is full", "path", event.Name)
	}
}

func (fw *FileWatcher) accepts(path string) bool {
	fw.mutex.RLock()
	defer fw.mutex.RUnlock()
	for _, filter := range fw.filters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func (fw *FileWatcher) underRecursiveRoot(path string) bool {
	fw.mutex.RLock()
	defer fw.mutex.RUnlock()
	for root := range fw.recursive {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func eventTypeOf(op fsnotify.Op) EventType {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return EventTypeCreated
	case op&fsnotify.Write == fsnotify.Write:
		return EventTypeModified
	case op&fsnotify.Remove == fsnotify.Remove:
		return EventTypeDeleted
	case op&fsnotify.Rename == fsnotify.Rename:
		return EventTypeRenamed
	default:
		return EventTypeModified
	}
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-fw.debouncer.output:
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			for _, handler := range handlers {
				if err := handler(ctx, events); err != nil {
					fw.logger.Error(ctx, err, "File watcher handler error", "events", len(events))
				}
			}
		}
	}
}

func (d *Debouncer) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.stop()
			return
		case event := <-d.events:
			d.addEvent(event)
		}
	}
}

func (d *Debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) addEvent(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	// Last event per path wins.
	latest := make(map[string]ChangeEvent, len(d.pending))
	for _, event := range d.pending {
		latest[event.Path] = event
	}

	events := make([]ChangeEvent, 0, len(latest))
	for _, event := range latest {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })

	select {
	case d.output <- events:
	default:
	}

	d.pending = d.pending[:0]
}

// ExcludeDirFilter rejects anything inside dir.
func ExcludeDirFilter(dir string) FileFilter {
	dir = filepath.Clean(dir)
	return func(path string) bool {
		path = filepath.Clean(path)
		return path != dir && !strings.HasPrefix(path, dir+string(filepath.Separator))
	}
}

// NoGitFilter rejects paths inside a .git directory.
func NoGitFilter(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".git" {
			return false
		}
	}
	return true
}

// NoEditorTempFilter rejects swap and backup files written by editors.
func NoEditorTempFilter(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, ".#"),
		base == "4913":
		return false
	}
	return true
}

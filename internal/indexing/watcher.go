package indexing

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
	lserrors "github.com/mathworks/MATLAB-language-server-sub001/internal/errors"
	"github.com/mathworks/MATLAB-language-server-sub001/pkg/pathutil"
)

// FileWatcher re-indexes source files changed on disk outside the editor.
// Events are debounced per path with the same delay as document edits, so a
// build touching many files collapses into one index per file.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	indexer  *Indexer
	settings *config.Manager

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewFileWatcher creates a watcher bound to the indexing facade.
func NewFileWatcher(ix *Indexer, settings *config.Manager) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &FileWatcher{
		watcher:  watcher,
		indexer:  ix,
		settings: settings,
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the given workspace folders recursively. No-op when
// watch mode is disabled by configuration.
func (fw *FileWatcher) Start(folders []string) error {
	if !fw.settings.Get().WatchMode {
		debug.LogIndexing("file watching disabled by configuration")
		return nil
	}

	for _, folder := range folders {
		if err := fw.addWatchesUnder(folder); err != nil {
			return err
		}
	}

	fw.wg.Add(1)
	go fw.processEvents()
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (fw *FileWatcher) Stop() {
	fw.cancel()
	_ = fw.watcher.Close()
	fw.wg.Wait()

	fw.mu.Lock()
	for _, t := range fw.timers {
		t.Stop()
	}
	fw.timers = make(map[string]*time.Timer)
	fw.mu.Unlock()
}

func (fw *FileWatcher) addWatchesUnder(root string) error {
	settings := fw.settings.Get()
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && rel != "." && excluded(rel+"/", settings.Exclude) {
			return filepath.SkipDir
		}
		if watchErr := fw.watcher.Add(path); watchErr != nil {
			debug.LogIndexing("cannot watch %s: %v", path, watchErr)
		}
		return nil
	})
}

func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			debug.LogIndexing("watcher error: %v", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	// New directories need their own watch for recursion.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			_ = fw.addWatchesUnder(path)
			return
		}
	}

	if !pathutil.IsMATLABFile(path) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		fw.cancelTimer(path)
		fw.indexer.FileIndex().Delete(path)
	case event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create):
		fw.scheduleReindex(path)
	}
}

func (fw *FileWatcher) scheduleReindex(path string) {
	delay := time.Duration(fw.settings.Get().DebounceMs) * time.Millisecond

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if t, ok := fw.timers[path]; ok {
		t.Stop()
	}
	fw.timers[path] = time.AfterFunc(delay, func() {
		fw.mu.Lock()
		delete(fw.timers, path)
		fw.mu.Unlock()

		content, err := os.ReadFile(path)
		if err != nil {
			debug.LogIndexing("%v", lserrors.NewIndexingError("watch reindex", err).WithFile(path))
			return
		}
		fw.indexer.IndexDocument(fw.ctx, path, string(content))
	})
}

func (fw *FileWatcher) cancelTimer(path string) {
	fw.mu.Lock()
	if t, ok := fw.timers[path]; ok {
		t.Stop()
		delete(fw.timers, path)
	}
	fw.mu.Unlock()
}

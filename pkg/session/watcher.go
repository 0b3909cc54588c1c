package session

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// CatalogEvent describes a change observed in the catalog root.
type CatalogEvent struct {
	SessionID string
	Removed   bool
}

// CatalogEventCallback is invoked for each debounced catalog change.
type CatalogEventCallback func(event CatalogEvent)

// CatalogWatcher monitors the catalog root for session file changes and
// keeps the active-sessions gauge current. Events for the same session are
// debounced so a burst of appends produces one callback.
type CatalogWatcher struct {
	watcher        *fsnotify.Watcher
	store          *Store
	debounceWindow time.Duration
	onEvent        CatalogEventCallback
	done           chan struct{}
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex
	stopOnce       sync.Once
}

// NewCatalogWatcher creates a watcher over the store's catalog root.
func NewCatalogWatcher(store *Store, debounceWindow time.Duration, onEvent CatalogEventCallback) (*CatalogWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if debounceWindow == 0 {
		debounceWindow = 100 * time.Millisecond
	}

	return &CatalogWatcher{
		watcher:        watcher,
		store:          store,
		debounceWindow: debounceWindow,
		onEvent:        onEvent,
		done:           make(chan struct{}),
		debounceTimers: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the catalog root.
func (w *CatalogWatcher) Start() error {
	if err := w.watcher.Add(w.store.Root()); err != nil {
		return fmt.Errorf("failed to watch catalog root: %w", err)
	}

	go w.eventLoop()

	log.Info().Str("dir", w.store.Root()).Msg("Catalog watcher started")

	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *CatalogWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.debounceMu.Lock()
		for _, timer := range w.debounceTimers {
			timer.Stop()
		}
		w.debounceTimers = make(map[string]*time.Timer)
		w.debounceMu.Unlock()

		log.Info().Msg("Catalog watcher stopped")
	})
}

func (w *CatalogWatcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Catalog watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *CatalogWatcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, logSuffix) {
		return
	}
	id := strings.TrimSuffix(name, logSuffix)

	removed := event.Op&(fsnotify.Remove|fsnotify.Rename) != 0

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[id]; exists {
		timer.Stop()
	}

	w.debounceTimers[id] = time.AfterFunc(w.debounceWindow, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, id)
		w.debounceMu.Unlock()

		w.store.updateActiveSessionsMetric()

		if w.onEvent != nil {
			w.onEvent(CatalogEvent{SessionID: id, Removed: removed})
		}
	})
}

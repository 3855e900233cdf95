package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the configuration file when it changes on disk and hands
// every successfully parsed version to its callback.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	done     chan struct{}
	path     string
	debounce time.Duration
	onChange func(Config)
}

// NewWatcher starts watching the directory holding path. onChange runs on
// the watcher goroutine; callers hand the value over to the UI goroutine.
func NewWatcher(path string, onChange func(Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Printf("INFO: Watching %s for config changes (auto-reload enabled)", dir)

	w := &Watcher{
		watcher:  fw,
		done:     make(chan struct{}),
		path:     path,
		debounce: 300 * time.Millisecond,
		onChange: onChange,
	}
	go w.watchLoop(fw)
	return w, nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher == nil {
		return
	}
	close(w.done)
	w.watcher.Close()
	w.watcher = nil
	log.Printf("INFO: Configuration file watcher stopped")
}

func (w *Watcher) watchLoop(fw *fsnotify.Watcher) {
	// Editors write in bursts; reload once things settle.
	var debounceTimer *time.Timer
	target := filepath.Clean(w.path)

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Printf("ERROR: Config file watcher error: %v", err)

		case <-w.done:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	c, err := Load(w.path)
	if err != nil {
		log.Printf("WARN: Keeping previous configuration: %v", err)
		return
	}
	log.Printf("INFO: Configuration reloaded from %s", w.path)
	w.onChange(c)
}

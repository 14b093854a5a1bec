package agent

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/The-Promised-Neverland/estatus/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 500 * time.Millisecond

// ProfileWatcher keeps the current profile and reloads it when the file
// changes. The parent directory is watched so editors that replace the file
// are picked up.
type ProfileWatcher struct {
	path      string
	fsWatcher *fsnotify.Watcher
	mu        sync.RWMutex
	current   *Profile
	timer     *time.Timer
	timerMu   sync.Mutex
	reloaded  chan struct{}
	wg        sync.WaitGroup
}

func NewProfileWatcher(path string) (*ProfileWatcher, error) {
	profile, err := LoadProfile(path)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ProfileWatcher{
		path:      filepath.Clean(path),
		fsWatcher: fsWatcher,
		current:   profile,
		reloaded:  make(chan struct{}, 1),
	}, nil
}

func (w *ProfileWatcher) Current() *Profile {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Reloaded signals after each successful reload.
func (w *ProfileWatcher) Reloaded() <-chan struct{} {
	return w.reloaded
}

// Start watches until ctx is done; Stop waits for the loop to exit.
func (w *ProfileWatcher) Start(ctx context.Context) error {
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	logger.Log.Info("Profile watcher started", "path", w.path)
	w.wg.Add(1)
	go w.eventLoop(ctx)
	return nil
}

func (w *ProfileWatcher) Stop() {
	w.fsWatcher.Close()
	w.wg.Wait()
	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerMu.Unlock()
}

func (w *ProfileWatcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.debounce()
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("Profile watcher error", "err", err)
		}
	}
}

func (w *ProfileWatcher) debounce() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.reload)
}

// reload keeps the previous profile when the file is unreadable or invalid.
func (w *ProfileWatcher) reload() {
	profile, err := LoadProfile(w.path)
	if err != nil {
		logger.Log.Warn("Profile reload failed, keeping previous", "path", w.path, "err", err)
		return
	}
	w.mu.Lock()
	w.current = profile
	w.mu.Unlock()
	logger.Log.Info("Profile reloaded", "path", w.path, "name", profile.Name)
	select {
	case w.reloaded <- struct{}{}:
	default:
	}
}

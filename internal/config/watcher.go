package config

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of filesystem events an editor
// save produces into a single reload.
const debounceDelay = 100 * time.Millisecond

// Handler is called with the freshly loaded configuration after the
// watched file changes.
type Handler func(Config)

// Watcher reloads the configuration file when it changes on disk.
type Watcher struct {
	path    string
	fw      *fsnotify.Watcher
	handler Handler
	done    chan struct{}
	log     *slog.Logger
}

// Watch starts watching path and calls handler on every successful
// reload. The containing directory is watched rather than the file
// itself, so editors that replace the file by rename keep working.
func Watch(path string, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		fw:      fw,
		handler: handler,
		done:    make(chan struct{}),
		log:     logger,
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) loop() {
	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
				fire = debounce.C
			} else {
				debounce.Reset(debounceDelay)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", "error", err)
		case <-fire:
			debounce = nil
			fire = nil
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload failed", "error", err)
				continue
			}
			w.log.Debug("config reloaded", "path", w.path)
			w.handler(cfg)
		}
	}
}

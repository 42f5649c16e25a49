//go:build linux

// Package hotplug turns directory changes in the input device namespace into
// a pollable readiness handle.
package hotplug

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Alia5/capsule/internal/log"
	"github.com/Alia5/capsule/internal/notify"
)

// Watcher signals its Fd whenever an entry whose name contains the match
// string is created, removed or renamed in the watched directory.
type Watcher struct {
	dir    string
	match  string
	fs     *fsnotify.Watcher
	pipe   *notify.Pipe
	logger *slog.Logger
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// New starts watching dir. An empty match accepts every entry.
func New(dir, match string, logger *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create hotplug watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	pipe, err := notify.New()
	if err != nil {
		_ = fs.Close()
		return nil, err
	}

	w := &Watcher{
		dir:    dir,
		match:  match,
		fs:     fs,
		pipe:   pipe,
		logger: logger,
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Log(context.Background(), log.LevelTrace, "Input namespace changed", "name", ev.Name, "op", ev.Op.String())
			w.pipe.Signal()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			// A lost event may hide a device change; rescanning is cheap.
			w.logger.Warn("Hotplug watcher error", "dir", w.dir, "error", err)
			w.pipe.Signal()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return w.match == "" || strings.Contains(ev.Name, w.match)
}

// Fd becomes readable after a relevant change.
func (w *Watcher) Fd() int { return w.pipe.Fd() }

// Drain clears pending notifications.
func (w *Watcher) Drain() { w.pipe.Drain() }

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		err = errors.Join(err, w.pipe.Close())
	})
	return err
}

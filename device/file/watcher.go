/*
DESCRIPTION
  watcher.go provides an implementation of the FrameSource interface that
  yields frames as image files appear in a directory.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package file

import (
	"fmt"
	"io"

	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/opticflow/device"
	"github.com/ausocean/utils/logging"
)

// Watcher is a FrameSource returning image files in the order they are
// created in, or moved into, a watched directory.
type Watcher struct {
	log  logging.Logger
	w    *fsnotify.Watcher
	seen map[string]bool
}

// NewWatcher returns a Watcher on dir. Files already in dir are ignored.
func NewWatcher(l logging.Logger, dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create watcher: %w", err)
	}
	err = w.Add(dir)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("could not watch %s: %w", dir, err)
	}
	return &Watcher{log: l, w: w, seen: make(map[string]bool)}, nil
}

// Seen marks paths as already read so that later events for them are
// ignored. It must not be called concurrently with Next.
func (w *Watcher) Seen(paths ...string) {
	for _, p := range paths {
		w.seen[p] = true
	}
}

// Name returns the name of the device.
func (w *Watcher) Name() string { return "Watcher" }

// Next blocks until a new image file can be decoded, then returns it. A file
// that is still being written fails to decode and is retried on its next
// write event. Next returns io.EOF once the Watcher is closed.
func (w *Watcher) Next() (*device.Frame, error) {
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil, io.EOF
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !IsImage(ev.Name) || w.seen[ev.Name] {
				continue
			}
			p, err := Load(ev.Name)
			if err != nil {
				w.log.Debug("frame not ready", "path", ev.Name, "error", err.Error())
				continue
			}
			w.seen[ev.Name] = true
			w.log.Debug("read frame", "path", ev.Name, "rows", p.Rows, "cols", p.Cols)
			return &device.Frame{Source: ev.Name, Plane: p}, nil

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("watch error: %w", err)
		}
	}
}

// Close stops watching. Pending and future Next calls return io.EOF.
func (w *Watcher) Close() error {
	return w.w.Close()
}

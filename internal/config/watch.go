package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long Watch waits for further events after a change so that
// it does not read a file which is still being written.
const settle = 50 * time.Millisecond

// Watch calls fn with the reloaded settings each time the file at path is
// written, created, or replaced, until ctx is done. The directory is watched
// rather than the file because editors often save by renaming. Load errors
// are passed to fn with a nil Config.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return err
	}
	go func() {
		defer w.Close()
		var timer <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					timer = time.After(settle)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				fn(nil, err)
			case <-timer:
				timer = nil
				fn(Load(path))
			}
		}
	}()
	return nil
}

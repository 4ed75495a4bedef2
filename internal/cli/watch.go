package cli

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/tilt-dev/tilt-alerts/pkg/logger"
)

// Watches a single snapshot file through its parent directory, so that
// replacing the file counts as a change.
type snapshotWatcher struct {
	path    string
	watcher *fsnotify.Watcher
}

func newSnapshotWatcher(path string) (*snapshotWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "watching %s", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}

	err = watcher.Add(filepath.Dir(abs))
	if err != nil {
		_ = watcher.Close()
		return nil, errors.Wrapf(err, "watching %s", path)
	}

	return &snapshotWatcher{path: abs, watcher: watcher}, nil
}

// run calls onChange every time the snapshot is written or replaced,
// until the context is done.
func (w *snapshotWatcher) run(ctx context.Context, onChange func() error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Get(ctx).Debugf("file watcher error: %v", err)
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Get(ctx).Debugf("snapshot changed: %s", event)
			err := onChange()
			if err != nil {
				return err
			}
		}
	}
}

func (w *snapshotWatcher) Close() error {
	return w.watcher.Close()
}

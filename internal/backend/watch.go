package backend

import (
	"context"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch invalidates cached views for file origins when the files change on
// disk, so a dashboard left open does not render stale data. Non-file
// origins (URLs, generators) are ignored. Blocks until the context is
// cancelled or the watcher fails.
func (f *Facade) Watch(ctx context.Context, origins ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]string) // absolute-ish path -> origin
	for _, origin := range origins {
		if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") ||
			strings.Contains(origin, ":") {
			continue
		}
		if _, err := os.Stat(origin); err != nil {
			continue
		}
		if err := watcher.Add(origin); err != nil {
			f.log.Warn("cannot watch origin", zap.String("origin", origin), zap.Error(err))
			continue
		}
		watched[origin] = origin
		f.log.Debug("watching origin", zap.String("origin", origin))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if origin, ok := watched[event.Name]; ok {
				f.log.Info("origin changed on disk", zap.String("origin", origin))
				f.Invalidate(origin)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.log.Warn("watcher error", zap.Error(err))
		}
	}
}

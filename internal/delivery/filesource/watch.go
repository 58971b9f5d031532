package filesource

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long Watch waits for a burst of writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watch reloads the source whenever a content file changes and then calls
// onChange. Bursts of events within debounce collapse into one reload. A
// failed reload is logged and keeps the previous items; onChange is not
// called for it. Watch blocks until ctx is done.
func (s *Source) Watch(ctx context.Context, debounce time.Duration, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("filesource: creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, s.dir); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("filesource: watcher closed")
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name)
				}
			}
			if !s.relevant(event.Name) {
				continue
			}
			s.logger.Debug("content file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debounce)
			pending = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("filesource: watcher closed")
			}
			s.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			pending = false
			if err := s.Reload(); err != nil {
				s.logger.Error("reloading content", zap.Error(err))
				continue
			}
			if onChange != nil {
				onChange()
			}
		}
	}
}

func (s *Source) relevant(path string) bool {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(Pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("filesource: watching %s: %w", path, err)
		}
		return nil
	})
}

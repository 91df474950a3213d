package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vectorlab/vectograph/internal/ctxlog"
)

// debounceDelay coalesces the burst of filesystem events most editors
// emit for a single save.
const debounceDelay = 100 * time.Millisecond

// watch blocks until ctx is cancelled, recompiling the document whenever
// it changes on disk. Failed compiles are logged and the last good
// executor keeps serving.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors that write via
	// rename would otherwise drop the watch on the first save.
	dir := filepath.Dir(a.config.DocPath)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target, err := filepath.Abs(a.config.DocPath)
	if err != nil {
		return err
	}

	logger.Info("Watching document for changes.", "path", a.config.DocPath)

	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || abs != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
			} else {
				debounce.Reset(debounceDelay)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			if err := a.compileAndRender(ctx); err != nil {
				logger.Warn("Recompilation failed, keeping previous result.", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error.", "error", err)
		}
	}
}

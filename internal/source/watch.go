package source

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long Watch waits for writes to stop before calling
// back.
const DefaultSettle = 100 * time.Millisecond

// Watch calls fn after the database at path, or its WAL and shared-memory
// files, has been written to and then left alone for settle. It watches the
// containing directory, because SQLite writes mostly land in the -wal file.
//
// Watching stops when ctx is done. Watch returns an error only if the watch
// cannot be set up.
func Watch(ctx context.Context, path string, settle time.Duration, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return err
	}

	base := filepath.Base(path)
	go func() {
		defer func() { _ = w.Close() }()

		timer := time.NewTimer(settle)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(event.Name), base) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					timer.Reset(settle)
				}
			case <-timer.C:
				slog.DebugContext(ctx, "database changed", "path", path)
				fn()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching database", "err", err)
			}
		}
	}()
	return nil
}

// Package watch reloads open documents when their files change on disk
// outside the service.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/storage"
)

// DefaultSettle is how long a file must be quiet before it is re-read.
const DefaultSettle = 100 * time.Millisecond

// Target receives change notifications. docservice.Service implements it.
type Target interface {
	ExternalChange(id, sum string) bool
	Invalidate(id string)
}

// Watch starts an fsnotify watcher on the store root and processes file
// change events until ctx is cancelled.
//
// Writes are coalesced: a key is re-read once no event for it has arrived
// for settle. Its checksum is then handed to target.ExternalChange, which
// ignores the service's own saves. Removed or renamed-away files invalidate
// the session immediately.
func Watch(ctx context.Context, store *storage.FS, target Target, settle time.Duration, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	logger.Info("watcher: started", slog.String("root", store.Root()))

	// flushTimer debounces bursts of writes to the same files.
	var flushTimer *time.Timer
	var flushCh <-chan time.Time
	pending := make(map[string]struct{})

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(settle)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for key := range pending {
				reread(ctx, store, target, key, logger)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			key, ok := store.KeyFor(ev.Name)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[key] = struct{}{}
				scheduleFlush()

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, key)
				logger.Debug("watcher: removed", slog.String("id", key))
				target.Invalidate(key)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func reread(ctx context.Context, store *storage.FS, target Target, key string, logger *slog.Logger) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, apperr.ErrNotFound) {
		target.Invalidate(key)
		return
	}
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("id", key), slog.String("error", err.Error()))
		return
	}
	if target.ExternalChange(key, checksum.Sum(data)) {
		logger.Debug("watcher: external change", slog.String("id", key))
	}
}

package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors a data directory for changes to patent batch files and
// invokes a reload callback. Rapid bursts of events (an rsync of several
// batch files) debounce into a single reload.
type Watcher struct {
	dataDir  string
	debounce time.Duration
	reload   func(context.Context) error
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a directory watcher. reload is called after the
// debounce window closes; its error is logged, not propagated — a failed
// rebuild keeps the previous corpus snapshot serving.
func NewWatcher(
	dataDir string,
	debounce time.Duration,
	reload func(context.Context) error,
	logger *zap.Logger,
) (*Watcher, error) {
	if reload == nil {
		return nil, fmt.Errorf("reload callback is required")
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dataDir:  dataDir,
		debounce: debounce,
		reload:   reload,
		logger:   logger,
		watcher:  fsw,
	}, nil
}

// Watch blocks until ctx is done, reloading the corpus when batch files
// change. Only create/write/remove/rename events on files matching the
// batch pattern trigger a reload.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.watcher.Add(w.dataDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dataDir, err)
	}
	w.logger.Info("watching data directory", zap.String("data_dir", w.dataDir))

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.isBatchFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("batch file changed",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()),
			)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.reload(ctx); err != nil {
				w.logger.Error("corpus reload failed, keeping previous snapshot", zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// isBatchFile reports whether the path names a patent batch file.
func (w *Watcher) isBatchFile(path string) bool {
	ok, err := filepath.Match(batchFilePattern, filepath.Base(path))
	return err == nil && ok
}

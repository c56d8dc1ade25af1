package monitoring

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// WatcherConfig configures an ArtifactWatcher.
type WatcherConfig struct {
	Paths    []string
	Debounce time.Duration
	Logger   *zap.Logger
	Metrics  *MetricsCollector
	// OnChange runs after the warning for each changed path.
	OnChange func(path string)
}

// ArtifactWatcher warns when an artifact file changes on disk. Loaded
// artifacts are never replaced; the new file is only picked up after a
// restart.
type ArtifactWatcher struct {
	watcher  *fsnotify.Watcher
	paths    map[string]bool
	debounce time.Duration
	logger   *zap.Logger
	metrics  *MetricsCollector
	onChange func(path string)
}

// NewArtifactWatcher starts watching the directories holding cfg.Paths.
// Directories are watched rather than files so editors that replace a
// file by rename are still noticed.
func NewArtifactWatcher(cfg WatcherConfig) (*ArtifactWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &ArtifactWatcher{
		watcher:  watcher,
		paths:    make(map[string]bool, len(cfg.Paths)),
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		onChange: cfg.OnChange,
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}

	dirs := make(map[string]bool)
	for _, path := range cfg.Paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		w.paths[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run reports changes until ctx is done, then releases the watcher.
func (w *ArtifactWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	pending := make(map[string]bool)
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if !w.paths[path] || event.Op == fsnotify.Chmod {
				continue
			}
			pending[path] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			for path := range pending {
				w.report(path)
				delete(pending, path)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("artifact watcher error", zap.Error(err))
		}
	}
}

func (w *ArtifactWatcher) report(path string) {
	w.logger.Warn("artifact changed on disk; restart to load it", zap.String("path", path))
	w.metrics.IncrCounter(MetricArtifactChanges, 1, map[string]string{"path": filepath.Base(path)})
	if w.onChange != nil {
		w.onChange(path)
	}
}

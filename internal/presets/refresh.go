package presets

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/wr-burden-mcp-server/internal/domain"
)

// Refresher reloads a catalog from its source, either on a cron schedule
// (remote catalogs) or whenever the catalog file changes (local catalogs).
type Refresher struct {
	catalog *Catalog
	src     domain.PresetSource
	logger  *logrus.Logger
	timeout time.Duration

	scheduler *cron.Cron

	watcher        *fsnotify.Watcher
	watchPath      string
	debouncePeriod time.Duration
	debounceTimer  *time.Timer
	mu             sync.Mutex
	done           chan struct{}
	stopOnce       sync.Once
}

// NewRefresher creates a refresher for catalog backed by src.
func NewRefresher(catalog *Catalog, src domain.PresetSource, timeout time.Duration, logger *logrus.Logger) *Refresher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Refresher{
		catalog:        catalog,
		src:            src,
		logger:         logger,
		timeout:        timeout,
		debouncePeriod: 500 * time.Millisecond,
		done:           make(chan struct{}),
	}
}

// Schedule reloads the catalog on a standard five-field cron expression or
// a descriptor such as "@every 1h".
func (r *Refresher) Schedule(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, r.Refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	r.scheduler = c
	c.Start()

	r.logger.WithFields(logrus.Fields{
		"source":   r.src.Name(),
		"schedule": spec,
	}).Info("Preset catalog refresh scheduled")
	return nil
}

// Watch reloads the catalog whenever the file at path is written or
// replaced. The parent directory is watched so editors that swap files
// atomically are still noticed.
func (r *Refresher) Watch(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	r.watcher = watcher
	r.watchPath = abs
	go r.watchLoop()
	return nil
}

func (r *Refresher) watchLoop() {
	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != r.watchPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				r.scheduleReload()
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.WithError(err).Warn("Preset catalog watcher error")
		}
	}
}

func (r *Refresher) scheduleReload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.debounceTimer != nil {
		r.debounceTimer.Stop()
	}
	r.debounceTimer = time.AfterFunc(r.debouncePeriod, r.Refresh)
}

// Refresh reloads the catalog once. Failures are logged and recorded in
// the catalog's Meta by Catalog.Load.
func (r *Refresher) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	_ = r.catalog.Load(ctx, r.src)
}

// Stop halts the scheduler and the file watcher.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		if r.scheduler != nil {
			<-r.scheduler.Stop().Done()
		}
		if r.watcher != nil {
			r.watcher.Close()
		}
		r.mu.Lock()
		if r.debounceTimer != nil {
			r.debounceTimer.Stop()
		}
		r.mu.Unlock()
	})
}

// StartRefresher wires a refresher according to cfg: file sources are
// watched when cfg.Watch is set, and any source is reloaded on
// cfg.RefreshSchedule when one is configured. It returns nil when neither
// applies.
func StartRefresher(catalog *Catalog, src domain.PresetSource, cfg domain.PresetsConfig, logger *logrus.Logger) (*Refresher, error) {
	if src == nil {
		return nil, nil
	}

	fileSrc, isFile := src.(*FileSource)
	watch := cfg.Watch && isFile
	if !watch && cfg.RefreshSchedule == "" {
		return nil, nil
	}

	r := NewRefresher(catalog, src, cfg.Timeout, logger)
	if watch {
		if err := r.Watch(fileSrc.Path()); err != nil {
			return nil, err
		}
	}
	if cfg.RefreshSchedule != "" {
		if err := r.Schedule(cfg.RefreshSchedule); err != nil {
			r.Stop()
			return nil, err
		}
	}
	return r, nil
}

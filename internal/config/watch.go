package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"invbot/pkg/logx"
)

const watchDebounce = 250 * time.Millisecond

// WatchLogging watches the config file and calls apply with the refreshed
// logging section whenever the file changes. Only logging participates in
// hot reload: accounts, credentials and the poll interval stay fixed for
// the process lifetime. Environment overrides still win after a reload.
//
// The watcher lives until ctx is cancelled. Parse failures are logged and
// the previous logging config stays in effect.
func WatchLogging(ctx context.Context, path string, log logx.Logger, apply func(LoggingConfig)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory, not the file: editors and config managers
	// replace the file, which drops a direct watch.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}

	target := filepath.Clean(path)

	// Debounce to avoid reloading on partial writes.
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	reload := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			lc, err := reloadLogging(path)
			if err != nil {
				log.Warn("config reload failed", logx.String("path", path), logx.Err(err))
				return
			}
			log.Info("logging config reloaded",
				logx.String("level", lc.Level),
				logx.Bool("file_sink", lc.File != ""))
			apply(lc)
		})
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				reload()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", logx.Err(err))
			}
		}
	}()

	log.Debug("watching config file", logx.String("path", path))
	return nil
}

func reloadLogging(path string) (LoggingConfig, error) {
	cfg := defaults()
	if err := applyFile(&cfg, path); err != nil {
		return LoggingConfig{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return LoggingConfig{}, err
	}
	return cfg.Logging, nil
}

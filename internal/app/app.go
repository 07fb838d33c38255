// Package app wires the configuration, logging, storage, and scheduling
// layers into one runnable unit backing the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"agenda/internal/config"
	"agenda/internal/scheduler"
	"agenda/internal/seed"
	"agenda/internal/store"
	"agenda/pkg/logx"
)

type App struct {
	cfgPath string
	cfgm    *config.Manager

	logs *logx.Service
	log  logx.Logger

	kv    store.KV
	sched *scheduler.Service
}

// New loads the config file, opens storage, restores engine state, and
// applies the seed catalog. The returned App is ready for use; callers
// own Close.
func New(ctx context.Context, cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	kv, err := openStore(cfg, log)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	sched := scheduler.New(kv, scheduler.Config{StorageKey: cfg.Scheduler.StorageKey}, log)
	// Load never blocks startup; a broken blob just means starting empty.
	_ = sched.Load(ctx)

	if n, err := seed.Apply(ctx, sched, cfg.Seed, log.With(logx.String("comp", "seed"))); err != nil {
		log.Warn("seed catalog partially applied", logx.Int("applied", n), logx.Err(err))
	} else if n > 0 {
		log.Debug("seed catalog applied", logx.Int("applied", n))
	}

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		logs:    logSvc,
		log:     log,
		kv:      kv,
		sched:   sched,
	}, nil
}

func openStore(cfg *config.Config, log logx.Logger) (store.KV, error) {
	if cfg.Storage == nil {
		return nil, nil
	}
	// Locked-database retries default to a small grace period; an
	// explicit busy_timeout overrides it.
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, 5*time.Second)
	if err != nil {
		return nil, err
	}
	kv, err := store.Open(store.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, log.With(logx.String("comp", "store")))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return kv, nil
}

func (a *App) Scheduler() *scheduler.Service { return a.sched }
func (a *App) Config() *config.Config        { return a.cfgm.Get() }
func (a *App) Logger() logx.Logger           { return a.log }

// Watch blocks on the config file watcher until ctx is done. Reloads
// re-apply the log level/sinks and re-run the seed catalog; storage
// settings are fixed for the process lifetime.
func (a *App) Watch(ctx context.Context) error {
	ch := a.cfgm.Subscribe(1)
	defer a.cfgm.Unsubscribe(ch)

	done := make(chan error, 1)
	go func() { done <- a.cfgm.Watch(ctx) }()

	for {
		select {
		case err := <-done:
			return err
		case cfg, ok := <-ch:
			if !ok {
				return nil
			}
			a.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
			if n, err := seed.Apply(ctx, a.sched, cfg.Seed, a.log.With(logx.String("comp", "seed"))); err != nil {
				a.log.Warn("seed catalog partially applied", logx.Int("applied", n), logx.Err(err))
			}
			a.log.Info("config reloaded", logx.String("path", a.cfgPath))
		}
	}
}

func (a *App) Close() {
	if a.kv != nil {
		_ = a.kv.Close()
	}
	if a.logs != nil {
		_ = a.logs.Close()
	}
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"invbot/internal/config"
	"invbot/internal/health"
	"invbot/internal/inventory"
	"invbot/internal/notify"
	"invbot/internal/tracker"
	"invbot/internal/transport"
	"invbot/internal/transport/telegram"
	"invbot/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "optional path to yaml config (env vars override it)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Bootstrap logger for everything that happens before the configured
	// log service exists.
	boot := logx.NewConsole("info")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Error("invalid configuration", logx.Err(err))
		os.Exit(1)
	}

	logSvc, log := logx.New(logConfig(cfg.Logging))
	defer logSvc.Close()

	if cfgPath != "" {
		if err := config.WatchLogging(ctx, cfgPath, log, func(lc config.LoggingConfig) {
			logSvc.Apply(logConfig(lc))
		}); err != nil {
			log.Warn("config watcher unavailable", logx.Err(err))
		}
	}

	hs := health.New(health.Config{Enabled: cfg.Health.Enabled, Addr: cfg.Health.Addr},
		log.With(logx.String("comp", "health")))
	if err := hs.Start(ctx); err != nil {
		log.Error("health server failed", logx.Err(err))
		os.Exit(1)
	}

	adapter, err := telegram.New(telegram.Config{Token: cfg.Telegram.Token},
		log.With(logx.String("comp", "telegram")))
	if err != nil {
		log.Error("telegram connect failed", logx.Err(err))
		os.Exit(1)
	}
	if err := adapter.Start(ctx); err != nil {
		log.Error("telegram start failed", logx.Err(err))
		os.Exit(1)
	}

	// Wait for the sink before the baseline pass so the first real diff
	// has somewhere to go.
	select {
	case <-adapter.Ready():
	case <-ctx.Done():
		return
	}
	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debug("sd_notify failed", logx.Err(err))
	} else if sent {
		log.Debug("sd_notify ready sent")
	}

	fetcher := inventory.NewFetcher(inventory.FetcherConfig{
		AppID:       cfg.Poll.AppID,
		ContextID:   cfg.Poll.ContextID,
		RetryMax:    cfg.Poll.RetryMax,
		BackoffBase: cfg.Poll.BackoffBase,
		RetryDelay:  cfg.Poll.RetryDelay,
	}, log.With(logx.String("comp", "fetcher")))

	notifier := notify.New(adapter, transport.ChatTarget{ChatID: cfg.Telegram.ChatID},
		log.With(logx.String("comp", "notify")))

	trk := tracker.New(
		tracker.Config{Accounts: cfg.Accounts, Interval: cfg.Poll.Interval},
		fetcher, notifier, tracker.NewStore(),
		log.With(logx.String("comp", "tracker")))
	if err := trk.Start(ctx); err != nil {
		log.Error("tracker start failed", logx.Err(err))
		os.Exit(1)
	}

	<-ctx.Done()

	shctx, shcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shcancel()
	trk.Stop(shctx)
	hs.Stop(shctx)
	_ = adapter.Stop(shctx)
}

func logConfig(lc config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   lc.Level,
		Console: true,
		File: logx.FileConfig{
			Enabled: lc.File != "",
			Path:    lc.File,
		},
	}
}

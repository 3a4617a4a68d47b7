// Runs the live feed into the minute-proxy CSV for hand-off to the watcher.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/CrispyBacon228/sb-watchbot/internal/config"
	"github.com/CrispyBacon228/sb-watchbot/internal/feed"
	sig "github.com/CrispyBacon228/sb-watchbot/internal/signal"
	"github.com/CrispyBacon228/sb-watchbot/internal/util"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := util.NewLogger("info")
		l.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source := feed.NewFeed(cfg.Feed.Provider, cfg.Feed.Symbol, log,
		feed.WithPollInterval(time.Duration(cfg.Feed.PollInterval)*time.Millisecond),
	)
	bars := make(chan sig.Bar, 1024)

	go func() {
		if err := source.Run(ctx, bars); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("feed stopped")
		}
		cancel()
	}()

	proxy := feed.NewMinuteProxy(cfg.Feed.CSVPath, cfg.Feed.HistoryMin, log)
	log.Info().Str("out", cfg.Feed.CSVPath).Msg("minute proxy started")
	if err := proxy.Run(ctx, bars); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("proxy stopped")
	}
}

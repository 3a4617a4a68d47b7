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
	"github.com/CrispyBacon228/sb-watchbot/internal/levels"
	"github.com/CrispyBacon228/sb-watchbot/internal/metrics"
	"github.com/CrispyBacon228/sb-watchbot/internal/notify"
	sig "github.com/CrispyBacon228/sb-watchbot/internal/signal"
	"github.com/CrispyBacon228/sb-watchbot/internal/strategy"
	"github.com/CrispyBacon228/sb-watchbot/internal/util"
)

func main() {
	_ = godotenv.Load() // best-effort

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := util.NewLogger("info")
		l.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	loc := loadLocation(cfg.Strategy.Timezone)

	doc, err := levels.Load(cfg.Levels.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("load levels; run the levels builder first")
	}
	if doc.Stale(time.Now(), loc) {
		log.Warn().Str("date", doc.Date).Msg("levels document is not for today")
	}

	webhookURL := os.Getenv("DISCORD_WEBHOOK")
	if webhookURL == "" {
		webhookURL = cfg.Notify.WebhookURL
	}
	flags := notify.NewFlagStore(cfg.Notify.StateDir, loc)
	opts := []notify.Option{
		notify.WithLocation(loc),
		notify.WithFlagStore(flags),
		notify.WithContractSpec(notify.ContractSpec{
			TickSize:     cfg.Notify.TickSize,
			TickValue:    cfg.Notify.TickValue,
			RiskPerTrade: cfg.Notify.RiskPerTrade,
		}),
	}
	if cfg.Notify.JournalPath != "" {
		journal, err := notify.NewJournal(cfg.Notify.JournalPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open entry journal")
		}
		defer journal.Close()
		opts = append(opts, notify.WithJournal(journal))
	}
	webhook := notify.NewWebhook(webhookURL, log, opts...)

	now := time.Now().UnixMilli()
	if err := webhook.PostLevelsScan(doc.Levels, now); err != nil {
		log.Warn().Err(err).Msg("levels scan post failed")
	}

	engine := strategy.New(doc.Levels, cfg.Strategy, webhook, log)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source := feed.NewFeed(cfg.Feed.Provider, cfg.Feed.Symbol, log,
		feed.WithCSVPath(cfg.Feed.CSVPath),
		feed.WithPollInterval(time.Duration(cfg.Feed.PollInterval)*time.Millisecond),
	)
	bars := make(chan sig.Bar, 1024)

	go func() {
		if err := source.Run(ctx, bars); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("feed stopped")
		}
		cancel()
	}()

	armedAt := clockSeconds(cfg.Strategy.WindowStart, 10*3600)
	closeAt := clockSeconds(cfg.Strategy.WindowEnd, 11*3600) + 2*60

	log.Info().Str("provider", cfg.Feed.Provider).Str("symbol", cfg.Feed.Symbol).Msg("watcher started")
	armed := false
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case bar := <-bars:
			sec := secondOfDay(bar.Ts, loc)

			if !armed && sec >= armedAt {
				if err := webhook.PostSystemArmed(bar.Ts); err != nil {
					log.Warn().Err(err).Msg("armed post failed")
				}
				armed = true
			}

			if sec >= closeAt {
				if !flags.HasEntry(bar.Ts) {
					if err := webhook.PostNoSetup(bar.Ts); err != nil {
						log.Warn().Err(err).Msg("no-setup post failed")
					}
				}
				log.Info().Msg("entry window closed")
				return
			}

			if err := engine.OnBar(bar); err != nil {
				metrics.BarsRejected.Inc()
				log.Warn().Err(err).Int64("ts", bar.Ts).Msg("observation rejected")
			}
		}
	}
}

func loadLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}

func clockSeconds(hm string, fallback int) int {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return fallback
	}
	return t.Hour()*3600 + t.Minute()*60
}

func secondOfDay(ts int64, loc *time.Location) int {
	t := time.UnixMilli(ts).In(loc)
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

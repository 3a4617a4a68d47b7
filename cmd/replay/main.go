// Replays a bar CSV through the engine and prints every entry it fires.
package main

import (
	"flag"

	"github.com/CrispyBacon228/sb-watchbot/internal/feed"
	"github.com/CrispyBacon228/sb-watchbot/internal/levels"
	sig "github.com/CrispyBacon228/sb-watchbot/internal/signal"
	"github.com/CrispyBacon228/sb-watchbot/internal/strategy"
	"github.com/CrispyBacon228/sb-watchbot/internal/util"
)

func main() {
	csvPath := flag.String("csv", "data/history.csv", "bar CSV to replay")
	levelsPath := flag.String("levels", "data/levels.json", "level document")
	openWindow := flag.Bool("open-window", false, "disable entry window gating")
	logLevel := flag.String("log", "info", "log level")
	flag.Parse()

	log := util.NewConsoleLogger(*logLevel)

	doc, err := levels.Load(*levelsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load levels")
	}

	cfg := strategy.DefaultConfig()
	if *openWindow {
		cfg.WindowStart = "00:00"
		cfg.WindowEnd = "23:59"
	}

	fired := 0
	sink := strategy.SinkFunc(func(e sig.Entry) error {
		fired++
		log.Info().
			Str("side", string(e.Side)).
			Float64("entry", e.Price).
			Float64("sl", e.Stop).
			Float64("tp", e.Target).
			Int64("when", e.Ts).
			Msg("replay entry")
		return nil
	})

	engine := strategy.New(doc.Levels, cfg, sink, log)

	bars, err := feed.ReadAll(*csvPath)
	if err != nil {
		log.Fatal().Err(err).Msg("read bars")
	}
	rejected := 0
	for _, bar := range bars {
		if err := engine.OnBar(bar); err != nil {
			rejected++
			log.Debug().Err(err).Int64("ts", bar.Ts).Msg("bar rejected")
		}
	}

	log.Info().Int("bars", len(bars)).Int("rejected", rejected).Int("entries", fired).Msg("replay done")
}

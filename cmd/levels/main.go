// Builds the day's level document from a historical bar CSV.
package main

import (
	"flag"
	"time"

	"github.com/joho/godotenv"

	"github.com/CrispyBacon228/sb-watchbot/internal/feed"
	"github.com/CrispyBacon228/sb-watchbot/internal/levels"
	"github.com/CrispyBacon228/sb-watchbot/internal/util"
)

func main() {
	_ = godotenv.Load()

	csvPath := flag.String("csv", "data/history.csv", "historical bar CSV (ts_ms,open,high,low,close,volume)")
	outPath := flag.String("out", "data/levels.json", "output level document")
	dateStr := flag.String("date", "", "trading day YYYY-MM-DD (default: today)")
	tzName := flag.String("tz", "America/New_York", "exchange time zone")
	flag.Parse()

	log := util.NewConsoleLogger("info")

	loc, err := time.LoadLocation(*tzName)
	if err != nil {
		log.Warn().Str("tz", *tzName).Msg("unknown time zone, using UTC")
		loc = time.UTC
	}

	day := time.Now().In(loc)
	if *dateStr != "" {
		day, err = time.ParseInLocation("2006-01-02", *dateStr, loc)
		if err != nil {
			log.Fatal().Err(err).Msg("parse date")
		}
	}

	bars, err := feed.ReadAll(*csvPath)
	if err != nil {
		log.Fatal().Err(err).Msg("read history")
	}

	ls := levels.Build(bars, day, levels.DefaultSessions(), loc)
	doc := &levels.Document{Date: day.Format("2006-01-02"), Levels: ls}
	if err := levels.Save(*outPath, doc); err != nil {
		log.Fatal().Err(err).Msg("write levels")
	}

	log.Info().
		Str("date", doc.Date).
		Str("out", *outPath).
		Int("bars", len(bars)).
		Interface("levels", ls).
		Msg("levels built")
}

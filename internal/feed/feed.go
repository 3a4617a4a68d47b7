// Package feed hosts the bar producers: synthetic, CSV hand-off, historical
// replay, and the live websocket stream. Every provider delivers bars in
// non-decreasing timestamp order.
package feed

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/CrispyBacon228/sb-watchbot/internal/metrics"
	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

const (
	// ProviderStub emits deterministic synthetic bars (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderCSV tails the minute-proxy CSV written by another process.
	ProviderCSV = "csv"
	// ProviderReplay reads a historical CSV once, in order, then stops.
	ProviderReplay = "replay"
	// ProviderBinance streams live 1m klines from Binance public websockets.
	ProviderBinance = "binance"
)

const (
	defaultPollInterval = 200 * time.Millisecond
	defaultBinanceURL   = "wss://stream.binance.com:9443/ws"
)

// Feed represents a pluggable bar stream implementation.
type Feed struct {
	provider     string
	symbol       string
	csvPath      string
	pollInterval time.Duration
	binanceURL   string
	log          zerolog.Logger
}

// Option configures Feed construction parameters.
type Option func(*Feed)

// WithPollInterval overrides the default polling cadence for file-based feeds.
func WithPollInterval(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.pollInterval = d
		}
	}
}

// WithCSVPath points the csv/replay providers at a file.
func WithCSVPath(path string) Option {
	return func(f *Feed) {
		if path != "" {
			f.csvPath = path
		}
	}
}

// WithBinanceURL overrides the websocket endpoint (tests point it at a local server).
func WithBinanceURL(url string) Option {
	return func(f *Feed) {
		if url != "" {
			f.binanceURL = strings.TrimSuffix(url, "/")
		}
	}
}

// NewFeed constructs a feed backed by the requested provider.
func NewFeed(provider, symbol string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider:     strings.ToLower(provider),
		symbol:       strings.TrimSpace(symbol),
		pollInterval: defaultPollInterval,
		binanceURL:   defaultBinanceURL,
		log:          log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run pushes bars onto the provided channel until the context is canceled or,
// for the replay provider, the input is exhausted.
func (f *Feed) Run(ctx context.Context, out chan<- signal.Bar) error {
	switch f.provider {
	case ProviderBinance:
		return f.runBinance(ctx, out)
	case ProviderCSV:
		return f.runCSVTail(ctx, out)
	case ProviderReplay:
		return f.runReplay(ctx, out)
	default:
		return f.runStub(ctx, out)
	}
}

func (f *Feed) emit(ctx context.Context, out chan<- signal.Bar, b signal.Bar) error {
	select {
	case out <- b:
		metrics.BarsTotal.WithLabelValues(f.provider).Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Feed) runStub(ctx context.Context, out chan<- signal.Bar) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	px := 100.0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			px += 0.1
			bar := signal.Bar{
				Ts:    ts.UnixMilli(),
				Open:  px - 0.1,
				High:  px + 0.05,
				Low:   px - 0.15,
				Close: px,
			}
			if err := f.emit(ctx, out, bar); err != nil {
				return err
			}
		}
	}
}

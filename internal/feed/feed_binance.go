package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

type binanceKlineEvent struct {
	EventType string       `json:"e"`
	EventTime int64        `json:"E"`
	Kline     binanceKline `json:"k"`
}

type binanceKline struct {
	OpenTime  int64  `json:"t"`
	CloseTime int64  `json:"T"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
	Closed    bool   `json:"x"`
}

func (f *Feed) runBinance(ctx context.Context, out chan<- signal.Bar) error {
	if f.symbol == "" {
		return fmt.Errorf("binance feed requires a symbol")
	}

	url := fmt.Sprintf("%s/%s@kline_1m", f.binanceURL, strings.ToLower(f.symbol))
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.consumeBinanceStream(ctx, url, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Msg("binance feed disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *Feed) consumeBinanceStream(ctx context.Context, url string, out chan<- signal.Bar) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Str("provider", ProviderBinance).Str("symbol", f.symbol).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("binance ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var ev binanceKlineEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			f.log.Warn().Err(err).Msg("failed to decode binance message")
			continue
		}
		if ev.EventType != "kline" {
			continue
		}

		bar, err := ev.bar()
		if err != nil {
			f.log.Warn().Err(err).Msg("invalid kline from binance")
			continue
		}
		if err := f.emit(ctx, out, bar); err != nil {
			return err
		}
	}
}

// bar converts a kline update to a Bar. The event time keeps intraminute
// updates inside the open minute's bucket; the engine does the folding.
func (ev binanceKlineEvent) bar() (signal.Bar, error) {
	vals := make([]float64, 5)
	for i, raw := range [...]string{ev.Kline.Open, ev.Kline.High, ev.Kline.Low, ev.Kline.Close, ev.Kline.Volume} {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return signal.Bar{}, fmt.Errorf("bad kline field %q: %w", raw, err)
		}
		vals[i] = v
	}
	ts := ev.EventTime
	if ev.Kline.Closed {
		ts = ev.Kline.CloseTime
	}
	if ts == 0 {
		ts = ev.Kline.OpenTime
	}
	return signal.Bar{Ts: ts, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3], Volume: vals[4]}, nil
}

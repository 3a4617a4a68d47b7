package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

const defaultHistoryMin = 120

// MinuteProxy folds a sub-minute bar stream into minute bars and atomically
// rewrites a rolling CSV so a separate watcher process can tail it.
type MinuteProxy struct {
	path       string
	history    int
	flushEvery time.Duration
	log        zerolog.Logger

	window    []signal.Bar
	bucket    int64
	haveBar   bool
	lastFlush int64
}

// NewMinuteProxy writes up to history minute rows to path.
func NewMinuteProxy(path string, history int, log zerolog.Logger) *MinuteProxy {
	if history <= 0 {
		history = defaultHistoryMin
	}
	return &MinuteProxy{
		path:       path,
		history:    history,
		flushEvery: 200 * time.Millisecond,
		log:        log,
	}
}

// Run consumes bars until the context is canceled or the input closes.
func (p *MinuteProxy) Run(ctx context.Context, in <-chan signal.Bar) error {
	if err := p.writeFile(nil); err != nil {
		return fmt.Errorf("seed proxy file: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case bar, ok := <-in:
			if !ok {
				return p.flush()
			}
			if err := p.Observe(bar); err != nil {
				p.log.Warn().Err(err).Msg("proxy flush failed")
			}
		}
	}
}

// Observe folds one observation into the rolling window and flushes the CSV
// at most once per flush interval.
func (p *MinuteProxy) Observe(b signal.Bar) error {
	bucket := b.MinuteBucket()
	switch {
	case !p.haveBar:
		p.haveBar = true
		p.bucket = bucket
		p.window = append(p.window[:0], minuteSeed(b))
	case bucket != p.bucket:
		p.bucket = bucket
		p.window = append(p.window, minuteSeed(b))
		if len(p.window) > p.history {
			p.window = p.window[len(p.window)-p.history:]
		}
	default:
		cur := &p.window[len(p.window)-1]
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}

	if b.Ts-p.lastFlush >= p.flushEvery.Milliseconds() {
		p.lastFlush = b.Ts
		return p.flush()
	}
	return nil
}

// minuteSeed pins the row timestamp to the bucket boundary, like the on-disk
// format expects.
func minuteSeed(b signal.Bar) signal.Bar {
	b.Ts = b.MinuteBucket() * 60_000
	return b
}

func (p *MinuteProxy) flush() error {
	return p.writeFile(p.window)
}

// writeFile rewrites the whole CSV through a temp file and rename so tail
// readers never observe a torn write.
func (p *MinuteProxy) writeFile(rows []signal.Bar) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString(CSVHeader)
	sb.WriteByte('\n')
	for _, r := range rows {
		sb.WriteString(FormatRow(r))
		sb.WriteByte('\n')
	}
	tmp := p.path + ".part"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

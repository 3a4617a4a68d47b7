package feed

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

// CSVHeader is the first line of every bar CSV this package reads or writes.
const CSVHeader = "ts_ms,open,high,low,close,volume"

// ParseRow decodes one CSV data row into a Bar.
func ParseRow(line string) (signal.Bar, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 6 {
		return signal.Bar{}, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}
	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return signal.Bar{}, fmt.Errorf("bad timestamp %q: %w", fields[0], err)
	}
	vals := make([]float64, 5)
	for i, raw := range fields[1:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return signal.Bar{}, fmt.Errorf("bad field %q: %w", raw, err)
		}
		vals[i] = v
	}
	return signal.Bar{Ts: ts, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3], Volume: vals[4]}, nil
}

// FormatRow is the inverse of ParseRow, matching the proxy's on-disk format.
func FormatRow(b signal.Bar) string {
	return fmt.Sprintf("%d,%.2f,%.2f,%.2f,%.2f,%.0f", b.Ts, b.Open, b.High, b.Low, b.Close, b.Volume)
}

// runCSVTail polls the hand-off file and yields the newest row every time it
// changes. A missing file, a foreign header, or a header-only file is not an
// error: the writer may simply not have started yet.
func (f *Feed) runCSVTail(ctx context.Context, out chan<- signal.Bar) error {
	if f.csvPath == "" {
		return fmt.Errorf("csv feed requires a path")
	}
	var lastLine string
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		data, err := os.ReadFile(f.csvPath)
		if err != nil {
			continue
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) < 2 || strings.TrimSpace(lines[0]) != CSVHeader {
			continue
		}
		line := lines[len(lines)-1]
		if line == lastLine {
			continue
		}
		lastLine = line

		bar, err := ParseRow(line)
		if err != nil {
			f.log.Warn().Err(err).Msg("skipping malformed csv row")
			continue
		}
		if err := f.emit(ctx, out, bar); err != nil {
			return err
		}
	}
}

// runReplay reads the whole file and delivers every row in order, then
// returns nil to signal end of stream.
func (f *Feed) runReplay(ctx context.Context, out chan<- signal.Bar) error {
	if f.csvPath == "" {
		return fmt.Errorf("replay feed requires a path")
	}
	data, err := os.ReadFile(f.csvPath)
	if err != nil {
		return fmt.Errorf("read replay file: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i, line := range lines {
		if i == 0 && strings.TrimSpace(line) == CSVHeader {
			continue
		}
		bar, err := ParseRow(line)
		if err != nil {
			f.log.Warn().Err(err).Int("line", i+1).Msg("skipping malformed csv row")
			continue
		}
		if err := f.emit(ctx, out, bar); err != nil {
			return err
		}
	}
	return nil
}

// ReadAll loads an entire bar CSV, for the level builder and replay CLI.
func ReadAll(path string) ([]signal.Bar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	bars := make([]signal.Bar, 0, len(lines))
	for i, line := range lines {
		if i == 0 && strings.TrimSpace(line) == CSVHeader {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		bar, err := ParseRow(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

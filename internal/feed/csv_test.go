package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

func TestParseRowRoundTrip(t *testing.T) {
	in := signal.Bar{Ts: 1700000040000, Open: 100.25, High: 101.5, Low: 99.75, Close: 100.5, Volume: 42}
	out, err := ParseRow(FormatRow(in))
	if err != nil {
		t.Fatalf("ParseRow returned error: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestParseRowErrors(t *testing.T) {
	for _, bad := range []string{"", "1,2,3", "x,1,2,3,4,5", "1,a,2,3,4,5"} {
		if _, err := ParseRow(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestReplayDeliversAllRowsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	content := CSVHeader + "\n" +
		"60000,100.00,101.00,99.00,100.00,10\n" +
		"120000,100.00,102.00,99.50,101.00,11\n" +
		"180000,101.00,103.00,100.00,102.00,12\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	f := NewFeed(ProviderReplay, "NQZ5", zerolog.Nop(), WithCSVPath(path))
	out := make(chan signal.Bar, 8)
	if err := f.Run(context.Background(), out); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	close(out)

	var bars []signal.Bar
	for b := range out {
		bars = append(bars, b)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].Ts <= bars[i-1].Ts {
			t.Fatalf("bars out of order: %d after %d", bars[i].Ts, bars[i-1].Ts)
		}
	}
}

func TestCSVTailYieldsNewestRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live_minute.csv")
	write := func(rows ...string) {
		content := CSVHeader + "\n"
		for _, r := range rows {
			content += r + "\n"
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	write("60000,100.00,101.00,99.00,100.00,10")

	f := NewFeed(ProviderCSV, "NQZ5", zerolog.Nop(), WithCSVPath(path), WithPollInterval(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan signal.Bar, 8)
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx, out) }()

	first := <-out
	if first.Ts != 60000 {
		t.Fatalf("unexpected first bar: %+v", first)
	}

	write("60000,100.00,101.00,99.00,100.00,10", "120000,100.00,102.00,99.50,101.00,11")
	second := <-out
	if second.Ts != 120000 {
		t.Fatalf("unexpected second bar: %+v", second)
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCSVTailToleratesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-yet.csv")
	f := NewFeed(ProviderCSV, "NQZ5", zerolog.Nop(), WithCSVPath(path), WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	out := make(chan signal.Bar, 1)
	if err := f.Run(ctx, out); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no bars from a missing file")
	}
}

func TestReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	content := CSVHeader + "\n60000,100.00,101.00,99.00,100.00,10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	bars, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(bars) != 1 || bars[0].High != 101 {
		t.Fatalf("unexpected bars: %+v", bars)
	}

	if _, err := ReadAll(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/CrispyBacon228/sb-watchbot/internal/feed"
	"github.com/CrispyBacon228/sb-watchbot/internal/notify"
	sig "github.com/CrispyBacon228/sb-watchbot/internal/signal"
	"github.com/CrispyBacon228/sb-watchbot/internal/strategy"
)

// Replays a sweep -> displacement -> gap -> return day through the real
// feed, engine, and webhook sink, and expects exactly one entry alert.
func TestWatchFlowEndToEnd(t *testing.T) {
	var msgs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		msgs = append(msgs, payload["content"])
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	base := time.Date(2025, 11, 14, 10, 0, 0, 0, time.UTC).UnixMilli()
	rows := []sig.Bar{
		{Ts: base + 0*60_000, Open: 100, High: 101, Low: 99, Close: 100},
		{Ts: base + 1*60_000, Open: 99, High: 105, Low: 98, Close: 104},
		{Ts: base + 2*60_000, Open: 103, High: 110, Low: 102, Close: 109},
		{Ts: base + 3*60_000, Open: 102, High: 103, Low: 101, Close: 102.5},
		{Ts: base + 4*60_000, Open: 102, High: 102.5, Low: 102, Close: 102},
		{Ts: base + 5*60_000, Open: 102, High: 103, Low: 101.8, Close: 102},
	}
	csvPath := filepath.Join(t.TempDir(), "day.csv")
	content := feed.CSVHeader + "\n"
	for _, r := range rows {
		content += feed.FormatRow(r) + "\n"
	}
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	stateDir := t.TempDir()
	flags := notify.NewFlagStore(stateDir, time.UTC)
	webhook := notify.NewWebhook(srv.URL, zerolog.Nop(),
		notify.WithLocation(time.UTC),
		notify.WithFlagStore(flags),
	)

	cfg := strategy.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.InternalSwing = sig.Ptr(false)
	levels := sig.LevelSet{PriorDayLow: sig.Ptr(101.5)}
	engine := strategy.New(levels, cfg, webhook, zerolog.Nop())

	source := feed.NewFeed(feed.ProviderReplay, "NQZ5", zerolog.Nop(), feed.WithCSVPath(csvPath))
	bars := make(chan sig.Bar, len(rows))
	if err := source.Run(context.Background(), bars); err != nil {
		t.Fatalf("feed run returned error: %v", err)
	}
	close(bars)

	for bar := range bars {
		if err := engine.OnBar(bar); err != nil {
			t.Fatalf("OnBar returned error: %v", err)
		}
	}

	var entryMsgs []string
	for _, m := range msgs {
		if strings.Contains(m, "SB-ENTRY") {
			entryMsgs = append(entryMsgs, m)
		}
	}
	if len(entryMsgs) != 1 {
		t.Fatalf("expected exactly one entry alert, got %d (%v)", len(entryMsgs), msgs)
	}
	if !strings.Contains(entryMsgs[0], "LONG") || !strings.Contains(entryMsgs[0], "Entry 102.00") {
		t.Fatalf("unexpected entry alert: %q", entryMsgs[0])
	}
	if !flags.HasEntry(rows[3].Ts) {
		t.Fatalf("expected the day's entry flag to be set")
	}
}

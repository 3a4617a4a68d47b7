package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

func TestBinanceFeedParsesKlines(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "nqz5@kline_1m") {
			t.Errorf("unexpected stream path: %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		msgs := []string{
			`{"e":"kline","E":1700000010000,"k":{"t":1700000000000,"T":1700000059999,"o":"100.0","h":"101.0","l":"99.0","c":"100.5","v":"12","x":false}}`,
			`{"e":"other"}`,
			`{"e":"kline","E":1700000061000,"k":{"t":1700000000000,"T":1700000059999,"o":"100.0","h":"102.0","l":"99.0","c":"101.5","v":"20","x":true}}`,
		}
		for _, m := range msgs {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// keep the connection up until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	f := NewFeed(ProviderBinance, "NQZ5", zerolog.Nop(), WithBinanceURL(wsURL))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out := make(chan signal.Bar, 8)
	go func() { _ = f.Run(ctx, out) }()

	first := <-out
	if first.Ts != 1700000010000 || first.Close != 100.5 {
		t.Fatalf("unexpected open-kline bar: %+v", first)
	}

	second := <-out
	if second.Ts != 1700000059999 { // closed klines stamp the close time
		t.Fatalf("unexpected closed-kline timestamp: %d", second.Ts)
	}
	if second.High != 102 || second.Volume != 20 {
		t.Fatalf("unexpected closed-kline bar: %+v", second)
	}
}

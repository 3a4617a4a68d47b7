// Package notify delivers alerts to a Discord-style webhook and keeps the
// small pieces of state around them (daily entry flags, entry journal).
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

const maxMessageLen = 1900

// ContractSpec sizes the risk model line posted after each entry.
type ContractSpec struct {
	TickSize     float64
	TickValue    float64
	RiskPerTrade float64
}

// Webhook posts single-line alerts. An empty URL turns every post into a
// no-op, so the watcher runs cleanly without a webhook configured.
type Webhook struct {
	url      string
	client   *http.Client
	loc      *time.Location
	contract ContractSpec
	flags    *FlagStore
	journal  *Journal
	log      zerolog.Logger
}

// Option configures Webhook construction parameters.
type Option func(*Webhook)

// WithLocation sets the zone used for alert timestamps.
func WithLocation(loc *time.Location) Option {
	return func(w *Webhook) {
		if loc != nil {
			w.loc = loc
		}
	}
}

// WithContractSpec enables the risk model follow-up message.
func WithContractSpec(c ContractSpec) Option {
	return func(w *Webhook) { w.contract = c }
}

// WithFlagStore records a daily flag whenever an entry is posted.
func WithFlagStore(s *FlagStore) Option {
	return func(w *Webhook) { w.flags = s }
}

// WithJournal appends every posted entry to a JSONL journal.
func WithJournal(j *Journal) Option {
	return func(w *Webhook) { w.journal = j }
}

// WithHTTPClient overrides the default 8s-timeout client (tests).
func WithHTTPClient(c *http.Client) Option {
	return func(w *Webhook) {
		if c != nil {
			w.client = c
		}
	}
}

// NewWebhook builds the alert sink.
func NewWebhook(url string, log zerolog.Logger, opts ...Option) *Webhook {
	w := &Webhook{
		url:    url,
		client: &http.Client{Timeout: 8 * time.Second},
		loc:    time.UTC,
		log:    log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PostEntry implements strategy.EntrySink.
func (w *Webhook) PostEntry(e signal.Entry) error {
	t := w.clock(e.Ts, true)
	msg := fmt.Sprintf("🟩 SB-ENTRY (%s) %s Entry %s | SL %s | TP~%s",
		t, e.Side, fmtPrice(e.Price), fmtPrice(e.Stop), fmtPrice(e.Target))
	if err := w.post(msg); err != nil {
		return err
	}
	w.postRiskModel(e)

	if w.flags != nil {
		if err := w.flags.Mark(e.Ts); err != nil {
			w.log.Warn().Err(err).Msg("entry flag write failed")
		}
	}
	if w.journal != nil {
		w.journal.Record(e)
	}
	return nil
}

// postRiskModel translates the stop distance into a contract count.
func (w *Webhook) postRiskModel(e signal.Entry) {
	c := w.contract
	if c.TickSize <= 0 || c.TickValue <= 0 || c.RiskPerTrade <= 0 {
		return
	}
	stopTicks := math.Abs(e.Price-e.Stop) / c.TickSize
	riskPerContract := stopTicks * c.TickValue
	contracts := 1
	if riskPerContract > 0 {
		if n := int(c.RiskPerTrade / riskPerContract); n > 1 {
			contracts = n
		}
	}
	msg := fmt.Sprintf("⚙️ Risk model: %.1f ticks | $%.2f/ct | %d contracts",
		stopTicks, riskPerContract, contracts)
	if err := w.post(msg); err != nil {
		w.log.Warn().Err(err).Msg("risk model post failed")
	}
}

// PostLevelsScan announces the day's loaded levels.
func (w *Webhook) PostLevelsScan(ls signal.LevelSet, ts int64) error {
	var seg []string
	if ls.PriorDayHigh != nil || ls.PriorDayLow != nil {
		seg = append(seg, fmt.Sprintf("PDH: %s | PDL: %s", fmtOpt(ls.PriorDayHigh), fmtOpt(ls.PriorDayLow)))
	}
	if ls.OvernightHigh != nil || ls.OvernightLow != nil {
		seg = append(seg, fmt.Sprintf("ON: %s-%s", fmtOpt(ls.OvernightHigh), fmtOpt(ls.OvernightLow)))
	}
	if ls.SecondaryHigh != nil || ls.SecondaryLow != nil {
		seg = append(seg, fmt.Sprintf("2ND: %s-%s", fmtOpt(ls.SecondaryHigh), fmtOpt(ls.SecondaryLow)))
	}
	return w.post(strings.TrimSpace(fmt.Sprintf("📊 SESSION LEVELS (%s) %s",
		w.clock(ts, false), strings.Join(seg, " "))))
}

// PostSystemArmed announces the start of the entry window.
func (w *Webhook) PostSystemArmed(ts int64) error {
	return w.post(fmt.Sprintf("🟢 WATCHBOT ARMED (%s) Waiting for setup...", w.clock(ts, true)))
}

// PostNoSetup announces that the window closed without an entry.
func (w *Webhook) PostNoSetup(ts int64) error {
	return w.post(fmt.Sprintf("⚪ NO SETUP TODAY (%s) No qualifying sweep + displacement found.", w.clock(ts, false)))
}

func (w *Webhook) post(msg string) error {
	if w.url == "" {
		return nil
	}
	if len(msg) > maxMessageLen {
		cut := maxMessageLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	body, err := json.Marshal(map[string]string{"content": msg})
	if err != nil {
		return fmt.Errorf("encode webhook body: %w", err)
	}
	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

func (w *Webhook) clock(ts int64, seconds bool) string {
	t := time.UnixMilli(ts).In(w.loc)
	if seconds {
		return t.Format("15:04:05 MST")
	}
	return t.Format("15:04 MST")
}

func fmtPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmtPrice(*v)
}

package strategy

import "github.com/CrispyBacon228/sb-watchbot/internal/signal"

// EntrySink receives finished entry signals. Implementations must be safe to
// fail: the engine logs and counts a sink error but keeps ingesting.
type EntrySink interface {
	PostEntry(e signal.Entry) error
}

// NoopSink discards entries; used when alert delivery is disabled.
type NoopSink struct{}

func (NoopSink) PostEntry(signal.Entry) error { return nil }

// SinkFunc adapts a plain function to EntrySink.
type SinkFunc func(signal.Entry) error

func (f SinkFunc) PostEntry(e signal.Entry) error { return f(e) }

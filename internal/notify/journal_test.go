package notify

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

func TestJournalAppendsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "entries.jsonl")
	j, err := NewJournal(path)
	if err != nil {
		t.Fatalf("NewJournal returned error: %v", err)
	}

	j.Record(signal.Entry{Side: signal.Long, Price: 101.5, Stop: 99, Target: 104, Ts: 1})
	j.Record(signal.Entry{Side: signal.Short, Price: 98, Stop: 100, Target: 96, Ts: 2})
	if err := j.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()

	var entries []signal.Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e signal.Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 journal lines, got %d", len(entries))
	}
	if entries[0].Side != signal.Long || entries[1].Side != signal.Short {
		t.Fatalf("unexpected journal order: %+v", entries)
	}
}

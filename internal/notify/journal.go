package notify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

// Journal appends posted entries as JSON lines for later analysis.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJournal creates/opens the target file and returns a journal.
func NewJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Journal{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Record writes a single entry to the underlying JSONL file.
func (j *Journal) Record(e signal.Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(e)
}

// Close flushes and closes the file handle.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

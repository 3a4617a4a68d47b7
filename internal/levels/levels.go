// Package levels loads and builds the day's reference price document.
package levels

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

// Document is the persisted level file: a date tag plus the level mapping.
type Document struct {
	Date   string          `json:"date"`
	Levels signal.LevelSet `json:"levels"`
}

// Load reads a level document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read levels: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode levels: %w", err)
	}
	return &doc, nil
}

// Save writes a level document to disk.
func Save(path string, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("nil level document")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode levels: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write levels: %w", err)
	}
	return nil
}

// Stale reports whether the document was built for a different day.
func (d *Document) Stale(now time.Time, loc *time.Location) bool {
	if d.Date == "" {
		return false
	}
	return d.Date != now.In(loc).Format("2006-01-02")
}

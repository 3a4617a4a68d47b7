package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FlagStore tracks whether an entry fired on a given day via marker files,
// so a restarted watcher still knows not to post "no setup".
type FlagStore struct {
	dir string
	loc *time.Location
}

// NewFlagStore keeps flags under dir, dating them in loc.
func NewFlagStore(dir string, loc *time.Location) *FlagStore {
	if loc == nil {
		loc = time.UTC
	}
	return &FlagStore{dir: dir, loc: loc}
}

func (s *FlagStore) path(ts int64) string {
	tag := time.UnixMilli(ts).In(s.loc).Format("20060102")
	return filepath.Join(s.dir, fmt.Sprintf("sb_entry_%s.flag", tag))
}

// Mark records that an entry fired on the day of ts.
func (s *FlagStore) Mark(ts int64) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path(ts), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// HasEntry reports whether an entry fired on the day of ts.
func (s *FlagStore) HasEntry(ts int64) bool {
	_, err := os.Stat(s.path(ts))
	return err == nil
}

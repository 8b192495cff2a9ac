package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// sequencerCacheSize bounds the number of directories whose entry
// counts are kept in memory. Eviction is harmless: a recount from disk
// is always correct.
const sequencerCacheSize = 1024

// Sequencer assigns the 1-based per-directory sequence numbers used in
// archive file names. The authoritative value is the live entry count
// of the target directory; the cache only avoids re-reading directories
// that receive many files in one run. Placement must stay strictly
// sequential for the counts to hold.
type Sequencer struct {
	counts *lru.Cache[string, int]
}

// NewSequencer builds a sequencer with an empty count cache.
func NewSequencer() *Sequencer {
	cache, err := lru.New[string, int](sequencerCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return &Sequencer{counts: cache}
}

// Next returns the sequence number the next placement into dir should
// use: one more than the number of entries currently present. A missing
// directory counts as empty; placement into it will fail later with a
// clearer reason.
func (s *Sequencer) Next(dir string) (int, error) {
	if n, ok := s.counts.Get(dir); ok {
		return n + 1, nil
	}
	n, err := countEntries(dir)
	if err != nil {
		return 0, err
	}
	s.counts.Add(dir, n)
	return n + 1, nil
}

// Advance records one successful placement into dir. Called only after
// the file actually landed.
func (s *Sequencer) Advance(dir string) {
	if n, ok := s.counts.Get(dir); ok {
		s.counts.Add(dir, n+1)
	}
}

// Invalidate drops the cached count for dir after a failed or partial
// placement; the next Next recounts from disk.
func (s *Sequencer) Invalidate(dir string) {
	s.counts.Remove(dir)
}

func countEntries(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("count entries in %q: %w", dir, err)
	}
	return len(entries), nil
}

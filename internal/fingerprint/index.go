package fingerprint

import (
	"sync"

	"orphansweep/internal/scanner"
)

// Index maps fingerprints to the records that produced them within one
// hashing batch. When two records produce the same fingerprint the one
// completing later replaces the earlier; completion order is unspecified,
// so callers must only rely on fingerprint presence, never on which record
// won.
type Index struct {
	mu      sync.Mutex
	entries map[string]scanner.FileRecord
}

func NewIndex() *Index {
	return &Index{entries: make(map[string]scanner.FileRecord)}
}

func (i *Index) Add(digest string, rec scanner.FileRecord) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[digest] = rec
}

func (i *Index) Has(digest string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.entries[digest]
	return ok
}

func (i *Index) Get(digest string) (scanner.FileRecord, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	rec, ok := i.entries[digest]
	return rec, ok
}

func (i *Index) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.entries)
}

// All returns a copy of the digest to record mapping.
func (i *Index) All() map[string]scanner.FileRecord {
	i.mu.Lock()
	defer i.mu.Unlock()

	entries := make(map[string]scanner.FileRecord, len(i.entries))
	for digest, rec := range i.entries {
		entries[digest] = rec
	}
	return entries
}

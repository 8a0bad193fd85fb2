// Package ledger keeps the per-document summary of the most recent alt rewrite.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/alttag/pkg/core"
)

// DefaultKey is the KV key the ledger persists under.
const DefaultKey = "alttag_summary"

// Record is the summary of the latest update of one document.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"date"`
}

// Summary is a snapshot of the ledger.
type Summary struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
}

// Ledger is an insertion-ordered map of document ID to Record, persisted as a
// whole on every mutation.
type Ledger struct {
	mu      sync.Mutex
	store   core.KVStore
	key     string
	records []Record
	index   map[string]int
	writes  int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithKey sets the KV key. Defaults to DefaultKey.
func WithKey(key string) Option {
	return func(l *Ledger) {
		if key != "" {
			l.key = key
		}
	}
}

// Open loads the ledger from store. A missing key yields an empty ledger;
// undecodable data is an error.
func Open(ctx context.Context, store core.KVStore, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store: store,
		key:   DefaultKey,
		index: make(map[string]int),
	}
	for _, opt := range opts {
		opt(l)
	}

	data, ok, err := store.Get(ctx, l.key)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if !ok || len(data) == 0 {
		return l, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	l.records, l.index = dedupe(records)
	return l, nil
}

// Record upserts the entry for id, replacing any prior entry entirely.
// An existing entry keeps its position. The new state is only visible once
// it has been written to the store.
func (l *Ledger) Record(ctx context.Context, id, title string, count int, ts time.Time) error {
	if id == "" {
		return core.ErrEmptyID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]Record, len(l.records))
	copy(next, l.records)

	rec := Record{ID: id, Title: title, Count: count, UpdatedAt: ts}
	pos, exists := l.index[id]
	if exists {
		next[pos] = rec
	} else {
		next = append(next, rec)
	}

	if err := l.persist(ctx, next); err != nil {
		return err
	}

	l.records = next
	if !exists {
		l.index[id] = len(next) - 1
	}
	return nil
}

// Summary returns the current records in insertion order and the sum of their counts.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := Summary{Records: make([]Record, len(l.records))}
	copy(out.Records, l.records)
	for _, r := range l.records {
		out.Total += r.Count
	}
	return out
}

// Get returns the record for id.
func (l *Ledger) Get(id string) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.index[id]
	if !ok {
		return Record{}, false
	}
	return l.records[pos], true
}

// Clear removes every record. Clearing an empty ledger is a no-op success.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(ctx, l.key); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	l.writes++
	l.records = nil
	l.index = make(map[string]int)
	return nil
}

func (l *Ledger) persist(ctx context.Context, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := l.store.Set(ctx, l.key, data); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	l.writes++
	return nil
}

// dedupe keeps the last record per ID at the position of its first occurrence.
func dedupe(records []Record) ([]Record, map[string]int) {
	out := make([]Record, 0, len(records))
	index := make(map[string]int, len(records))
	for _, r := range records {
		if pos, ok := index[r.ID]; ok {
			out[pos] = r
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	return out, index
}

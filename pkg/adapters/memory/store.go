// Package memory provides in-process implementations of the core ports.
// Nothing is persisted; it backs tests and ephemeral runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/alttag/pkg/core"
)

// Store implements core.DocumentStore in memory.
// When a bus is attached, every write publishes a SavedEvent like a hosting system would.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]core.Document
	bus     core.TriggerBus
	onError func(error)
}

// Option configures a Store.
type Option func(*Store)

// WithErrorHandler receives the handler errors of events published after a body update.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Store) {
		s.onError = fn
	}
}

// NewStore creates an empty Store. bus may be nil.
func NewStore(bus core.TriggerBus, opts ...Option) *Store {
	s := &Store{
		docs: make(map[string]core.Document),
		bus:  bus,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save creates or replaces a document and publishes a saved event.
// Handler errors are returned to the caller.
func (s *Store) Save(ctx context.Context, doc core.Document) error {
	if doc.ID == "" {
		return core.ErrEmptyID
	}

	s.mu.Lock()
	_, existed := s.docs[doc.ID]
	s.docs[doc.ID] = clone(doc)
	s.mu.Unlock()

	return s.publish(ctx, doc, existed)
}

// Get retrieves a document.
func (s *Store) Get(ctx context.Context, id string) (core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return core.Document{}, core.ErrNotFound
	}
	return clone(doc), nil
}

// Metadata returns a metadata value as a string.
func (s *Store) Metadata(ctx context.Context, id, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return "", false, core.ErrNotFound
	}
	if _, ok := doc.Metadata[key]; !ok {
		return "", false, nil
	}
	return doc.Metadata.String(key), true, nil
}

// UpdateBody replaces the body of an existing document and publishes a saved event.
// Once the body is stored the update has succeeded: handler errors go to the
// error handler, never to the caller.
func (s *Store) UpdateBody(ctx context.Context, id, body string) error {
	s.mu.Lock()
	doc, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return core.ErrNotFound
	}
	doc.Body = body
	s.docs[id] = doc
	s.mu.Unlock()

	if err := s.publish(ctx, clone(doc), true); err != nil && s.onError != nil {
		s.onError(err)
	}
	return nil
}

// DisplayTitle returns the title of a document.
func (s *Store) DisplayTitle(ctx context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return "", core.ErrNotFound
	}
	return doc.Title, nil
}

func (s *Store) publish(ctx context.Context, doc core.Document, update bool) error {
	if s.bus == nil {
		return nil
	}
	return s.bus.Publish(ctx, core.SavedEvent{
		ID:        doc.ID,
		Document:  doc,
		IsUpdate:  update,
		Source:    core.SourceStore,
		Timestamp: time.Now(),
	})
}

func clone(doc core.Document) core.Document {
	if doc.Metadata != nil {
		meta := make(core.Metadata, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		doc.Metadata = meta
	}
	return doc
}

var _ core.DocumentStore = (*Store)(nil)

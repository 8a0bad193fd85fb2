package core

import "context"

// DocumentStore is the contract the engine uses to read and write documents.
// Adhering to this interface keeps the engine independent of the hosting system.
type DocumentStore interface {
	// Get retrieves a document by its ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (Document, error)

	// Metadata returns a single metadata value. ok is false when the key is absent.
	Metadata(ctx context.Context, id, key string) (value string, ok bool, err error)

	// UpdateBody replaces the body of an existing document.
	UpdateBody(ctx context.Context, id, body string) error

	// DisplayTitle returns the current display title of a document.
	DisplayTitle(ctx context.Context, id string) (string, error)
}

// TriggerBus delivers saved events to subscribed handlers.
type TriggerBus interface {
	Subscribe(h Handler)
	Unsubscribe(h Handler)
	Publish(ctx context.Context, ev SavedEvent) error
}

// PermissionOracle answers whether an actor may edit a document.
type PermissionOracle interface {
	CanEdit(ctx context.Context, actor, id string) bool
}

// RevisionChecker reports whether an ID names a historical revision
// rather than the canonical current version of a document.
type RevisionChecker interface {
	IsRevision(ctx context.Context, id string) bool
}

// KVStore is a durable key-value medium.
type KVStore interface {
	// Get returns the stored value. ok is false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

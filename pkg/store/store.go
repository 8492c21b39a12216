// Package store provides persistence for saved document streams.
//
// This package defines the storage interface for named documents, with
// implementations for different backends:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for server deployments
//
// # Architecture
//
// A stored document holds the raw serialized stream plus metadata (name,
// format, timestamps, optional expiration). The Store interface supports:
//   - Get/Put/Delete operations
//   - Listing with tag and name filters
//   - Cleanup of expired documents
//
// Documents are content, not parsed trees: the server re-parses on
// demand so stored bytes stay format-authoritative.
//
// # Usage
//
// Create a store:
//
//	// Development
//	st := store.NewMemoryStore()
//
//	// Production
//	st, err := store.NewMongoStore(ctx, "mongodb://localhost:27017", "treeline")
//
// Manage documents:
//
//	doc := store.New("deploy-config", "yaml", data, store.DefaultTTL)
//	if err := st.Put(ctx, doc); err != nil {
//	    return err
//	}
//
//	doc, err := st.Get(ctx, doc.ID)
//	if err != nil {
//	    return err
//	}
//	if doc == nil {
//	    // Document not found or expired
//	}
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a Put would reuse a name that
	// another document already holds.
	ErrDuplicateName = errors.New("duplicate document name")
)

// Document is a stored serialized stream with metadata.
type Document struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Format    string    `json:"format" bson:"format"`
	Content   []byte    `json:"content" bson:"content"`
	RootTag   string    `json:"root_tag,omitempty" bson:"root_tag,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
}

// IsExpired returns true if the document has an expiration and it has passed.
func (d *Document) IsExpired() bool {
	return !d.ExpiresAt.IsZero() && time.Now().After(d.ExpiresAt)
}

// Touch updates the modification time, typically before a Put that
// replaces content.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
}

// ListFilter narrows a List call. Zero values match everything.
type ListFilter struct {
	// Name matches documents with exactly this name.
	Name string

	// RootTag matches documents whose root node carries this tag.
	RootTag string

	// Limit caps the number of results; zero means no cap.
	Limit int
}

// Store is the interface for document storage backends.
type Store interface {
	// Get retrieves a document by ID.
	// Returns nil, nil if the document doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Document, error)

	// Put stores a document, replacing any existing document with the
	// same ID. A different document holding the same name fails with
	// ErrDuplicateName.
	Put(ctx context.Context, doc *Document) error

	// Delete removes a document. Deleting an absent ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns documents matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Document, error)

	// Cleanup removes expired documents (may be a no-op for backends
	// with native TTL support).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the default document lifetime. Zero disables expiration;
// the server applies this default to anonymous saves.
const DefaultTTL = 30 * 24 * time.Hour

// New creates a document with a fresh ID and timestamps. A zero ttl
// means the document never expires. Name and format are assumed to be
// validated by the caller.
func New(name, format string, content []byte, ttl time.Duration) *Document {
	now := time.Now().UTC()
	doc := &Document{
		ID:        uuid.NewString(),
		Name:      name,
		Format:    format,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		doc.ExpiresAt = now.Add(ttl)
	}
	return doc
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory document store for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Document, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if doc.IsExpired() {
		s.mu.Lock()
		delete(s.docs, id)
		s.mu.Unlock()
		return nil, nil
	}

	clone := *doc
	return &clone, nil
}

func (s *MemoryStore) Put(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.docs {
		if id != doc.ID && existing.Name == doc.Name && !existing.IsExpired() {
			return ErrDuplicateName
		}
	}

	clone := *doc
	s.docs[doc.ID] = &clone
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, filter ListFilter) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Document
	for _, doc := range s.docs {
		if doc.IsExpired() {
			continue
		}
		if filter.Name != "" && doc.Name != filter.Name {
			continue
		}
		if filter.RootTag != "" && doc.RootTag != filter.RootTag {
			continue
		}
		clone := *doc
		out = append(out, &clone)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, doc := range s.docs {
		if !doc.ExpiresAt.IsZero() && now.After(doc.ExpiresAt) {
			delete(s.docs, id)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

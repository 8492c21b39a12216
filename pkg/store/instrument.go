package store

import (
	"context"
	"time"

	"github.com/matzehuels/treeline/pkg/observability"
)

// Instrument wraps a store so every operation reports timing through the
// registered observability hooks. backend names the implementation in
// hook calls ("memory", "mongo").
func Instrument(backend string, s Store) Store {
	return &instrumentedStore{backend: backend, inner: s}
}

type instrumentedStore struct {
	backend string
	inner   Store
}

func (s *instrumentedStore) Get(ctx context.Context, id string) (*Document, error) {
	start := time.Now()
	doc, err := s.inner.Get(ctx, id)
	observability.Store().OnStoreGet(ctx, s.backend, doc != nil, time.Since(start))
	if err != nil {
		observability.Store().OnStoreError(ctx, s.backend, "get", err)
	}
	return doc, err
}

func (s *instrumentedStore) Put(ctx context.Context, doc *Document) error {
	start := time.Now()
	err := s.inner.Put(ctx, doc)
	size := 0
	if doc != nil {
		size = len(doc.Content)
	}
	observability.Store().OnStorePut(ctx, s.backend, size, time.Since(start))
	if err != nil {
		observability.Store().OnStoreError(ctx, s.backend, "put", err)
	}
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, id)
	observability.Store().OnStoreDelete(ctx, s.backend, time.Since(start))
	if err != nil {
		observability.Store().OnStoreError(ctx, s.backend, "delete", err)
	}
	return err
}

func (s *instrumentedStore) List(ctx context.Context, filter ListFilter) ([]*Document, error) {
	docs, err := s.inner.List(ctx, filter)
	if err != nil {
		observability.Store().OnStoreError(ctx, s.backend, "list", err)
	}
	return docs, err
}

func (s *instrumentedStore) Cleanup(ctx context.Context) error {
	err := s.inner.Cleanup(ctx)
	if err != nil {
		observability.Store().OnStoreError(ctx, s.backend, "cleanup", err)
	}
	return err
}

func (s *instrumentedStore) Close() error {
	return s.inner.Close()
}

var _ Store = (*instrumentedStore)(nil)

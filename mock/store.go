package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a mock implementation of docmirror.DocumentStore.
type DocumentStore struct {
	WriteDocumentFn  func(ctx context.Context, filename string, content []byte) error
	RemoveDocumentFn func(ctx context.Context, filename string) error
}

func (s *DocumentStore) WriteDocument(ctx context.Context, filename string, content []byte) error {
	return s.WriteDocumentFn(ctx, filename, content)
}

func (s *DocumentStore) RemoveDocument(ctx context.Context, filename string) error {
	return s.RemoveDocumentFn(ctx, filename)
}

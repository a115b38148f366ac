package docmirror

import "context"

// DocumentStore persists mirrored documentation files in a flat directory.
type DocumentStore interface {
	// WriteDocument creates or overwrites a file.
	WriteDocument(ctx context.Context, filename string, content []byte) error

	// RemoveDocument deletes a file. Removing a file that does not exist is
	// not an error.
	RemoveDocument(ctx context.Context, filename string) error
}

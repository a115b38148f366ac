package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/docmirror"
)

// Ensure DocDir implements docmirror.DocumentStore at compile time.
var _ docmirror.DocumentStore = (*DocDir)(nil)

// DocDir stores mirrored files in a single flat directory.
type DocDir struct {
	dir string
}

// NewDocDir creates the directory if needed and returns a store for it.
func NewDocDir(dir string) (*DocDir, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DocDir{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (d *DocDir) Dir() string {
	return d.dir
}

// WriteDocument creates or overwrites filename with content.
func (d *DocDir) WriteDocument(ctx context.Context, filename string, content []byte) error {
	if err := validFilename(filename); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.dir, filename), content, 0644)
}

// RemoveDocument deletes filename. A file that does not exist is not an
// error; the goal state is the file being gone.
func (d *DocDir) RemoveDocument(ctx context.Context, filename string) error {
	if err := validFilename(filename); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(d.dir, filename))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// validFilename rejects names that would escape the flat directory.
func validFilename(name string) error {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return docmirror.Errorf(docmirror.EINVALID, "invalid document filename %q", name)
	}
	return nil
}

// Package fs provides filesystem-backed storage for mirrored documentation
// and its manifest.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/docmirror"
)

// Ensure ManifestStore implements docmirror.ManifestService at compile time.
var _ docmirror.ManifestService = (*ManifestStore)(nil)

// ManifestStore persists the manifest as pretty-printed JSON inside the docs
// directory, with atomic replace semantics: the manifest is written to a
// temporary file and renamed over the previous one.
type ManifestStore struct {
	dir      string
	filename string
}

// NewManifestStore creates a store rooted at dir. An empty filename selects
// docmirror.ManifestFilename.
func NewManifestStore(dir, filename string) *ManifestStore {
	if filename == "" {
		filename = docmirror.ManifestFilename
	}
	return &ManifestStore{dir: dir, filename: filename}
}

// Path returns the manifest's location on disk.
func (s *ManifestStore) Path() string {
	return filepath.Join(s.dir, s.filename)
}

// Load reads the manifest. A missing file yields an empty manifest so a
// first run starts cleanly; an unreadable or malformed file is an error the
// caller gets to decide about.
func (s *ManifestStore) Load(ctx context.Context) (*docmirror.Manifest, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return docmirror.NewManifest(), nil
	}
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "read manifest: %v", err)
	}

	var m docmirror.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "parse manifest %s: %v", s.Path(), err)
	}
	if m.Files == nil {
		m.Files = make(map[string]*docmirror.ManifestEntry)
	}
	return &m, nil
}

// Save writes the complete manifest in one shot. A reader never observes a
// partial manifest: the bytes land in a temporary file first and replace the
// previous manifest by rename.
func (s *ManifestStore) Save(ctx context.Context, m *docmirror.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return docmirror.Errorf(docmirror.EINTERNAL, "encode manifest: %v", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path())
}

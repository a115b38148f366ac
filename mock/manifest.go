package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.ManifestService = (*ManifestService)(nil)

// ManifestService is a mock implementation of docmirror.ManifestService.
type ManifestService struct {
	LoadFn func(ctx context.Context) (*docmirror.Manifest, error)
	SaveFn func(ctx context.Context, m *docmirror.Manifest) error
}

func (s *ManifestService) Load(ctx context.Context) (*docmirror.Manifest, error) {
	return s.LoadFn(ctx)
}

func (s *ManifestService) Save(ctx context.Context, m *docmirror.Manifest) error {
	return s.SaveFn(ctx, m)
}

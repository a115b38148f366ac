package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.DiscoveryService = (*DiscoveryService)(nil)

// DiscoveryService is a mock implementation of docmirror.DiscoveryService.
type DiscoveryService struct {
	DiscoverFn func(ctx context.Context) (*docmirror.Discovery, error)
}

func (s *DiscoveryService) Discover(ctx context.Context) (*docmirror.Discovery, error) {
	return s.DiscoverFn(ctx)
}

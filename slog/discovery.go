package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docmirror"
)

// Ensure LoggingDiscoveryService implements docmirror.DiscoveryService at
// compile time.
var _ docmirror.DiscoveryService = (*LoggingDiscoveryService)(nil)

// LoggingDiscoveryService wraps a DiscoveryService and logs each discovery
// with its page count and duration.
type LoggingDiscoveryService struct {
	next   docmirror.DiscoveryService
	source string
	logger *slog.Logger
}

// NewLoggingDiscoveryService creates a new LoggingDiscoveryService for the
// named source.
func NewLoggingDiscoveryService(next docmirror.DiscoveryService, source string, logger *slog.Logger) *LoggingDiscoveryService {
	return &LoggingDiscoveryService{next: next, source: source, logger: logger}
}

// Discover delegates to the wrapped service and logs the outcome.
func (s *LoggingDiscoveryService) Discover(ctx context.Context) (disc *docmirror.Discovery, err error) {
	defer func(begin time.Time) {
		pages, unknown := 0, 0
		if disc != nil {
			pages = len(disc.Identities)
			unknown = len(disc.Unknown)
		}
		s.logger.Info("discover",
			"source", s.source,
			"pages", pages,
			"unknown", unknown,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Discover(ctx)
}

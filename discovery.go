package docmirror

import "context"

// Discovery is the outcome of scanning one source's link list.
type Discovery struct {
	// Identities are the documents to mirror, in link-list order.
	Identities []Identity

	// Unknown lists pages that matched the source's URL pattern but belong
	// to no configured category set. They are not fetched; surfacing them
	// is how upstream additions get noticed.
	Unknown []string
}

// DiscoveryService discovers the current document set of a single source.
type DiscoveryService interface {
	Discover(ctx context.Context) (*Discovery, error)
}

package docmirror

import "context"

// Fetcher retrieves text documents over the network.
//
// Implementations wrap a plain GET in a bounded retry policy and honor
// server rate-limit hints; the error returned after the budget is exhausted
// is the final attempt's error.
type Fetcher interface {
	// Fetch returns the body at url as text. The context controls
	// cancellation across retries; each attempt is additionally bounded by
	// the implementation's request timeout.
	Fetch(ctx context.Context, url string) (body string, err error)

	// Close releases resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

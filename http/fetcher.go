// Package http provides the HTTP-based implementation of docmirror.Fetcher
// used for all remote reads: link lists, documentation pages, and the
// changelog.
package http

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/docmirror"
)

// DefaultFetchTimeout is the default timeout for a single HTTP request.
const DefaultFetchTimeout = 30 * time.Second

// noCacheHeaders are sent with every request so intermediaries serve the
// current document rather than a stale copy.
var noCacheHeaders = map[string]string{
	"Cache-Control": "no-cache, no-store, must-revalidate",
	"Pragma":        "no-cache",
	"Expires":       "0",
}

// Ensure Fetcher implements docmirror.Fetcher at compile time.
var _ docmirror.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves text documents over HTTP with bounded retries.
//
// Transport failures are retried with jittered exponential backoff up to the
// policy's attempt budget. A rate-limited response is handled differently:
// the fetcher waits the server-specified duration and starts the backoff
// schedule over, consuming no attempt. Consecutive rate-limit waits are
// bounded by the same budget so the loop stays finite.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	retry     docmirror.RetryPolicy
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for a single HTTP request.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithRetryPolicy overrides the default retry bounds.
func WithRetryPolicy(p docmirror.RetryPolicy) Option {
	return func(f *Fetcher) {
		f.retry = p
	}
}

// NewFetcher creates a new retrying HTTP Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: "docmirror/" + docmirror.Version,
		retry:     docmirror.DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the document at the given URL, retrying per the policy.
// The error from the final attempt is returned once the budget is spent.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	attempts := 0
	rateLimited := 0

	for {
		body, retryAfter, err := f.do(ctx, url)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if docmirror.ErrorCode(err) == docmirror.ERATELIMIT {
			// Waiting out a rate limit resets the backoff schedule instead
			// of consuming an attempt.
			rateLimited++
			if rateLimited >= f.retry.MaxAttempts {
				return "", err
			}
			if werr := wait(ctx, retryAfter); werr != nil {
				return "", werr
			}
			attempts = 0
			continue
		}

		attempts++
		if attempts >= f.retry.MaxAttempts {
			return "", err
		}
		if werr := wait(ctx, jitter(f.retry.Backoff(attempts-1))); werr != nil {
			return "", werr
		}
	}
}

// do performs one GET attempt. For rate-limited responses it also returns
// how long the server asked us to wait.
func (f *Fetcher) do(ctx context.Context, url string) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, docmirror.Errorf(docmirror.EINTERNAL, "creating request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range noCacheHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, docmirror.Errorf(docmirror.ETRANSPORT, "GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", f.retryAfter(resp), docmirror.Errorf(docmirror.ERATELIMIT, "HTTP 429 for %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, docmirror.Errorf(docmirror.ETRANSPORT, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, docmirror.Errorf(docmirror.ETRANSPORT, "reading %s: %v", url, err)
	}

	return string(body), 0, nil
}

// retryAfter extracts the Retry-After hint in integer seconds, falling back
// to the policy default when the header is absent or unparseable.
func (f *Fetcher) retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return f.retry.RetryAfterFallback
}

// jitter scales a delay by a random factor in [0.5, 1.0) so independent runs
// do not retry in lockstep.
func jitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.5 + 0.5*rand.Float64()))
}

// wait sleeps for d unless the context is canceled first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Close releases resources. For the HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

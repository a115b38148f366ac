// Package llmstxt discovers documentation pages from llms.txt link lists.
//
// An llms.txt document is a flat markdown file enumerating a site's pages as
// links. Discovery extracts every link under the source's documentation
// prefix and classifies it against the source's category sets. It never
// follows links or crawls.
package llmstxt

import (
	"context"
	"regexp"

	"github.com/fwojciec/docmirror"
)

// Ensure Discoverer implements docmirror.DiscoveryService at compile time.
var _ docmirror.DiscoveryService = (*Discoverer)(nil)

// Discoverer discovers one source's documents from its link list.
type Discoverer struct {
	fetcher docmirror.Fetcher
	source  docmirror.SourceConfig
	pattern *regexp.Regexp
}

// NewDiscoverer creates a Discoverer for the given source.
func NewDiscoverer(fetcher docmirror.Fetcher, source docmirror.SourceConfig) *Discoverer {
	return &Discoverer{
		fetcher: fetcher,
		source:  source,
		pattern: linkPattern(source.DocPrefix),
	}
}

// linkPattern matches markdown links to markdown documents under prefix.
// Group 1 captures the page path without its ".md" suffix.
func linkPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`\[[^\]]*\]\(` + regexp.QuoteMeta(prefix) + `([^)\s]+?)\.md\)`)
}

// Discover fetches the source's link list and returns the identities to
// mirror, in link-list order. Pages outside every configured category set
// are not fetched and are reported in Unknown instead.
//
// A fetch failure is fatal to this source for the run. So is a list with no
// matching links at all: that shape means the upstream format changed, and
// treating it as an empty document set would cascade into deleting the
// source's files.
func (d *Discoverer) Discover(ctx context.Context) (*docmirror.Discovery, error) {
	text, err := d.fetcher.Fetch(ctx, d.source.LinkListURL)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EDISCOVERY, "fetch link list %s: %s",
			d.source.LinkListURL, docmirror.ErrorMessage(err))
	}

	matches := d.pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, docmirror.Errorf(docmirror.EDISCOVERY, "no documentation links found in %s",
			d.source.LinkListURL)
	}

	disc := &docmirror.Discovery{}
	for _, m := range matches {
		path := m[1]
		category, ok := d.source.Categorize(path)
		if !ok {
			disc.Unknown = append(disc.Unknown, path)
			continue
		}
		disc.Identities = append(disc.Identities, docmirror.Identity{
			RemoteURL: d.source.DocPrefix + path + ".md",
			Path:      path,
			Source:    d.source.Name,
			Category:  category,
		})
	}
	return disc, nil
}

package docmirror

import (
	"fmt"
	"regexp"
	"time"
)

// Version is recorded in the manifest's fetch_tool_version field and in the
// default User-Agent header.
const Version = "2.0.0"

// Defaults for the repository identity recorded in the manifest.
const (
	DefaultRepository = "fwojciec/claude-docs"
	DefaultRef        = "main"
)

// Environment variables consulted by Config.ApplyEnv.
const (
	EnvRepository = "GITHUB_REPOSITORY"
	EnvRef        = "GITHUB_REF_NAME"
)

// Conservative identifier patterns for environment-derived values. Anything
// else falls back to the configured value; unvalidated input never reaches a
// persisted URL.
var (
	repositoryPattern = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)
	refPattern        = regexp.MustCompile(`^[\w.-]+$`)
)

// ValidRepository reports whether s is an acceptable owner/repo identifier.
func ValidRepository(s string) bool { return repositoryPattern.MatchString(s) }

// ValidRef reports whether s is an acceptable branch or tag name.
func ValidRef(s string) bool { return refPattern.MatchString(s) }

// RepoConfig identifies the repository that republishes the mirrored files.
// It only feeds the manifest's display URLs; nothing is fetched from it.
type RepoConfig struct {
	Repository string // owner/repo
	Ref        string
	DocsPath   string // path of the docs directory within the repository
}

// BaseURL returns the raw-content URL prefix for republished files.
func (r RepoConfig) BaseURL() string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/", r.Repository, r.Ref, r.DocsPath)
}

// CategorySet names a category and the page slugs that belong to it.
type CategorySet struct {
	Name  Category
	Pages []string
}

// Contains reports whether page belongs to the set.
func (c CategorySet) Contains(page string) bool {
	for _, p := range c.Pages {
		if p == page {
			return true
		}
	}
	return false
}

// SourceConfig describes one web documentation origin.
type SourceConfig struct {
	// Name is the short slug used in filenames and failure labels.
	Name Source

	// Label is the value recorded in manifest entries' source field.
	Label string

	// LinkListURL locates the llms.txt document enumerating the source's
	// pages.
	LinkListURL string

	// DocPrefix is the URL prefix every page of the source lives under.
	DocPrefix string

	// Categories, when non-empty, restricts mirroring to member pages and
	// assigns each its category; the first containing set wins. When empty,
	// every discovered page is mirrored uncategorized.
	Categories []CategorySet
}

// Categorize classifies a page path against the source's category sets. For
// a source without sets it returns (CategoryNone, true). Otherwise it
// returns the first containing set's category, or ok=false when the page
// belongs to none of them.
func (s SourceConfig) Categorize(path string) (Category, bool) {
	if len(s.Categories) == 0 {
		return CategoryNone, true
	}
	for _, set := range s.Categories {
		if set.Contains(path) {
			return set.Name, true
		}
	}
	return CategoryNone, false
}

// Validate returns an error if the source is not fully specified.
func (s SourceConfig) Validate() error {
	if s.Name == "" {
		return Errorf(ECONFIG, "source name required")
	}
	if s.Label == "" {
		return Errorf(ECONFIG, "source %s: label required", s.Name)
	}
	if s.LinkListURL == "" {
		return Errorf(ECONFIG, "source %s: link list URL required", s.Name)
	}
	if s.DocPrefix == "" {
		return Errorf(ECONFIG, "source %s: doc prefix required", s.Name)
	}
	return nil
}

// ChangelogConfig describes the fixed changelog document. The changelog is
// not discovered; it has one known URL and a fixed local filename that
// bypasses path normalization.
type ChangelogConfig struct {
	// URL is the raw, fetchable location of the changelog.
	URL string

	// PageURL is the display location recorded in the manifest.
	PageURL string

	// Filename is the fixed local filename.
	Filename string

	// Label is recorded in the manifest entry's source field.
	Label string

	// Title heads the provenance banner prepended to the fetched content.
	Title string
}

// Banner returns the provenance block prepended to the changelog before
// validation and hashing.
func (c ChangelogConfig) Banner() string {
	return fmt.Sprintf(`# %s

> **Source**: %s
>
> This is the official release changelog, fetched from the upstream
> repository on every sync.

---

`, c.Title, c.PageURL)
}

// RetryPolicy bounds transport retries.
type RetryPolicy struct {
	// MaxAttempts is the number of transport attempts before giving up. It
	// also bounds consecutive rate-limit waits so the retry loop is finite.
	MaxAttempts int

	// BaseDelay seeds the exponential backoff schedule.
	BaseDelay time.Duration

	// MaxDelay caps a single backoff delay, before jitter.
	MaxDelay time.Duration

	// RetryAfterFallback is the wait applied to a rate-limited response that
	// carries no usable Retry-After hint.
	RetryAfterFallback time.Duration
}

// DefaultRetryPolicy returns the standard retry bounds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:        3,
		BaseDelay:          2 * time.Second,
		MaxDelay:           30 * time.Second,
		RetryAfterFallback: 60 * time.Second,
	}
}

// Backoff returns the capped exponential delay for a zero-based attempt
// number, before jitter.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Config carries every fixed value a sync run needs. Values are set at
// construction and never mutated during a run; there is no package-level
// state.
type Config struct {
	// DocsDir is the directory holding mirrored files and the manifest.
	DocsDir string

	// UserAgent is sent with every request.
	UserAgent string

	// RequestTimeout bounds a single fetch attempt.
	RequestTimeout time.Duration

	// FetchDelay is the politeness spacing between consecutive fetches.
	// Zero disables spacing.
	FetchDelay time.Duration

	Repo      RepoConfig
	Retry     RetryPolicy
	Sources   []SourceConfig
	Changelog ChangelogConfig

	// Description is copied into the manifest.
	Description string
}

// DefaultConfig returns the standard configuration: both documentation
// sites, the code site's category sets, and the upstream changelog.
func DefaultConfig() Config {
	return Config{
		DocsDir:        "docs",
		UserAgent:      "docmirror/" + Version,
		RequestTimeout: 30 * time.Second,
		FetchDelay:     500 * time.Millisecond,
		Repo: RepoConfig{
			Repository: DefaultRepository,
			Ref:        DefaultRef,
			DocsPath:   "docs",
		},
		Retry: DefaultRetryPolicy(),
		Sources: []SourceConfig{
			{
				Name:        SourceCode,
				Label:       "code.claude.com",
				LinkListURL: "https://code.claude.com/docs/llms.txt",
				DocPrefix:   "https://code.claude.com/docs/en/",
				Categories: []CategorySet{
					{
						Name: CategoryBuild,
						Pages: []string{
							"sub-agents",
							"plugins",
							"discover-plugins",
							"plugin-marketplaces",
							"skills",
							"output-styles",
							"hooks-guide",
							"headless",
							"mcp",
							"troubleshooting",
							"devcontainer",
						},
					},
					{
						Name: CategoryReference,
						Pages: []string{
							"cli-reference",
							"interactive-mode",
							"slash-commands",
							"checkpointing",
							"hooks",
							"plugins-reference",
						},
					},
				},
			},
			{
				Name:        SourcePlatform,
				Label:       "platform.claude.com",
				LinkListURL: "https://platform.claude.com/llms.txt",
				DocPrefix:   "https://platform.claude.com/docs/en/",
			},
		},
		Changelog: ChangelogConfig{
			URL:      "https://raw.githubusercontent.com/anthropics/claude-code/main/CHANGELOG.md",
			PageURL:  "https://github.com/anthropics/claude-code/blob/main/CHANGELOG.md",
			Filename: "changelog.md",
			Label:    "claude-code-repository",
			Title:    "Claude Code Changelog",
		},
		Description: "Documentation mirror manifest. Keys are filenames; append to base_url for the full URL.",
	}
}

// ApplyEnv overlays environment-derived repository identity onto the config.
// getenv is injected so tests can substitute a fake; pass os.Getenv in
// production. Malformed values are ignored in favor of the current config
// and returned as warnings.
func (c *Config) ApplyEnv(getenv func(string) string) []string {
	var warnings []string
	if v := getenv(EnvRepository); v != "" {
		if ValidRepository(v) {
			c.Repo.Repository = v
		} else {
			warnings = append(warnings, fmt.Sprintf("ignoring invalid %s %q, keeping %q", EnvRepository, v, c.Repo.Repository))
		}
	}
	if v := getenv(EnvRef); v != "" {
		if ValidRef(v) {
			c.Repo.Ref = v
		} else {
			warnings = append(warnings, fmt.Sprintf("ignoring invalid %s %q, keeping %q", EnvRef, v, c.Repo.Ref))
		}
	}
	return warnings
}

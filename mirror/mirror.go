// Package mirror orchestrates documentation sync runs.
//
// A run discovers the current document set, fetches and validates each page,
// writes only content that changed, rebuilds the manifest, and prunes files
// whose documents disappeared upstream. Runs are convergent: repeating one
// against unchanged upstream content writes nothing new.
package mirror

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ProgressFunc is called after each page attempt with the source label, the
// number of pages completed for that source, the source total, and the page
// path.
type ProgressFunc func(source string, completed, total int, page string)

// SyncSource pairs a source's configuration with its discovery service.
type SyncSource struct {
	Config  docmirror.SourceConfig
	Service docmirror.DiscoveryService
}

// Syncer coordinates one full sync run. Pages are processed sequentially in
// discovery order; the Limiter spaces fetches out of politeness.
type Syncer struct {
	Sources   []SyncSource
	Changelog *docmirror.ChangelogConfig
	Fetcher   docmirror.Fetcher
	Validator *docmirror.Validator
	Manifests docmirror.ManifestService
	Docs      docmirror.DocumentStore

	// Limiter spaces consecutive fetches. Nil disables spacing.
	Limiter *rate.Limiter

	// Repo, Description, and Version feed the manifest's metadata.
	Repo        docmirror.RepoConfig
	Description string
	Version     string

	// Progress, when set, receives per-page updates.
	Progress ProgressFunc

	// Logger receives run events. Nil discards them.
	Logger *slog.Logger
}

// Result holds the outcome of a sync run.
type Result struct {
	// RunID correlates the run's log lines.
	RunID string

	// Discovered counts pages found by source discovery. The fixed
	// changelog document is not discovered and not counted.
	Discovered int

	// Successful counts pages written or confirmed unchanged, including the
	// changelog.
	Successful int

	// Failed counts pages that could not be fetched or validated.
	Failed int

	// FailedPages labels each failure as source:path.
	FailedPages []string

	// Files is the number of files recorded in the manifest.
	Files int

	// Bytes is the total size of all successfully mirrored content,
	// whether or not it needed rewriting.
	Bytes int

	Duration time.Duration
}

// runState accumulates one run's bookkeeping.
type runState struct {
	prev    *docmirror.Manifest
	next    *docmirror.Manifest
	present map[string]bool

	discovered  int
	successful  int
	failed      int
	bytes       int
	failedPages []string
	methods     []string

	logger *slog.Logger
}

func (r *runState) fail(label string, err error) {
	r.failed++
	r.failedPages = append(r.failedPages, label)
	r.logger.Error("page failed", "page", label, "err", err)
}

// Run executes a full sync and saves the rebuilt manifest. The returned
// error reports run-level failures only; individual page failures are
// counted in the Result so the next run can retry them.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()[:8]
	logger := s.logger().With("run", runID)

	prev, err := s.Manifests.Load(ctx)
	if err != nil {
		// A corrupt manifest must not stop the mirror: rebuild from scratch
		// and let reconciliation converge the directory.
		logger.Warn("manifest unreadable, starting from empty", "err", docmirror.ErrorMessage(err))
		prev = docmirror.NewManifest()
	}

	run := &runState{
		prev:        prev,
		next:        docmirror.NewManifest(),
		present:     make(map[string]bool),
		failedPages: make([]string, 0),
		methods:     make([]string, 0),
		logger:      logger,
	}

	for _, src := range s.Sources {
		s.syncSource(ctx, run, src)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if s.Changelog != nil {
		s.syncChangelog(ctx, run)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	s.reconcile(ctx, run)

	now := time.Now()
	run.next.LastUpdated = now
	run.next.BaseURL = s.Repo.BaseURL()
	run.next.GitHubRepository = s.Repo.Repository
	run.next.GitHubRef = s.Repo.Ref
	run.next.Description = s.Description
	run.next.FetchMetadata = &docmirror.FetchMetadata{
		LastFetchCompleted:   now,
		FetchDurationSeconds: now.Sub(start).Seconds(),
		TotalPagesDiscovered: run.discovered,
		PagesFetched:         run.successful,
		PagesFailed:          run.failed,
		FailedPages:          run.failedPages,
		DiscoveryMethods:     run.methods,
		TotalFiles:           len(run.next.Files),
		FetchToolVersion:     s.Version,
	}

	if err := s.Manifests.Save(ctx, run.next); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:       runID,
		Discovered:  run.discovered,
		Successful:  run.successful,
		Failed:      run.failed,
		FailedPages: run.failedPages,
		Files:       len(run.next.Files),
		Bytes:       run.bytes,
		Duration:    time.Since(start),
	}
	logger.Info("sync finished",
		"discovered", result.Discovered,
		"successful", result.Successful,
		"failed", result.Failed,
		"files", result.Files,
		"duration", result.Duration,
	)
	return result, nil
}

// syncSource discovers one source and processes its pages in order.
func (s *Syncer) syncSource(ctx context.Context, run *runState, src SyncSource) {
	label := src.Config.Label

	disc, err := src.Service.Discover(ctx)
	if err != nil {
		// Without a document set we cannot tell removed pages from a broken
		// list, so the source's previous entries are carried forward and
		// nothing of its namespace is pruned this run.
		run.logger.Error("discovery failed, keeping previous files", "source", label, "err", docmirror.ErrorMessage(err))
		s.keepPrevious(run, label)
		return
	}

	run.methods = append(run.methods, fmt.Sprintf("%s(%d pages)", label, len(disc.Identities)))
	run.discovered += len(disc.Identities)
	for _, page := range disc.Unknown {
		run.logger.Warn("page not in any category set, skipping", "source", label, "page", page)
	}

	total := len(disc.Identities)
	for i, id := range disc.Identities {
		if ctx.Err() != nil {
			return
		}
		if err := s.syncIdentity(ctx, run, id, label); err != nil {
			run.fail(fmt.Sprintf("%s:%s", id.Source, id.Path), err)
		}
		if s.Progress != nil {
			s.Progress(label, i+1, total, id.Path)
		}
	}
}

// keepPrevious carries a source's previous manifest entries into the new
// manifest untouched, protecting its files from deletion for this run.
func (s *Syncer) keepPrevious(run *runState, label string) {
	kept := 0
	for filename, entry := range run.prev.Files {
		if entry.Source != label {
			continue
		}
		run.next.Files[filename] = entry
		run.present[filename] = true
		kept++
	}
	if kept > 0 {
		run.logger.Warn("carried previous entries forward", "source", label, "count", kept)
	}
}

// syncIdentity fetches, validates, and records a single page.
func (s *Syncer) syncIdentity(ctx context.Context, run *runState, id docmirror.Identity, label string) error {
	if err := id.Validate(); err != nil {
		return err
	}
	filename := docmirror.Filename(id.Path, id.Source, id.Category)

	content, err := s.fetch(ctx, id.RemoteURL)
	if err != nil {
		return err
	}
	if err := s.Validator.Validate(content); err != nil {
		return err
	}
	if !s.Validator.ContainsKeywords(content) {
		run.logger.Warn("content lacks expected documentation terms", "file", filename)
	}

	entry := &docmirror.ManifestEntry{
		OriginalURL:   strings.TrimSuffix(id.RemoteURL, ".md"),
		OriginalMDURL: id.RemoteURL,
		Source:        label,
		Category:      id.Category,
	}
	return s.record(ctx, run, filename, content, entry)
}

// syncChangelog fetches the fixed changelog document and records it under
// its fixed filename with a provenance banner prepended. The banner is part
// of the stored content: it participates in validation and hashing.
func (s *Syncer) syncChangelog(ctx context.Context, run *runState) {
	cfg := s.Changelog

	content, err := s.fetch(ctx, cfg.URL)
	if err != nil {
		run.fail("changelog", err)
		return
	}
	content = cfg.Banner() + content
	if err := s.Validator.Validate(content); err != nil {
		run.fail("changelog", err)
		return
	}

	entry := &docmirror.ManifestEntry{
		OriginalURL:   cfg.PageURL,
		OriginalMDURL: cfg.URL,
		Source:        cfg.Label,
	}
	if err := s.record(ctx, run, cfg.Filename, content, entry); err != nil {
		run.fail("changelog", err)
	}
}

// fetch applies the politeness limiter, then reads url through the retrying
// transport.
func (s *Syncer) fetch(ctx context.Context, url string) (string, error) {
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	return s.Fetcher.Fetch(ctx, url)
}

// record hashes content, writes the file only when it differs from the
// previous run's copy, and registers the entry in the new manifest.
func (s *Syncer) record(ctx context.Context, run *runState, filename, content string, entry *docmirror.ManifestEntry) error {
	hash := ContentHash([]byte(content))

	if prevEntry, ok := run.prev.Files[filename]; ok && prevEntry.Hash == hash {
		entry.LastUpdated = prevEntry.LastUpdated
		run.logger.Info("unchanged", "file", filename)
	} else {
		if err := s.Docs.WriteDocument(ctx, filename, []byte(content)); err != nil {
			return err
		}
		entry.LastUpdated = time.Now()
		run.logger.Info("updated", "file", filename, "bytes", len(content))
	}

	entry.Hash = hash
	run.next.Files[filename] = entry
	run.present[filename] = true
	run.successful++
	run.bytes += len(content)
	return nil
}

// reconcile deletes files recorded by the previous run that this run did not
// produce. The manifest itself is never deleted.
func (s *Syncer) reconcile(ctx context.Context, run *runState) {
	for filename := range run.prev.Files {
		if run.present[filename] || filename == docmirror.ManifestFilename {
			continue
		}
		if err := s.Docs.RemoveDocument(ctx, filename); err != nil {
			run.logger.Error("failed to remove obsolete file", "file", filename, "err", err)
			continue
		}
		run.logger.Info("removed obsolete file", "file", filename)
	}
}

func (s *Syncer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// ContentHash returns the hex SHA-256 digest of data. File hashes in the
// manifest are always computed over the exact bytes written to disk.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

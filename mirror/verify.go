package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/fwojciec/docmirror"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultVerifyConcurrency bounds parallel hash checks.
	DefaultVerifyConcurrency = 4

	// DefaultMinChangelogVersions is the number of release headings a
	// healthy changelog mirror is expected to carry.
	DefaultMinChangelogVersions = 5

	// minChangelogBytes guards against a truncated changelog download.
	minChangelogBytes = 500
)

// versionHeading matches one release heading in the mirrored changelog.
var versionHeading = regexp.MustCompile(`(?m)^#{2,3}\s+v?\d+\.\d+`)

// SchemaValidator checks raw manifest bytes against the published schema.
type SchemaValidator interface {
	Validate(data []byte) error
}

// Verifier audits a mirror directory against its manifest: schema
// conformance, file presence, hash integrity, orphans, expected category
// pages, and origin allow-listing. It reads the directory directly rather
// than going through a store so that it checks what is actually on disk.
type Verifier struct {
	Config docmirror.Config

	// Schema, when set, validates the raw manifest bytes.
	Schema SchemaValidator

	// Concurrency bounds parallel hash checks. Zero means
	// DefaultVerifyConcurrency.
	Concurrency int

	// MinChangelogVersions overrides DefaultMinChangelogVersions when
	// positive.
	MinChangelogVersions int

	Logger *slog.Logger
}

// VerifyReport lists everything Verify found wrong. Problems are sorted so
// output is stable across runs.
type VerifyReport struct {
	FilesChecked int
	Problems     []string
}

// OK reports whether the mirror passed every check.
func (r *VerifyReport) OK() bool { return len(r.Problems) == 0 }

// Verify runs every audit and returns the collected problems. It returns an
// error only when the audit itself cannot run; a failing mirror is reported
// through the VerifyReport.
func (v *Verifier) Verify(ctx context.Context) (*VerifyReport, error) {
	dir := v.Config.DocsDir
	report := &VerifyReport{Problems: make([]string, 0)}

	raw, err := os.ReadFile(filepath.Join(dir, docmirror.ManifestFilename))
	if err != nil {
		report.Problems = append(report.Problems, fmt.Sprintf("manifest unreadable: %v", err))
		return report, nil
	}

	if v.Schema != nil {
		if err := v.Schema.Validate(raw); err != nil {
			report.Problems = append(report.Problems, fmt.Sprintf("manifest schema: %s", docmirror.ErrorMessage(err)))
		}
	}

	var m docmirror.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		report.Problems = append(report.Problems, fmt.Sprintf("manifest unparseable: %v", err))
		return report, nil
	}

	if meta := m.FetchMetadata; meta != nil && meta.TotalFiles != len(m.Files) {
		report.Problems = append(report.Problems,
			fmt.Sprintf("manifest metadata counts %d files, manifest lists %d", meta.TotalFiles, len(m.Files)))
	}

	problems, checked, err := v.checkFiles(ctx, dir, &m)
	if err != nil {
		return nil, err
	}
	report.FilesChecked = checked
	report.Problems = append(report.Problems, problems...)

	report.Problems = append(report.Problems, v.checkOrigins(&m)...)
	report.Problems = append(report.Problems, v.checkExpectedPages(&m)...)

	orphans, err := v.checkOrphans(dir, &m)
	if err != nil {
		return nil, err
	}
	report.Problems = append(report.Problems, orphans...)
	report.Problems = append(report.Problems, v.checkChangelog(dir)...)

	sort.Strings(report.Problems)
	v.logger().Info("verify finished", "files", report.FilesChecked, "problems", len(report.Problems))
	return report, nil
}

// checkFiles confirms every manifest entry's file exists and hashes to the
// recorded digest. Hashing fans out across files.
func (v *Verifier) checkFiles(ctx context.Context, dir string, m *docmirror.Manifest) ([]string, int, error) {
	var (
		mu       sync.Mutex
		problems []string
		checked  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency())
	for filename, entry := range m.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, filename))

			mu.Lock()
			defer mu.Unlock()
			checked++
			switch {
			case os.IsNotExist(err):
				problems = append(problems, "file missing: "+filename)
			case err != nil:
				problems = append(problems, fmt.Sprintf("file unreadable: %s: %v", filename, err))
			default:
				if got := ContentHash(data); got != entry.Hash {
					problems = append(problems, fmt.Sprintf("hash mismatch: %s: manifest %.12s, disk %.12s", filename, entry.Hash, got))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return problems, checked, nil
}

// checkOrigins confirms every entry points back at a configured origin.
func (v *Verifier) checkOrigins(m *docmirror.Manifest) []string {
	var problems []string
	for filename, entry := range m.Files {
		if !v.allowedOrigin(entry) {
			problems = append(problems, fmt.Sprintf("unexpected origin: %s: %s", filename, entry.OriginalURL))
		}
	}
	return problems
}

func (v *Verifier) allowedOrigin(entry *docmirror.ManifestEntry) bool {
	url := entry.OriginalMDURL
	if url == "" {
		url = entry.OriginalURL
	}
	if cl := v.Config.Changelog; cl.URL != "" && url == cl.URL {
		return true
	}
	for _, src := range v.Config.Sources {
		if strings.HasPrefix(url, src.DocPrefix) {
			return true
		}
	}
	return false
}

// checkExpectedPages confirms every page named by a category set made it
// into the manifest.
func (v *Verifier) checkExpectedPages(m *docmirror.Manifest) []string {
	var problems []string
	for _, src := range v.Config.Sources {
		for _, set := range src.Categories {
			for _, page := range set.Pages {
				filename := docmirror.Filename(page, src.Name, set.Name)
				if _, ok := m.Files[filename]; !ok {
					problems = append(problems, fmt.Sprintf("expected %s/%s page missing: %s", src.Name, set.Name, filename))
				}
			}
		}
	}
	return problems
}

// checkOrphans lists markdown files on disk the manifest does not account
// for.
func (v *Verifier) checkOrphans(dir string, m *docmirror.Manifest) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var problems []string
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		if _, ok := m.Files[name]; !ok {
			problems = append(problems, "orphan file not in manifest: "+name)
		}
	}
	return problems, nil
}

// checkChangelog confirms the mirrored changelog is present and carries a
// plausible release history.
func (v *Verifier) checkChangelog(dir string) []string {
	cl := v.Config.Changelog
	if cl.Filename == "" {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(dir, cl.Filename))
	if err != nil {
		return []string{"changelog missing: " + cl.Filename}
	}

	var problems []string
	if len(data) < minChangelogBytes {
		problems = append(problems, fmt.Sprintf("changelog suspiciously short: %d bytes", len(data)))
	}
	if n := len(versionHeading.FindAll(data, -1)); n < v.minVersions() {
		problems = append(problems, fmt.Sprintf("changelog lists %d versions, expected at least %d", n, v.minVersions()))
	}
	return problems
}

func (v *Verifier) concurrency() int {
	if v.Concurrency > 0 {
		return v.Concurrency
	}
	return DefaultVerifyConcurrency
}

func (v *Verifier) minVersions() int {
	if v.MinChangelogVersions > 0 {
		return v.MinChangelogVersions
	}
	return DefaultMinChangelogVersions
}

func (v *Verifier) logger() *slog.Logger {
	if v.Logger != nil {
		return v.Logger
	}
	return slog.New(slog.DiscardHandler)
}

package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/docmirror"
)

// MigrationTypeFilenames labels a filename consistency migration in the
// manifest's migration history.
const MigrationTypeFilenames = "filename_consistency_update"

// Migrator renames previously mirrored files to the canonical
// source-prefixed naming scheme and rewrites the manifest to match. Older
// mirrors predate the scheme, so their filenames drift from what a fresh
// sync would produce.
type Migrator struct {
	Config    docmirror.Config
	Manifests docmirror.ManifestService
	Logger    *slog.Logger
}

// Rename is one planned file move.
type Rename struct {
	From string
	To   string
}

// MigrationPlan lists the moves a migration would perform. Skipped entries
// could not be planned and are left untouched.
type MigrationPlan struct {
	Renames []Rename
	Skipped []string
}

// Empty reports whether there is nothing to migrate.
func (p *MigrationPlan) Empty() bool { return len(p.Renames) == 0 }

// MigrationResult summarizes an applied migration.
type MigrationResult struct {
	Renamed int
	Failed  int
}

// Plan computes the renames needed to bring every mirrored file onto the
// canonical naming scheme without touching anything.
func (g *Migrator) Plan(ctx context.Context) (*MigrationPlan, error) {
	m, err := g.Manifests.Load(ctx)
	if err != nil {
		return nil, err
	}
	return g.plan(m), nil
}

func (g *Migrator) plan(m *docmirror.Manifest) *MigrationPlan {
	plan := &MigrationPlan{Renames: make([]Rename, 0), Skipped: make([]string, 0)}

	filenames := make([]string, 0, len(m.Files))
	for filename := range m.Files {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	claimed := make(map[string]string) // canonical name -> claiming file
	for _, filename := range filenames {
		canonical, ok := g.canonical(m.Files[filename])
		if !ok {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("%s: origin matches no configured source", filename))
			continue
		}
		if canonical == filename {
			claimed[canonical] = filename
			continue
		}
		if holder, taken := claimed[canonical]; taken {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("%s: canonical name already claimed by %s", filename, holder))
			continue
		}
		if _, exists := m.Files[canonical]; exists {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("%s: canonical name %s already exists", filename, canonical))
			continue
		}
		claimed[canonical] = filename
		plan.Renames = append(plan.Renames, Rename{From: filename, To: canonical})
	}

	sort.Strings(plan.Skipped)
	return plan
}

// canonical derives the filename a fresh sync would give entry. The
// changelog keeps its fixed name; web pages are re-derived from their origin
// URL.
func (g *Migrator) canonical(entry *docmirror.ManifestEntry) (string, bool) {
	if cl := g.Config.Changelog; cl.Label != "" && entry.Source == cl.Label {
		return cl.Filename, true
	}

	url := entry.OriginalMDURL
	if url == "" {
		url = entry.OriginalURL + ".md"
	}
	for _, src := range g.Config.Sources {
		if !strings.HasPrefix(url, src.DocPrefix) {
			continue
		}
		path := strings.TrimSuffix(strings.TrimPrefix(url, src.DocPrefix), ".md")
		return docmirror.Filename(path, src.Name, entry.Category), true
	}
	return "", false
}

// Apply performs the planned renames, rekeys the manifest, appends a
// migration record, and saves. A rename that fails leaves its entry under
// the old name so the file is never orphaned from the manifest.
func (g *Migrator) Apply(ctx context.Context) (*MigrationResult, error) {
	m, err := g.Manifests.Load(ctx)
	if err != nil {
		return nil, err
	}
	plan := g.plan(m)
	logger := g.logger()

	result := &MigrationResult{}
	for _, r := range plan.Renames {
		from := filepath.Join(g.Config.DocsDir, r.From)
		to := filepath.Join(g.Config.DocsDir, r.To)
		if err := os.Rename(from, to); err != nil {
			logger.Error("rename failed", "from", r.From, "to", r.To, "err", err)
			result.Failed++
			continue
		}
		m.Files[r.To] = m.Files[r.From]
		delete(m.Files, r.From)
		logger.Info("renamed", "from", r.From, "to", r.To)
		result.Renamed++
	}

	if result.Renamed == 0 {
		return result, nil
	}

	m.Migrations = append(m.Migrations, docmirror.Migration{
		Timestamp:    time.Now(),
		Type:         MigrationTypeFilenames,
		FilesRenamed: result.Renamed,
		Description:  fmt.Sprintf("renamed %d files to the source-prefixed naming scheme", result.Renamed),
	})
	if err := g.Manifests.Save(ctx, m); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *Migrator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.New(slog.DiscardHandler)
}

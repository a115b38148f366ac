package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/docmirror"
	main "github.com/fwojciec/docmirror/cmd/docmirror"
	"github.com/fwojciec/docmirror/fs"
	"github.com/fwojciec/docmirror/mirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// e2e hosts a fake pair of documentation sites plus a changelog and a config
// file pointing the CLI at them.
type e2e struct {
	srv     *httptest.Server
	dir     string
	cfgPath string
}

func pageBody(title string) string {
	return "# " + title + "\n\nIntroduction to " + title + ".\n\n## Usage\n\n- step one\n- step two\n"
}

const changelogBody = `## 2.0.13

- Fixed resume after compaction in long sessions
- Improved hook timeout handling on slow machines

## 2.0.12

- Added plugin marketplaces and discovery commands
- Fixed a crash when the settings file is read-only

## 2.0.11

- Added checkpointing for file edits made during a session
- Improved slash command completion latency

## 2.0.10

- Fixed terminal title updates on tmux
- Added output style configuration

## 2.0.9

- Added devcontainer reference configuration
- Fixed MCP server restarts during reconnect

## 2.0.8

- Improved headless mode logging
- Fixed sub-agent context handoff
`

func newE2E(t *testing.T) *e2e {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}
	}

	mux.HandleFunc("/code/llms.txt", page(fmt.Sprintf(`# Docs

- [Hooks guide](%[1]s/code/docs/en/hooks-guide.md)
- [CLI reference](%[1]s/code/docs/en/cli-reference.md)
- [Brand new page](%[1]s/code/docs/en/not-in-any-set.md)
`, srv.URL)))
	mux.HandleFunc("/platform/llms.txt", page(fmt.Sprintf(`# Platform

- [API overview](%s/platform/docs/en/api/overview.md)
`, srv.URL)))
	mux.HandleFunc("/code/docs/en/hooks-guide.md", page(pageBody("Hooks Guide")))
	mux.HandleFunc("/code/docs/en/cli-reference.md", page(pageBody("CLI Reference")))
	mux.HandleFunc("/platform/docs/en/api/overview.md", page(pageBody("API Overview")))
	mux.HandleFunc("/repo/CHANGELOG.md", page(changelogBody))

	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "docmirror.yaml")
	cfg := fmt.Sprintf(`docs_dir: unused
fetch_delay: 0s
repo:
  repository: testowner/testdocs
  ref: main
  docs_path: docs
retry:
  max_attempts: 2
  base_delay: 1ms
  max_delay: 5ms
  retry_after_fallback: 1ms
sources:
  - name: code
    label: code.test
    link_list_url: %[1]s/code/llms.txt
    doc_prefix: %[1]s/code/docs/en/
    categories:
      - name: bwc
        pages: [hooks-guide]
      - name: ref
        pages: [cli-reference]
  - name: platform
    label: platform.test
    link_list_url: %[1]s/platform/llms.txt
    doc_prefix: %[1]s/platform/docs/en/
changelog:
  url: %[1]s/repo/CHANGELOG.md
  page_url: https://github.example.com/CHANGELOG.md
  filename: changelog.md
  label: changelog-repository
  title: Test Changelog
`, srv.URL)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	return &e2e{srv: srv, dir: dir, cfgPath: cfgPath}
}

// run executes the CLI against the fixture with a scrubbed environment.
func (e *e2e) run(t *testing.T, getenv func(string) string, args ...string) (string, string, error) {
	t.Helper()
	m := main.NewMain()
	m.Getenv = getenv
	if m.Getenv == nil {
		m.Getenv = func(string) string { return "" }
	}
	var stdout, stderr bytes.Buffer
	err := m.Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (e *e2e) args(cmd ...string) []string {
	return append(cmd, "--config", e.cfgPath, "--dir", e.dir)
}

func (e *e2e) manifest(t *testing.T) *docmirror.Manifest {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, docmirror.ManifestFilename))
	require.NoError(t, err)
	var m docmirror.Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	return &m
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("sync mirrors both sites and the changelog", func(t *testing.T) {
		t.Parallel()
		e := newE2E(t)

		stdout, stderr, err := e.run(t, nil, e.args("sync")...)
		require.NoError(t, err, "stderr: %s", stderr)

		assert.Contains(t, stdout, "Synced 4 of 4 pages")

		for _, name := range []string{
			"code__bwc__hooks-guide.md",
			"code__ref__cli-reference.md",
			"platform__api__overview.md",
			"changelog.md",
		} {
			_, err := os.Stat(filepath.Join(e.dir, name))
			assert.NoError(t, err, "expected %s on disk", name)
		}

		content, err := os.ReadFile(filepath.Join(e.dir, "code__bwc__hooks-guide.md"))
		require.NoError(t, err)
		assert.Equal(t, pageBody("Hooks Guide"), string(content))

		changelog, err := os.ReadFile(filepath.Join(e.dir, "changelog.md"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(changelog), "# Test Changelog\n"))
		assert.Contains(t, string(changelog), "2.0.13")

		m := e.manifest(t)
		require.Len(t, m.Files, 4)
		assert.Equal(t, "testowner/testdocs", m.GitHubRepository)
		assert.Equal(t, "https://raw.githubusercontent.com/testowner/testdocs/main/docs/", m.BaseURL)

		hooks := m.Files["code__bwc__hooks-guide.md"]
		require.NotNil(t, hooks)
		assert.Equal(t, "code.test", hooks.Source)
		assert.Equal(t, docmirror.CategoryBuild, hooks.Category)
		assert.Equal(t, e.srv.URL+"/code/docs/en/hooks-guide", hooks.OriginalURL)
		assert.Equal(t, mirror.ContentHash(content), hooks.Hash)

		meta := m.FetchMetadata
		require.NotNil(t, meta)
		assert.Equal(t, 3, meta.TotalPagesDiscovered)
		assert.Equal(t, 4, meta.PagesFetched)
		assert.Equal(t, 0, meta.PagesFailed)
		assert.Empty(t, meta.FailedPages)
		assert.Equal(t, 4, meta.TotalFiles)
		assert.Len(t, meta.DiscoveryMethods, 2)
	})

	t.Run("a second run changes nothing and sync is the default command", func(t *testing.T) {
		t.Parallel()
		e := newE2E(t)

		_, _, err := e.run(t, nil, e.args("sync")...)
		require.NoError(t, err)
		first := e.manifest(t)

		// No command at all: sync is the default.
		stdout, _, err := e.run(t, nil, e.args()...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Synced 4 of 4 pages")

		second := e.manifest(t)
		for name, entry := range first.Files {
			require.Contains(t, second.Files, name)
			assert.True(t, entry.LastUpdated.Equal(second.Files[name].LastUpdated),
				"timestamp of unchanged %s must not move", name)
			assert.Equal(t, entry.Hash, second.Files[name].Hash)
		}
	})

	t.Run("verify passes after a sync and catches tampering", func(t *testing.T) {
		t.Parallel()
		e := newE2E(t)

		_, _, err := e.run(t, nil, e.args("sync")...)
		require.NoError(t, err)

		stdout, _, err := e.run(t, nil, e.args("verify")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Verified 4 files")

		require.NoError(t, os.WriteFile(filepath.Join(e.dir, "platform__api__overview.md"), []byte("tampered"), 0o644))

		stdout, _, err = e.run(t, nil, e.args("verify")...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "verification found")
		assert.Contains(t, stdout, "hash mismatch")
	})

	t.Run("migrate renames a legacy file and verify passes again", func(t *testing.T) {
		t.Parallel()
		e := newE2E(t)

		_, _, err := e.run(t, nil, e.args("sync")...)
		require.NoError(t, err)

		stdout, _, err := e.run(t, nil, e.args("migrate")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Nothing to migrate")

		// Rewind one file to its pre-scheme name.
		store := fs.NewManifestStore(e.dir, "")
		m, err := store.Load(context.Background())
		require.NoError(t, err)
		require.NoError(t, os.Rename(
			filepath.Join(e.dir, "code__bwc__hooks-guide.md"),
			filepath.Join(e.dir, "hooks-guide.md"),
		))
		m.Files["hooks-guide.md"] = m.Files["code__bwc__hooks-guide.md"]
		delete(m.Files, "code__bwc__hooks-guide.md")
		require.NoError(t, store.Save(context.Background(), m))

		stdout, _, err = e.run(t, nil, e.args("migrate")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "hooks-guide.md -> code__bwc__hooks-guide.md")
		assert.Contains(t, stdout, "1 files would be renamed")

		stdout, _, err = e.run(t, nil, e.args("migrate", "--force")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Renamed 1 files")

		migrated := e.manifest(t)
		require.Len(t, migrated.Migrations, 1)
		assert.Equal(t, 1, migrated.Migrations[0].FilesRenamed)

		// The metadata file count predates the migration and still matches,
		// so a full verify must come back clean.
		stdout, _, err = e.run(t, nil, e.args("verify")...)
		require.NoError(t, err, "verify output: %s", stdout)
	})

	t.Run("environment overrides the published repository", func(t *testing.T) {
		t.Parallel()
		e := newE2E(t)

		getenv := func(key string) string {
			if key == docmirror.EnvRepository {
				return "envowner/envdocs"
			}
			return ""
		}
		_, _, err := e.run(t, getenv, e.args("sync")...)
		require.NoError(t, err)

		m := e.manifest(t)
		assert.Equal(t, "envowner/envdocs", m.GitHubRepository)
		assert.Contains(t, m.BaseURL, "envowner/envdocs")
	})

	t.Run("a malformed environment value warns and keeps the config", func(t *testing.T) {
		t.Parallel()
		e := newE2E(t)

		getenv := func(key string) string {
			if key == docmirror.EnvRepository {
				return "not a repo!"
			}
			return ""
		}
		_, stderr, err := e.run(t, getenv, e.args("sync")...)
		require.NoError(t, err)

		assert.Contains(t, stderr, "warning:")
		assert.Equal(t, "testowner/testdocs", e.manifest(t).GitHubRepository)
	})

	t.Run("sync fails when nothing can be mirrored", func(t *testing.T) {
		t.Parallel()
		e := newE2E(t)
		e.srv.Close()

		stdout, _, err := e.run(t, nil, e.args("sync")...)
		require.Error(t, err)
		assert.Equal(t, docmirror.EINTERNAL, docmirror.ErrorCode(err))
		assert.Contains(t, err.Error(), "no pages were fetched successfully")
		assert.Contains(t, stdout, "Synced 0 of")
	})

	t.Run("verbose sync logs transport detail to stderr", func(t *testing.T) {
		t.Parallel()
		e := newE2E(t)

		_, stderr, err := e.run(t, nil, e.args("sync", "-v")...)
		require.NoError(t, err)
		assert.Contains(t, stderr, "msg=fetch")
		assert.Contains(t, stderr, "msg=discover")
	})

	t.Run("failed pages are listed but do not fail a partial run", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)
		mux.HandleFunc("/code/llms.txt", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "- [Good](%[1]s/code/docs/en/good.md)\n- [Bad](%[1]s/code/docs/en/bad.md)\n", srv.URL)
		})
		mux.HandleFunc("/code/docs/en/good.md", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, pageBody("Good"))
		})
		mux.HandleFunc("/code/docs/en/bad.md", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})

		dir := t.TempDir()
		cfgPath := filepath.Join(t.TempDir(), "docmirror.yaml")
		cfg := fmt.Sprintf(`fetch_delay: 0s
retry:
  max_attempts: 2
  base_delay: 1ms
  max_delay: 5ms
  retry_after_fallback: 1ms
sources:
  - name: code
    label: code.test
    link_list_url: %[1]s/code/llms.txt
    doc_prefix: %[1]s/code/docs/en/
changelog:
  url: %[1]s/missing/CHANGELOG.md
  page_url: https://github.example.com/CHANGELOG.md
  filename: changelog.md
  label: changelog-repository
  title: Test Changelog
`, srv.URL)
		require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

		e := &e2e{srv: srv, dir: dir, cfgPath: cfgPath}
		stdout, stderr, err := e.run(t, nil, e.args("sync")...)
		require.NoError(t, err, "partial success must not fail the run")

		assert.Contains(t, stdout, "Synced 1 of 3 pages")
		assert.Contains(t, stderr, "failed: code:bad")
		assert.Contains(t, stderr, "failed: changelog")

		m := e.manifest(t)
		assert.Len(t, m.Files, 1)
		assert.ElementsMatch(t, []string{"code:bad", "changelog"}, m.FetchMetadata.FailedPages)
	})
}

func TestMainHelp(t *testing.T) {
	t.Parallel()

	t.Run("help lists the commands", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		m := main.NewMain()
		err := m.Run(context.Background(), []string{"--help"}, &stdout, &stderr)
		require.NoError(t, err)

		for _, cmd := range []string{"sync", "verify", "migrate"} {
			assert.Contains(t, stdout.String(), cmd)
		}
	})

	t.Run("an unknown command is an error", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		m := main.NewMain()
		err := m.Run(context.Background(), []string{"explode"}, &stdout, &stderr)
		require.Error(t, err)
	})

	t.Run("a missing config file is an error", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		m := main.NewMain()
		m.Getenv = func(string) string { return "" }
		err := m.Run(context.Background(), []string{"sync", "--config", filepath.Join(t.TempDir(), "absent.yaml")}, &stdout, &stderr)
		require.Error(t, err)
		assert.Equal(t, docmirror.ECONFIG, docmirror.ErrorCode(err))
	})
}

// Guards against the retry configuration accidentally slowing the happy
// path: a full mirror of the fixture must finish quickly.
func TestEndToEndDuration(t *testing.T) {
	t.Parallel()
	e := newE2E(t)

	start := time.Now()
	_, _, err := e.run(t, nil, e.args("sync")...)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}

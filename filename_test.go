package docmirror_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/docmirror"
	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		source   docmirror.Source
		category docmirror.Category
		want     string
	}{
		{
			name:     "code page with build category",
			path:     "hooks-guide",
			source:   docmirror.SourceCode,
			category: docmirror.CategoryBuild,
			want:     "code__bwc__hooks-guide.md",
		},
		{
			name:     "code page with reference category",
			path:     "hooks",
			source:   docmirror.SourceCode,
			category: docmirror.CategoryReference,
			want:     "code__ref__hooks.md",
		},
		{
			name:     "platform page keeps nested path",
			path:     "api/agent-sdk/overview",
			source:   docmirror.SourcePlatform,
			category: docmirror.CategoryNone,
			want:     "platform__api__agent-sdk__overview.md",
		},
		{
			name:     "markdown suffix stripped exactly once",
			path:     "page.md.md",
			source:   docmirror.SourcePlatform,
			category: docmirror.CategoryNone,
			want:     "platform__page.md.md",
		},
		{
			name:     "surrounding slashes trimmed",
			path:     "/docs/intro/",
			source:   docmirror.SourcePlatform,
			category: docmirror.CategoryNone,
			want:     "platform__docs__intro.md",
		},
		{
			name:     "suffix stripped before slash trim",
			path:     "guide.md",
			source:   docmirror.SourceCode,
			category: docmirror.CategoryBuild,
			want:     "code__bwc__guide.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := docmirror.Filename(tt.path, tt.source, tt.category)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilenameDeterministic(t *testing.T) {
	t.Parallel()

	a := docmirror.Filename("api/messages", docmirror.SourcePlatform, docmirror.CategoryNone)
	b := docmirror.Filename("api/messages", docmirror.SourcePlatform, docmirror.CategoryNone)
	assert.Equal(t, a, b)
}

func TestFilenameInjectiveOverDiscoveredIdentities(t *testing.T) {
	t.Parallel()

	// A sample shaped like real discovery output: categorized code slugs and
	// uncategorized platform paths. Every identity must map to a unique flat
	// name with no path separators left.
	identities := []struct {
		path     string
		source   docmirror.Source
		category docmirror.Category
	}{
		{"hooks-guide", docmirror.SourceCode, docmirror.CategoryBuild},
		{"hooks", docmirror.SourceCode, docmirror.CategoryReference},
		{"mcp", docmirror.SourceCode, docmirror.CategoryBuild},
		{"hooks", docmirror.SourcePlatform, docmirror.CategoryNone},
		{"hooks-guide", docmirror.SourcePlatform, docmirror.CategoryNone},
		{"api/hooks", docmirror.SourcePlatform, docmirror.CategoryNone},
		{"api/agent-sdk/python", docmirror.SourcePlatform, docmirror.CategoryNone},
		{"agent-sdk/python", docmirror.SourcePlatform, docmirror.CategoryNone},
	}

	seen := make(map[string]int)
	for i, id := range identities {
		name := docmirror.Filename(id.path, id.source, id.category)
		assert.NotContains(t, name, "/", "filename must be flat: %s", name)
		assert.True(t, strings.HasSuffix(name, ".md"), "filename must end in .md: %s", name)
		if prev, ok := seen[name]; ok {
			t.Fatalf("identities %d and %d collide on %s", prev, i, name)
		}
		seen[name] = i
	}
}

package docmirror

import "strings"

// mdSuffix is the markdown suffix shared by remote URLs and local files.
const mdSuffix = ".md"

// Filename maps a remote path and its origin to the flat local filename the
// page is stored under.
//
// The path keeps its full structure: one exact trailing ".md" suffix is
// dropped, surrounding slashes are trimmed, and interior slashes become
// double underscores. The prefix names the source, joined with the category
// when one is present:
//
//	Filename("hooks-guide", SourceCode, CategoryBuild)        = "code__bwc__hooks-guide.md"
//	Filename("hooks", SourceCode, CategoryReference)          = "code__ref__hooks.md"
//	Filename("api/messages.md", SourcePlatform, CategoryNone) = "platform__api__messages.md"
//
// The mapping is pure and deterministic. Over the identities discovery
// actually produces it is injective: category names never occur as path
// segments, and the source prefixes differ.
func Filename(path string, source Source, category Category) string {
	path = strings.TrimSuffix(path, mdSuffix)
	path = strings.Trim(path, "/")
	safe := strings.ReplaceAll(path, "/", "__")

	prefix := string(source)
	if category != CategoryNone {
		prefix += "__" + string(category)
	}
	return prefix + "__" + safe + mdSuffix
}

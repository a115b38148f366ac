package docmirror

// Source identifies one of the web documentation origins.
type Source string

// Documentation origins.
const (
	SourceCode     Source = "code"
	SourcePlatform Source = "platform"
)

// Category is the bucket a code-site page belongs to. Platform pages carry
// no category.
type Category string

// Categories for the code documentation site.
const (
	CategoryNone      Category = ""
	CategoryBuild     Category = "bwc"
	CategoryReference Category = "ref"
)

// Identity describes a discovered remote document before any local naming is
// applied. Identities are recreated by discovery on every run and are never
// persisted; only the manifest entry derived from one is.
type Identity struct {
	// RemoteURL is the absolute, fetchable URL. It always ends in ".md".
	RemoteURL string

	// Path is the portion of the URL used for naming: a short slug on the
	// code site, a nested path on the platform site.
	Path string

	// Source is the origin the identity was discovered from.
	Source Source

	// Category is set for code-site pages only.
	Category Category
}

// Validate returns an error if the identity has invalid fields.
func (id *Identity) Validate() error {
	if id.RemoteURL == "" {
		return Errorf(EINVALID, "identity remote URL required")
	}
	if id.Path == "" {
		return Errorf(EINVALID, "identity path required")
	}
	if id.Source == "" {
		return Errorf(EINVALID, "identity source required")
	}
	return nil
}

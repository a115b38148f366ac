package docmirror

import (
	"context"
	"time"
)

// ManifestFilename is the name of the manifest file inside the docs
// directory. The manifest is exempt from reconciliation and never deleted.
const ManifestFilename = "docs_manifest.json"

// ManifestEntry records the provenance of one mirrored file.
type ManifestEntry struct {
	// OriginalURL is the display form of the page URL with the markdown
	// suffix stripped.
	OriginalURL string `json:"original_url"`

	// OriginalMDURL is the exact URL the content was fetched from.
	OriginalMDURL string `json:"original_md_url,omitempty"`

	// Hash is the hex SHA-256 digest of the file's exact bytes.
	Hash string `json:"hash"`

	// LastUpdated is when the content last changed, not when it was last
	// checked.
	LastUpdated time.Time `json:"last_updated"`

	// Source labels the origin the page came from.
	Source string `json:"source"`

	// Category is set for code-site pages only.
	Category Category `json:"category,omitempty"`
}

// Manifest is the durable record of what the docs directory should contain.
// Filenames map to entries; everything else is run-level metadata.
type Manifest struct {
	Files            map[string]*ManifestEntry `json:"files"`
	LastUpdated      time.Time                 `json:"last_updated"`
	BaseURL          string                    `json:"base_url"`
	GitHubRepository string                    `json:"github_repository"`
	GitHubRef        string                    `json:"github_ref"`
	Description      string                    `json:"description"`
	FetchMetadata    *FetchMetadata            `json:"fetch_metadata,omitempty"`
	Migrations       []Migration               `json:"migrations,omitempty"`
}

// NewManifest returns an empty manifest ready to record entries.
func NewManifest() *Manifest {
	return &Manifest{Files: make(map[string]*ManifestEntry)}
}

// FetchMetadata summarizes the sync run that produced a manifest.
type FetchMetadata struct {
	LastFetchCompleted   time.Time `json:"last_fetch_completed"`
	FetchDurationSeconds float64   `json:"fetch_duration_seconds"`
	TotalPagesDiscovered int       `json:"total_pages_discovered"`
	PagesFetched         int       `json:"pages_fetched_successfully"`
	PagesFailed          int       `json:"pages_failed"`
	FailedPages          []string  `json:"failed_pages"`
	DiscoveryMethods     []string  `json:"discovery_methods"`
	TotalFiles           int       `json:"total_files"`
	FetchToolVersion     string    `json:"fetch_tool_version"`
}

// Migration records one filename-scheme migration applied to the manifest.
type Migration struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         string    `json:"type"`
	FilesRenamed int       `json:"files_renamed"`
	Description  string    `json:"description"`
}

// ManifestService loads and persists the manifest.
type ManifestService interface {
	// Load reads the manifest from storage. A missing manifest is not an
	// error: an empty manifest is returned so a first run starts cleanly.
	Load(ctx context.Context) (*Manifest, error)

	// Save writes the complete manifest in one shot. Implementations must
	// make the write atomic with respect to a concurrent Load.
	Save(ctx context.Context, m *Manifest) error
}

package docmirror

import "strings"

// Defaults for content validation. The thresholds match what real
// documentation pages comfortably clear while catching error pages and
// truncated responses.
const (
	DefaultMinContentLength = 50
	DefaultScanLines        = 50
	DefaultMinIndicators    = 3
)

// htmlProbeWindow is the number of leading bytes searched for an embedded
// html root tag.
const htmlProbeWindow = 100

// Validator classifies fetched text as acceptable markdown documentation.
// Fields are fixed at construction so behavior is testable with substituted
// sets; use NewValidator for the standard configuration.
type Validator struct {
	// MinLength is the minimum length of the content in bytes after
	// stripping surrounding whitespace.
	MinLength int

	// ScanLines bounds how many leading lines are scanned for markdown
	// indicators.
	ScanLines int

	// MinIndicators is the number of indicator hits required within the
	// scanned lines.
	MinIndicators int

	// Indicators are the markdown structural markers counted by the scan.
	Indicators []string

	// Keywords are topical terms expected somewhere in documentation text.
	// Their absence is a soft signal only; see ContainsKeywords.
	Keywords []string
}

// NewValidator returns a Validator with the default thresholds, indicator
// list, and keyword set.
func NewValidator() *Validator {
	return &Validator{
		MinLength:     DefaultMinContentLength,
		ScanLines:     DefaultScanLines,
		MinIndicators: DefaultMinIndicators,
		Indicators: []string{
			"# ", "## ", "### ",
			"```",
			"- ", "* ", "1. ",
			"[",
			"**", "_",
			"> ",
		},
		Keywords: []string{
			"installation", "usage", "example", "api",
			"configuration", "claude", "code",
		},
	}
}

// Validate rejects content that is empty, an HTML page delivered in place of
// markdown, shorter than the minimum, or lacking markdown structure in its
// leading lines. Rejection is terminal for the page this run: the transport
// succeeded, so retrying cannot change the outcome.
func (v *Validator) Validate(content string) error {
	if content == "" {
		return Errorf(EINVALID, "content is empty")
	}
	if strings.HasPrefix(content, "<!DOCTYPE") || containsHTMLTag(content) {
		return Errorf(EINVALID, "received HTML instead of markdown")
	}
	if n := len(strings.TrimSpace(content)); n < v.MinLength {
		return Errorf(EINVALID, "content too short (%d bytes)", n)
	}

	lines := strings.Split(content, "\n")
	if len(lines) > v.ScanLines {
		lines = lines[:v.ScanLines]
	}
	found := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, ind := range v.Indicators {
			if strings.HasPrefix(trimmed, ind) || strings.Contains(line, ind) {
				found++
				break
			}
		}
	}
	if found < v.MinIndicators {
		return Errorf(EINVALID, "content does not look like markdown (%d indicator lines)", found)
	}
	return nil
}

// ContainsKeywords reports whether any configured topical keyword appears in
// the content, case-insensitively. A miss is worth a warning, never a
// rejection.
func (v *Validator) ContainsKeywords(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range v.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// containsHTMLTag reports whether an html root tag appears within the
// leading probe window.
func containsHTMLTag(content string) bool {
	window := content
	if len(window) > htmlProbeWindow {
		window = window[:htmlProbeWindow]
	}
	return strings.Contains(window, "<html")
}

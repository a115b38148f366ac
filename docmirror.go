// Package docmirror mirrors published markdown documentation into a local
// directory. Documents are discovered from fixed llms.txt link lists on two
// documentation sites plus a changelog file in a source repository, fetched
// and validated, and recorded in a JSON manifest of provenance, content
// hashes, and timestamps so repeated runs converge without unnecessary
// writes.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named after
// their primary dependency (e.g., http, fs, llmstxt).
package docmirror

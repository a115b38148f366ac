// Package jsonschema validates manifest documents against the published
// manifest schema.
package jsonschema

import (
	_ "embed"
	"strings"

	"github.com/fwojciec/docmirror"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed manifest.schema.json
var manifestSchema string

// ManifestValidator checks raw manifest JSON against the published shape.
// Consumers of the mirrored repository read the manifest directly, so shape
// drift is a contract break even when this tool can still parse the file.
type ManifestValidator struct {
	schema *gojsonschema.Schema
}

// NewManifestValidator compiles the embedded schema.
func NewManifestValidator() (*ManifestValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(manifestSchema))
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "compile manifest schema: %v", err)
	}
	return &ManifestValidator{schema: schema}, nil
}

// Validate returns an EINVALID error describing every violation when the
// document does not conform.
func (v *ManifestValidator) Validate(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return docmirror.Errorf(docmirror.EINVALID, "manifest is not valid JSON: %v", err)
	}
	if result.Valid() {
		return nil
	}

	var b strings.Builder
	for i, desc := range result.Errors() {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(desc.String())
	}
	return docmirror.Errorf(docmirror.EINVALID, "manifest schema violations: %s", b.String())
}

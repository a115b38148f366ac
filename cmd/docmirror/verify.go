package main

import (
	"fmt"

	"github.com/fwojciec/docmirror"
)

// Run executes the verify command.
func (c *VerifyCmd) Run(deps *Dependencies) error {
	report, err := deps.Verifier.Verify(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}

	for _, problem := range report.Problems {
		fmt.Fprintf(deps.Stdout, "  %s\n", problem)
	}
	if !report.OK() {
		return docmirror.Errorf(docmirror.EINVALID, "verification found %d problems", len(report.Problems))
	}

	fmt.Fprintf(deps.Stdout, "Verified %d files in %s: ok\n", report.FilesChecked, deps.Config.DocsDir)
	return nil
}

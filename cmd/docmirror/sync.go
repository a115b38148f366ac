package main

import (
	"fmt"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/mirror"
)

// Run executes the sync command.
func (c *SyncCmd) Run(deps *Dependencies) error {
	if !c.Quiet {
		deps.Syncer.Progress = func(source string, completed, total int, page string) {
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s: %s\n", completed, total, source, page)
		}
	}

	result, err := deps.Syncer.Run(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}

	for _, page := range result.FailedPages {
		fmt.Fprintf(deps.Stderr, "  failed: %s\n", page)
	}
	fmt.Fprintf(deps.Stdout, "Synced %d of %d pages to %s (%d files, %s, %.1fs)\n",
		result.Successful, result.Successful+result.Failed, deps.Config.DocsDir,
		result.Files, mirror.FormatBytes(result.Bytes), result.Duration.Seconds())

	// A run that mirrors nothing must fail loudly so CI notices, while
	// partial failures leave the previous copies in place for retry.
	if result.Successful == 0 {
		return docmirror.Errorf(docmirror.EINTERNAL, "no pages were fetched successfully")
	}
	return nil
}

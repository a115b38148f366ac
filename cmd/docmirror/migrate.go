package main

import (
	"fmt"

	"github.com/fwojciec/docmirror"
)

// Run executes the migrate command.
func (c *MigrateCmd) Run(deps *Dependencies) error {
	if !c.Force {
		plan, err := deps.Migrator.Plan(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
			return err
		}

		for _, r := range plan.Renames {
			fmt.Fprintf(deps.Stdout, "  %s -> %s\n", r.From, r.To)
		}
		for _, skipped := range plan.Skipped {
			fmt.Fprintf(deps.Stderr, "  skip %s\n", skipped)
		}
		if plan.Empty() {
			fmt.Fprintln(deps.Stdout, "Nothing to migrate")
			return nil
		}
		fmt.Fprintf(deps.Stdout, "%d files would be renamed. Run with --force to apply.\n", len(plan.Renames))
		return nil
	}

	result, err := deps.Migrator.Apply(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docmirror.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Renamed %d files\n", result.Renamed)
	if result.Failed > 0 {
		return docmirror.Errorf(docmirror.EINTERNAL, "%d renames failed", result.Failed)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/fwojciec/winefetch"
	"github.com/fwojciec/winefetch/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.RunID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", winefetch.ErrorMessage(err))
		return err
	}

	wines, err := deps.Wines.FindWines(deps.Ctx, winefetch.WineFilter{
		RunID:      &run.ID,
		FailedOnly: c.FailedOnly,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", winefetch.ErrorMessage(err))
		return err
	}

	output := c.Output
	if c.FailedOnly {
		if output == "" {
			output = fmt.Sprintf("robert_parker_wines_%s_errors.csv", run.ID)
		}
		err = fs.WriteFailureLog(output, wines)
	} else {
		if output == "" {
			output = fmt.Sprintf("robert_parker_wines_%s.xlsx", run.ID)
		}
		err = deps.Exporter.Export(output, wines)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: export %s: %v\n", output, err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d rows from run %s to %s\n", len(wines), run.ID, output)
	return nil
}

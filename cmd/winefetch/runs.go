package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/winefetch"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.Runs.FindRuns(deps.Ctx, winefetch.RunFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", winefetch.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'winefetch scrape' to start one.")
		return nil
	}

	for _, r := range runs {
		status := "unfinished"
		if r.Finished() {
			status = fmt.Sprintf("%d ok, %d failed, %d stopped", r.Succeeded, r.Failed, r.Cancelled)
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %d urls  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Total, status)
	}

	return nil
}

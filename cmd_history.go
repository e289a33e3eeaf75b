package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"cimapbench/constants"
	"cimapbench/report"
)

// HistoryCommand lists stored runs.
type HistoryCommand struct {
	Limit int    `short:"n" long:"limit" description:"number of runs to list"`
	DB    string `long:"db" description:"results database" default:"~/.cimapbench/results.db"`
}

// Execute prints the newest runs first.
func (x *HistoryCommand) Execute(args []string) error {
	limit := x.Limit
	if limit <= 0 {
		limit = constants.HistoryLimit
	}
	st, err := openStore(x.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs(limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDIGEST\tMODE\tTHREADS\tFORKS\tRESULTS\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.Digest[:12], r.Config.Mode,
			r.Config.Threads, r.Config.Forks, r.Results, r.Failures)
	}
	return tw.Flush()
}

// ShowCommand prints one stored run.
type ShowCommand struct {
	JSON bool   `long:"json" description:"print results as JSON"`
	DB   string `long:"db" description:"results database" default:"~/.cimapbench/results.db"`
	Args struct {
		ID int64 `positional-arg-name:"RUN_ID" required:"yes"`
	} `positional-args:"yes"`
}

// Execute prints the results of the requested run.
func (x *ShowCommand) Execute(args []string) error {
	st, err := openStore(x.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.Run(x.Args.ID)
	if err != nil {
		return err
	}
	results, err := st.Results(run.ID)
	if err != nil {
		return err
	}
	if x.JSON {
		return report.WriteJSON(os.Stdout, results)
	}
	fmt.Fprintf(os.Stdout, "run %d  started %s  digest %s\n\n",
		run.ID, run.StartedAt.Format(time.DateTime), run.Digest)
	return report.WriteText(os.Stdout, results)
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"cimapbench/bench"
	"cimapbench/kv"

	"github.com/hashicorp/go-multierror"
)

// ListCommand prints the implementation roster.
type ListCommand struct{}

// Execute lists every registered implementation.
func (x *ListCommand) Execute(args []string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCASE\tDESCRIPTION")
	for _, f := range kv.Default() {
		sensitivity := "sensitive"
		if f.CaseInsensitive {
			sensitivity = "insensitive"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, sensitivity, f.Description)
	}
	return tw.Flush()
}

// VerifyCommand checks implementations against their declared case
// sensitivity without measuring.
type VerifyCommand struct {
	Impl []string `long:"impl" description:"implementations to verify, comma separated or repeated (default: all)"`
}

// Execute verifies each selected implementation and reports all failures.
func (x *VerifyCommand) Execute(args []string) error {
	factories, err := kv.Lookup(splitNames(x.Impl)...)
	if err != nil {
		return err
	}
	var result *multierror.Error
	for _, f := range factories {
		if err := bench.Verify(f); err != nil {
			fmt.Fprintf(os.Stdout, "FAIL  %s\n", f.Name)
			result = multierror.Append(result, err)
			continue
		}
		fmt.Fprintf(os.Stdout, "ok    %s\n", f.Name)
	}
	return result.ErrorOrNil()
}

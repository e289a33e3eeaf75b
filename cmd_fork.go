package main

import (
	"os"

	"cimapbench/bench"
)

// ForkCommand is the child side of a forked trial.
type ForkCommand struct{}

// Execute serves one trial over stdin/stdout.
func (x *ForkCommand) Execute(args []string) error {
	return bench.ServeFork(os.Stdin, os.Stdout)
}

// ════════════════════════════════════════════════════════════════════════════════════════════════
// Case-Insensitive Map Benchmark Harness - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Case-Insensitive Map Benchmark Harness
// Component: Command Line & Process Lifecycle
//
// Description:
//   Parses the command line, installs logging, and dispatches to one command. Reports and the
//   fork protocol own stdout; every log record goes to stderr.
//
// Commands:
//   - run:      measure implementations and print, export and store the results
//   - list:     show the registered implementations
//   - verify:   replay the operation script once against each implementation
//   - history:  list stored runs
//   - show:     print a stored run
//   - fork:     (internal) execute one trial for a parent process
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cimapbench/control"
	"cimapbench/debug"

	"github.com/jessevdk/go-flags"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// GLOBAL OPTIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Options apply to every command.
type Options struct {
	LogLevel string `long:"log-level" default:"notice" description:"logging level [debug, info, notice, warning, error, critical]"`
	LogFile  string `long:"log-file" description:"also write logs to this rotating file"`
}

var (
	options Options
	parser  = flags.NewParser(&options, flags.HelpFlag|flags.PassDoubleDash)

	runCmd     RunCommand
	listCmd    ListCommand
	verifyCmd  VerifyCommand
	historyCmd HistoryCommand
	showCmd    ShowCommand
	forkCmd    ForkCommand
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func main() {
	registerCommands()

	// Logging is installed once the global flags are known, before the
	// selected command executes.
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if err := debug.Init(os.Stderr, options.LogLevel, options.LogFile); err != nil {
			return err
		}
		return cmd.Execute(args)
	}

	setupSignalHandling()

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "cimapbench:", err)
		os.Exit(1)
	}
}

func registerCommands() {
	must := func(_ *flags.Command, err error) {
		if err != nil {
			panic("register command: " + err.Error())
		}
	}
	must(parser.AddCommand("run",
		"run benchmarks",
		"The run command measures the selected implementations in every selected mode, prints a report, and stores the run.",
		&runCmd))
	must(parser.AddCommand("list",
		"list implementations",
		"The list command shows every registered implementation and its declared case sensitivity.",
		&listCmd))
	must(parser.AddCommand("verify",
		"verify implementations",
		"The verify command replays the operation script once against each implementation and checks its declared case sensitivity.",
		&verifyCmd))
	must(parser.AddCommand("history",
		"list stored runs",
		"The history command lists the most recent runs in the results store.",
		&historyCmd))
	must(parser.AddCommand("show",
		"print a stored run",
		"The show command prints the results of one stored run.",
		&showCmd))

	fork, err := parser.AddCommand("fork",
		"run one trial for a parent process",
		"The fork command reads a trial request on stdin and writes the trial result to stdout.",
		&forkCmd)
	must(fork, err)
	fork.Hidden = true
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SYSTEM LIFECYCLE MANAGEMENT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// setupSignalHandling turns the first interrupt into a stop request that the
// runner honors between trials. A second interrupt exits immediately.
func setupSignalHandling() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		debug.DropMessage("SIGNAL", "interrupt received, stopping after the current trial")
		control.Shutdown()

		<-sigChan
		debug.DropMessage("SIGNAL", "second interrupt, exiting")
		os.Exit(1)
	}()
}

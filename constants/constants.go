// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go - Harness defaults & sizing tunables
//
// Purpose:
//   - Defines the default launch options of a benchmark run.
//   - Fixes the operation script's keys and values.
//   - Sizes the result store and comparator instances.
//
// Notes:
//   - Every default can be overridden by the JSON config file or CLI flags.
//   - Batch sizes are script repetitions, not individual map operations.
//
// ⚠️ No runtime logic here - all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

import "time"

// ───────────────────────────── Run Defaults ──────────────────────────────

const (
	// DefaultMode runs every benchmark mode, each as its own trial set.
	DefaultMode = "all"

	// DefaultTimeUnit is the unit scores are reported in.
	DefaultTimeUnit = "us"

	// DefaultThreads is the number of worker threads per trial.
	DefaultThreads = 2

	// DefaultForks is the number of child processes per trial. 0 runs in-process.
	DefaultForks = 1

	// DefaultFailOnError aborts the whole run on the first trial or batch failure.
	DefaultFailOnError = true

	// DefaultForceGC forces a full collection between iterations.
	DefaultForceGC = true
)

// ─────────────────────────── Iteration Budgets ─────────────────────────────

const (
	// WarmupIterations is the number of discarded warmup iterations.
	WarmupIterations = 2

	// WarmupTime is the time budget of one warmup iteration.
	WarmupTime = 1 * time.Second

	// WarmupBatchSize is the number of script repetitions per warmup batch.
	WarmupBatchSize = 1

	// MeasurementIterations is the number of recorded iterations.
	MeasurementIterations = 2

	// MeasurementTime is the time budget of one measurement iteration.
	MeasurementTime = 1 * time.Second

	// MeasurementBatchSize is the number of script repetitions per timed batch.
	MeasurementBatchSize = 1_000_000
)

// ──────────────────────────── Operation Script ─────────────────────────────

const (
	// FirstKey and FirstValue are the first insertion of the script.
	FirstKey   = "foo"
	FirstValue = "Hello World"

	// SecondKey and SecondValue are the second insertion, in upper case.
	SecondKey   = "BAR"
	SecondValue = "Bye World"
)

// ───────────────────────────── Sizing & Limits ─────────────────────────────

const (
	// ComparatorCapacity pre-sizes comparator instances. The script never
	// holds more than two logical keys.
	ComparatorCapacity = 8

	// LRUSize bounds the LRU comparator. Must stay above the script's key count.
	LRUSize = 64

	// MaxSamplesPerThread caps recorded batch samples per thread and iteration
	// in sample mode. Older samples are overwritten reservoir-style past the cap.
	MaxSamplesPerThread = 1 << 16

	// MaxThreads bounds the worker thread count.
	MaxThreads = 1 << 10

	// HistoryLimit is the default number of runs listed by `history`.
	HistoryLimit = 20
)

// ───────────────────────────── File Locations ──────────────────────────────

const (
	// StoreDir holds the results database, relative to the home directory.
	StoreDir = "~/.cimapbench"

	// StoreFile is the results database file name.
	StoreFile = "results.db"

	// LogMaxSizeMB is the rotation threshold of the optional log file.
	LogMaxSizeMB = 16

	// LogMaxBackups is the number of rotated log files kept.
	LogMaxBackups = 3
)

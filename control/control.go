// control.go - Global stop flag for benchmark runs
// ============================================================================
// RUN CONTROL
// ============================================================================
//
// Control package provides the process-wide signal used to abort a run
// between trials. The signal handler in main sets it; the runner polls it
// at trial boundaries only, so a trial is never cut short mid-phase.
//
// Threading model:
//   • Signal goroutine calls Shutdown()
//   • Runner coordinator polls Stopped() between trials
//   • Tests call Reset() to restore the initial state

package control

import "sync/atomic"

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

// stop is 1 once shutdown has been requested, 0 while running.
var stop atomic.Uint32

// ============================================================================
// SYSTEM SHUTDOWN
// ============================================================================

// Shutdown requests termination. Safe to call more than once and from any
// goroutine.
//
//go:nosplit
//go:inline
func Shutdown() {
	stop.Store(1)
}

// Stopped reports whether Shutdown has been called.
//
//go:nosplit
//go:inline
func Stopped() bool {
	return stop.Load() == 1
}

// Reset clears the stop flag.
func Reset() {
	stop.Store(0)
}

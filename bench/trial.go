// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🎯 TRIAL COORDINATOR
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Case-Insensitive Map Benchmark Harness
// Component: Single Trial Execution (one implementation, one mode)
//
// Description:
//   Drives one trial through SETUP → WARMUP → MEASURE → DONE. Setup verifies the implementation
//   and starts the worker threads; warmup iterations are executed and thrown away; every
//   measurement iteration yields exactly one score.
//
// Architecture:
//   - Phase 1: Verification pass on a private instance, then per-thread State construction
//   - Phase 2: Warmup iterations, timing discarded
//   - Phase 3: Measurement iterations, scored per mode
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package bench

import (
	"errors"
	"fmt"
	"runtime"
	rtdebug "runtime/debug"
	"time"

	"cimapbench/kv"

	"github.com/hashicorp/go-multierror"
)

// TrialResult is the outcome of one trial. It is also the fork payload.
type TrialResult struct {
	Phase Phase `json:"phase"`
	// Scores holds one score per measurement iteration, in the run's unit.
	Scores []float64 `json:"scores"`
	// Samples holds per-op batch times in the run's unit (sample mode only).
	Samples          []float64 `json:"samples,omitempty"`
	WarmupIterations int       `json:"warmupIterations"`
	FailedBatches    int       `json:"failedBatches"`
	Sunk             uint64    `json:"sunk"`
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TRIAL EXECUTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// runTrial executes one trial in this process.
func runTrial(cfg Config, f kv.Factory, mode Mode) (TrialResult, error) {
	var (
		tr TrialResult
		pt phaseTracker
	)
	fail := func(err error) (TrialResult, error) {
		_ = pt.advance(PhaseFailed)
		tr.Phase = pt.phase
		return tr, err
	}

	// PHASE 1: verification and per-thread setup
	script := CaseVariantScript()
	if err := verify(f, &script); err != nil {
		return fail(err)
	}

	n := cfg.Threads
	setup := make(chan error, n)
	results := make(chan iterationResult, n)
	done := make(chan uint64, n)
	workers := make([]*worker, n)
	for i := range workers {
		workers[i] = &worker{
			id:          i,
			name:        f.Name,
			factory:     f,
			script:      CaseVariantScript(),
			pin:         cfg.PinThreads,
			failOnError: cfg.FailOnError,
			cmds:        make(chan command, 1),
			results:     results,
			setup:       setup,
			done:        done,
		}
		go workers[i].run()
	}
	shutdown := func() {
		for _, w := range workers {
			close(w.cmds)
		}
		for range workers {
			tr.Sunk += <-done
		}
	}

	var setupErr *multierror.Error
	for range workers {
		if err := <-setup; err != nil {
			setupErr = multierror.Append(setupErr, err)
		}
	}
	if setupErr != nil {
		shutdown()
		return fail(setupErr)
	}

	// PHASE 2: warmup
	_ = pt.advance(PhaseWarmup)
	single := mode == SingleShotTime
	for i := 0; i < cfg.Warmup.Iterations; i++ {
		rs, err := iteration(workers, results, command{spec: cfg.Warmup, single: single}, cfg.ForceGC)
		tr.FailedBatches += failedBatches(rs)
		if err != nil {
			shutdown()
			return fail(err)
		}
		tr.WarmupIterations++
	}

	// PHASE 3: measurement
	_ = pt.advance(PhaseMeasure)
	for i := 0; i < cfg.Measurement.Iterations; i++ {
		cmd := command{spec: cfg.Measurement, single: single, sample: mode == SampleTime}
		rs, err := iteration(workers, results, cmd, cfg.ForceGC)
		tr.FailedBatches += failedBatches(rs)
		if err != nil {
			shutdown()
			return fail(err)
		}
		score, samples, err := scoreIteration(mode, cfg.TimeUnit, rs)
		if err != nil {
			shutdown()
			return fail(fmt.Errorf("%s %s iteration %d: %w", f.Name, mode, i+1, err))
		}
		tr.Scores = append(tr.Scores, score)
		tr.Samples = append(tr.Samples, samples...)
	}

	shutdown()
	_ = pt.advance(PhaseDone)
	tr.Phase = pt.phase
	return tr, nil
}

// verify replays the script on a private instance against the factory's
// declared case sensitivity.
func verify(f kv.Factory, script *Script) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: verification panicked: %v", f.Name, r)
		}
	}()
	m, err := f.New()
	if err != nil {
		return fmt.Errorf("%s: setup: %w", f.Name, err)
	}
	if err := script.Verify(m, f.CaseInsensitive); err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	return nil
}

// Verify runs the setup verification pass for f alone.
func Verify(f kv.Factory) error {
	script := CaseVariantScript()
	return verify(f, &script)
}

// iteration runs one iteration on every worker. All workers are released
// together through a shared start channel.
func iteration(workers []*worker, results <-chan iterationResult, cmd command, forceGC bool) ([]iterationResult, error) {
	if forceGC {
		collect()
	}
	start := make(chan struct{})
	cmd.start = start
	for _, w := range workers {
		w.cmds <- cmd
	}
	close(start)

	rs := make([]iterationResult, 0, len(workers))
	var errs []error
	for range workers {
		r := <-results
		if r.err != nil {
			errs = append(errs, r.err)
		}
		rs = append(rs, r)
	}
	return rs, errors.Join(errs...)
}

// collect forces a thorough collection and returns freed memory to the OS.
func collect() {
	runtime.GC()
	runtime.GC()
	rtdebug.FreeOSMemory()
}

func failedBatches(rs []iterationResult) int {
	n := 0
	for _, r := range rs {
		n += r.failed
	}
	return n
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SCORING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// errNoBatches is returned when every batch of an iteration failed.
var errNoBatches = errors.New("no successful batches")

// scoreIteration reduces per-thread results to one score.
func scoreIteration(mode Mode, unit TimeUnit, rs []iterationResult) (float64, []float64, error) {
	var (
		sum     float64
		threads int
		samples []float64
	)
	for _, r := range rs {
		if r.batches == 0 {
			continue
		}
		threads++
		elapsed := max(r.elapsed, time.Nanosecond)
		switch mode {
		case Throughput:
			sum += float64(r.ops) / unit.Of(elapsed)
		case AverageTime:
			sum += unit.Of(elapsed) / float64(r.ops)
		case SingleShotTime:
			sum += unit.Of(elapsed) / float64(r.batches)
		case SampleTime:
			for _, ns := range r.samples {
				samples = append(samples, ns/float64(unit))
			}
		}
	}
	if threads == 0 {
		return 0, nil, errNoBatches
	}

	switch mode {
	case Throughput:
		return sum, nil, nil
	case SampleTime:
		if len(samples) == 0 {
			return 0, nil, errNoBatches
		}
		var total float64
		for _, s := range samples {
			total += s
		}
		return total / float64(len(samples)), samples, nil
	}
	return sum / float64(threads), nil, nil
}

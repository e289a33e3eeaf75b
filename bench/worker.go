// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🧵 WORKER THREADS
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Case-Insensitive Map Benchmark Harness
// Component: Thread-Locked Benchmark Workers
//
// Description:
//   One goroutine per benchmark thread, locked to its OS thread and optionally pinned to a core.
//   The worker builds its own State on that thread, then executes iteration commands sent by the
//   trial coordinator and answers each with one iterationResult.
//
// Design Principles:
//   - Nothing is shared between workers: each owns its map instance and Blackhole
//   - All workers of an iteration wait on one start channel so their iterations overlap
//   - Panics are recovered per batch; a failed batch never contributes time or operations
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package bench

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"cimapbench/constants"
	"cimapbench/kv"
)

// OpError reports a panic raised by an implementation inside a timed batch.
type OpError struct {
	Benchmark string
	Thread    int
	Batch     int
	Value     any
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: thread %d batch %d panicked: %v", e.Benchmark, e.Thread, e.Batch, e.Value)
}

// State is per-trial, per-thread scratch: one fresh map and one sink.
type State struct {
	Map       kv.Map
	Blackhole *Blackhole
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// COMMANDS & RESULTS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

type command struct {
	spec   IterationSpec
	single bool            // exactly one batch regardless of Time
	sample bool            // keep per-batch samples
	start  <-chan struct{} // closed once every worker holds its command
}

type iterationResult struct {
	thread  int
	ops     uint64        // script repetitions in successful batches
	elapsed time.Duration // summed time of successful batches
	batches int
	failed  int
	samples []float64 // per-op nanoseconds, one per sampled batch
	err     error     // first batch failure when failing fast
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WORKER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

type worker struct {
	id          int
	name        string
	factory     kv.Factory
	script      Script
	pin         bool
	failOnError bool

	cmds    chan command
	results chan<- iterationResult
	setup   chan<- error
	done    chan<- uint64 // values sunk, sent on exit

	state *State
	rng   *rand.Rand
	seen  int // batches offered to the sample reservoir this iteration
	batch int
}

// run is the worker goroutine body.
func (w *worker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if w.pin {
		if err := pinToCPU(w.id % runtime.NumCPU()); err != nil {
			log.Warningf("%s: thread %d: pin to cpu: %v", w.name, w.id, err)
		}
	}

	if err := w.buildState(); err != nil {
		w.setup <- err
		w.done <- 0
		return
	}
	w.setup <- nil

	for cmd := range w.cmds {
		w.results <- w.iterate(cmd)
	}
	w.done <- w.state.Blackhole.Flush()
}

// buildState runs the factory on the worker's own thread.
func (w *worker) buildState() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: thread %d: setup panicked: %v", w.name, w.id, r)
		}
	}()
	m, err := w.factory.New()
	if err != nil {
		return fmt.Errorf("%s: thread %d: setup: %w", w.name, w.id, err)
	}
	w.state = &State{Map: m, Blackhole: NewBlackhole()}
	w.rng = rand.New(rand.NewPCG(uint64(w.id)+1, 0x5eed))
	return nil
}

// iterate executes one iteration: whole batches until the time budget
// elapses, or exactly one batch.
func (w *worker) iterate(cmd command) iterationResult {
	res := iterationResult{thread: w.id}
	w.seen = 0
	<-cmd.start

	begin := time.Now()
	for {
		elapsed, err := w.timeBatch(cmd.spec.BatchSize)
		if err != nil {
			res.failed++
			if w.failOnError {
				res.err = err
				return res
			}
			log.Error(err.Error())
		} else {
			res.ops += uint64(cmd.spec.BatchSize)
			res.elapsed += elapsed
			res.batches++
			if cmd.sample {
				res.samples = w.offer(res.samples, float64(elapsed)/float64(cmd.spec.BatchSize))
			}
		}
		if cmd.single || cmd.spec.Time <= 0 || time.Since(begin) >= cmd.spec.Time {
			return res
		}
	}
}

// timeBatch runs n script repetitions as one timed unit.
func (w *worker) timeBatch(n int) (elapsed time.Duration, err error) {
	w.batch++
	defer func() {
		if r := recover(); r != nil {
			err = &OpError{Benchmark: w.name, Thread: w.id, Batch: w.batch, Value: r}
		}
	}()

	m, bh := w.state.Map, w.state.Blackhole
	s := &w.script
	start := time.Now()
	for i := 0; i < n; i++ {
		s.Run(m, bh)
	}
	return time.Since(start), nil
}

// offer adds a sample, keeping a uniform reservoir once the cap is reached.
func (w *worker) offer(samples []float64, v float64) []float64 {
	w.seen++
	if len(samples) < constants.MaxSamplesPerThread {
		return append(samples, v)
	}
	if j := w.rng.IntN(w.seen); j < len(samples) {
		samples[j] = v
	}
	return samples
}

// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🏁 BENCHMARK RUNNER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Case-Insensitive Map Benchmark Harness
// Component: Run Orchestration Across Implementations and Modes
//
// Description:
//   Runs one trial set per implementation and mode, in-process or in forked children, and folds
//   each set into a Result. Interrupts are honored only between trials.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package bench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"cimapbench/control"
	"cimapbench/debug"
	"cimapbench/kv"

	"github.com/hashicorp/go-multierror"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("bench")

// ErrAborted is wrapped when a run stops before covering every trial.
var ErrAborted = errors.New("run aborted")

// Result is the scored outcome of one implementation in one mode.
type Result struct {
	Benchmark string `json:"benchmark"`
	Mode      Mode   `json:"mode"`
	Threads   int    `json:"threads"`
	Forks     int    `json:"forks"`
	BatchSize int    `json:"batchSize"`
	Unit      string `json:"unit"`
	// Iterations holds every recorded measurement score, fork by fork.
	Iterations    []float64    `json:"iterations"`
	Stats         Stats        `json:"stats"`
	Percentiles   []Percentile `json:"percentiles,omitempty"`
	Samples       int          `json:"samples,omitempty"`
	FailedBatches int          `json:"failedBatches"`
	Sunk          uint64       `json:"sunk"`
	Failed        bool         `json:"failed"`
	Error         string       `json:"error,omitempty"`
}

// Runner executes a configured run.
type Runner struct {
	cfg       Config
	factories []kv.Factory
	forker    Forker
	progress  func(Result)
}

// Option configures a Runner.
type Option func(*Runner)

// WithForker replaces the child-process launcher used when Forks > 0.
func WithForker(f Forker) Option {
	return func(r *Runner) { r.forker = f }
}

// WithProgress registers a callback invoked after every finished trial set.
func WithProgress(fn func(Result)) Option {
	return func(r *Runner) { r.progress = fn }
}

// NewRunner validates cfg and prepares a run over factories.
func NewRunner(cfg Config, factories []kv.Factory, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(factories) == 0 {
		return nil, fmt.Errorf("%w: no implementations selected", ErrInvalidConfig)
	}
	r := &Runner{cfg: cfg, factories: factories}
	for _, opt := range opts {
		opt(r)
	}
	if cfg.Forks > 0 && r.forker == nil {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable for forks: %w", err)
		}
		r.forker = &ExecForker{Path: exe, Args: []string{"fork"}}
	}
	return r, nil
}

// Run executes every trial set. It returns the results gathered so far
// together with all trial failures. With FailOnError the first failure
// aborts the run.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	var (
		results  []Result
		failures *multierror.Error
	)
	for _, f := range r.factories {
		for mode := range r.cfg.Mode.Each() {
			if err := interrupted(ctx); err != nil {
				failures = multierror.Append(failures, err)
				return results, failures.ErrorOrNil()
			}

			res, err := r.runSet(ctx, f, mode)
			results = append(results, res)
			if r.progress != nil {
				r.progress(res)
			}
			if err != nil {
				failures = multierror.Append(failures, err)
				if r.cfg.FailOnError {
					failures = multierror.Append(failures, fmt.Errorf("%w: %s %s failed", ErrAborted, f.Name, mode))
					return results, failures.ErrorOrNil()
				}
			}
		}
	}
	return results, failures.ErrorOrNil()
}

// interrupted reports a stop request. Checked only between trials.
func interrupted(ctx context.Context) error {
	if control.Stopped() {
		return fmt.Errorf("%w: interrupted", ErrAborted)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return nil
}

// runSet runs the trials of one implementation and mode: one in-process
// trial, or one trial per fork.
func (r *Runner) runSet(ctx context.Context, f kv.Factory, mode Mode) (Result, error) {
	res := Result{
		Benchmark: f.Name,
		Mode:      mode,
		Threads:   r.cfg.Threads,
		Forks:     r.cfg.Forks,
		BatchSize: r.cfg.Measurement.BatchSize,
		Unit:      unitLabel(mode, r.cfg.TimeUnit),
	}

	var samples []float64
	trials := max(r.cfg.Forks, 1)
	for i := 1; i <= trials; i++ {
		debug.DropMessage("TRIAL", f.Name+" "+mode.String()+" "+strconv.Itoa(i)+"/"+strconv.Itoa(trials))

		var (
			tr  TrialResult
			err error
		)
		if r.cfg.Forks > 0 {
			if i > 1 {
				if err := interrupted(ctx); err != nil {
					return r.failed(res, err)
				}
			}
			tr, err = r.forker.Fork(ctx, ForkRequest{Config: r.cfg, Implementation: f.Name, Mode: mode, Fork: i})
		} else {
			tr, err = runTrial(r.cfg, f, mode)
		}

		res.FailedBatches += tr.FailedBatches
		res.Sunk += tr.Sunk
		if err != nil {
			return r.failed(res, err)
		}
		res.Iterations = append(res.Iterations, tr.Scores...)
		samples = append(samples, tr.Samples...)
	}

	res.Stats = Summarize(res.Iterations)
	if mode == SampleTime {
		res.Samples = len(samples)
		res.Percentiles = Percentiles(samples, ReportedPercentiles)
	}
	return res, nil
}

func (r *Runner) failed(res Result, err error) (Result, error) {
	debug.DropError("TRIAL_FAILED", err)
	res.Failed = true
	res.Error = err.Error()
	res.Stats = Summarize(res.Iterations)
	return res, err
}

// unitLabel renders the score unit of mode.
func unitLabel(mode Mode, u TimeUnit) string {
	if mode == Throughput {
		return "ops/" + u.String()
	}
	return u.String() + "/op"
}

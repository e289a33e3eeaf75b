// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚙️ RUN CONFIGURATION
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Case-Insensitive Map Benchmark Harness
// Component: Benchmark Modes, Time Units & Run Configuration
//
// Description:
//   Explicit configuration value handed to NewRunner. Defaults come from the constants package;
//   callers overlay a config file and CLI flags. Validate reports every problem at once.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package bench

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"cimapbench/constants"

	"github.com/hashicorp/go-multierror"
)

// ErrInvalidConfig is wrapped by every configuration problem.
var ErrInvalidConfig = errors.New("invalid config")

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// BENCHMARK MODES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Mode is a set of benchmark modes. Each mode in the set runs as its own
// trial set.
type Mode uint8

const (
	// Throughput scores operations per time unit, summed over threads.
	Throughput Mode = 1 << iota
	// AverageTime scores time per operation, averaged over threads.
	AverageTime
	// SampleTime scores time per operation from individual batch samples
	// and adds percentiles.
	SampleTime
	// SingleShotTime times exactly one batch per iteration.
	SingleShotTime

	// All selects every mode.
	All = Throughput | AverageTime | SampleTime | SingleShotTime
)

var modeNames = [...]struct {
	mode Mode
	name string
}{
	{Throughput, "thrpt"},
	{AverageTime, "avgt"},
	{SampleTime, "sample"},
	{SingleShotTime, "ss"},
}

// Each yields the single modes in the set, in report order.
func (m Mode) Each() iter.Seq[Mode] {
	return func(yield func(Mode) bool) {
		for _, mn := range modeNames {
			if m&mn.mode != 0 && !yield(mn.mode) {
				return
			}
		}
	}
}

// String renders the set as the short names joined by commas, or "all".
func (m Mode) String() string {
	if m == All {
		return "all"
	}
	var parts []string
	for _, mn := range modeNames {
		if m&mn.mode != 0 {
			parts = append(parts, mn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// ParseMode accepts a comma-separated list of thrpt, avgt, sample, ss and all.
func ParseMode(s string) (Mode, error) {
	var m Mode
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "all" {
			m |= All
			continue
		}
		found := false
		for _, mn := range modeNames {
			if mn.name == part {
				m |= mn.mode
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, part)
		}
	}
	return m, nil
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TIME UNITS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// TimeUnit is the unit scores are expressed in.
type TimeUnit time.Duration

const (
	Nanoseconds  = TimeUnit(time.Nanosecond)
	Microseconds = TimeUnit(time.Microsecond)
	Milliseconds = TimeUnit(time.Millisecond)
	Seconds      = TimeUnit(time.Second)
	Minutes      = TimeUnit(time.Minute)
)

var unitNames = [...]struct {
	unit  TimeUnit
	names []string
}{
	{Nanoseconds, []string{"ns"}},
	{Microseconds, []string{"us", "µs"}},
	{Milliseconds, []string{"ms"}},
	{Seconds, []string{"s"}},
	{Minutes, []string{"min", "m"}},
}

func (u TimeUnit) String() string {
	for _, un := range unitNames {
		if un.unit == u {
			return un.names[0]
		}
	}
	return time.Duration(u).String()
}

// ParseTimeUnit accepts ns, us (or µs), ms, s and min (or m).
func ParseTimeUnit(s string) (TimeUnit, error) {
	s = strings.TrimSpace(s)
	for _, un := range unitNames {
		for _, n := range un.names {
			if n == s {
				return un.unit, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unknown time unit %q", ErrInvalidConfig, s)
}

// Of converts d into this unit.
func (u TimeUnit) Of(d time.Duration) float64 {
	return float64(d) / float64(u)
}

func (u TimeUnit) valid() bool {
	for _, un := range unitNames {
		if un.unit == u {
			return true
		}
	}
	return false
}

func (u TimeUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *TimeUnit) UnmarshalText(b []byte) error {
	v, err := ParseTimeUnit(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// IterationSpec sizes one phase.
type IterationSpec struct {
	Iterations int `json:"iterations"`
	// Time is the budget of one iteration. Whole batches run until it
	// elapses. Zero runs exactly one batch per iteration.
	Time time.Duration `json:"time"`
	// BatchSize is the number of script repetitions timed as one unit.
	BatchSize int `json:"batchSize"`
}

// Config is the full description of a run.
type Config struct {
	Mode        Mode          `json:"mode"`
	TimeUnit    TimeUnit      `json:"timeUnit"`
	Warmup      IterationSpec `json:"warmup"`
	Measurement IterationSpec `json:"measurement"`
	Threads     int           `json:"threads"`
	// Forks is the number of child processes per trial. 0 runs in-process.
	Forks       int  `json:"forks"`
	FailOnError bool `json:"failOnError"`
	ForceGC     bool `json:"forceGC"`
	PinThreads  bool `json:"pinThreads"`
	// Implementations names the comparators to run. Empty runs all.
	Implementations []string `json:"implementations,omitempty"`
}

// DefaultConfig returns the default launch options.
func DefaultConfig() Config {
	mode, _ := ParseMode(constants.DefaultMode)
	unit, _ := ParseTimeUnit(constants.DefaultTimeUnit)
	return Config{
		Mode:     mode,
		TimeUnit: unit,
		Warmup: IterationSpec{
			Iterations: constants.WarmupIterations,
			Time:       constants.WarmupTime,
			BatchSize:  constants.WarmupBatchSize,
		},
		Measurement: IterationSpec{
			Iterations: constants.MeasurementIterations,
			Time:       constants.MeasurementTime,
			BatchSize:  constants.MeasurementBatchSize,
		},
		Threads:     constants.DefaultThreads,
		Forks:       constants.DefaultForks,
		FailOnError: constants.DefaultFailOnError,
		ForceGC:     constants.DefaultForceGC,
	}
}

// Validate reports every problem with c. Each wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var result *multierror.Error
	bad := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Mode == 0 || c.Mode&^All != 0 {
		bad("mode %d selects no known mode", uint8(c.Mode))
	}
	if !c.TimeUnit.valid() {
		bad("time unit %s", time.Duration(c.TimeUnit))
	}
	if c.Warmup.Iterations < 0 {
		bad("warmup iterations must be >= 0, got %d", c.Warmup.Iterations)
	}
	if c.Measurement.Iterations < 1 {
		bad("measurement iterations must be >= 1, got %d", c.Measurement.Iterations)
	}
	for _, p := range []struct {
		name string
		spec IterationSpec
	}{{"warmup", c.Warmup}, {"measurement", c.Measurement}} {
		if p.spec.Time < 0 {
			bad("%s time must be >= 0, got %s", p.name, p.spec.Time)
		}
		if p.spec.BatchSize < 1 {
			bad("%s batch size must be >= 1, got %d", p.name, p.spec.BatchSize)
		}
	}
	if c.Threads < 1 || c.Threads > constants.MaxThreads {
		bad("threads must be in [1, %d], got %d", constants.MaxThreads, c.Threads)
	}
	if c.Forks < 0 {
		bad("forks must be >= 0, got %d", c.Forks)
	}
	return result.ErrorOrNil()
}

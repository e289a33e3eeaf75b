package bench

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
)

// ============================================================================
// MODES
// ============================================================================

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"thrpt", Throughput},
		{"avgt", AverageTime},
		{"sample", SampleTime},
		{"ss", SingleShotTime},
		{"all", All},
		{"thrpt,avgt", Throughput | AverageTime},
		{" SS , Thrpt ", Throughput | SingleShotTime},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseMode("fastest"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParseMode(fastest) error = %v, want ErrInvalidConfig", err)
	}
}

func TestModeStringAndEach(t *testing.T) {
	if s := All.String(); s != "all" {
		t.Errorf("All.String() = %q", s)
	}
	if s := (SampleTime | Throughput).String(); s != "thrpt,sample" {
		t.Errorf("String() = %q, want thrpt,sample", s)
	}

	got := slices.Collect(All.Each())
	want := []Mode{Throughput, AverageTime, SampleTime, SingleShotTime}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("All.Each() mismatch (-want +got):\n%s", diff)
	}
}

func TestModeText(t *testing.T) {
	b, err := (Throughput | AverageTime).MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var m Mode
	if err := m.UnmarshalText(b); err != nil {
		t.Fatal(err)
	}
	if m != Throughput|AverageTime {
		t.Errorf("text round trip gave %s", m)
	}
}

// ============================================================================
// TIME UNITS
// ============================================================================

func TestParseTimeUnit(t *testing.T) {
	for in, want := range map[string]TimeUnit{
		"ns": Nanoseconds, "us": Microseconds, "µs": Microseconds,
		"ms": Milliseconds, "s": Seconds, "min": Minutes, "m": Minutes,
	} {
		got, err := ParseTimeUnit(in)
		if err != nil || got != want {
			t.Errorf("ParseTimeUnit(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseTimeUnit("fortnight"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("want ErrInvalidConfig, got %v", err)
	}
}

func TestTimeUnitOf(t *testing.T) {
	if got := Microseconds.Of(1500 * time.Nanosecond); got != 1.5 {
		t.Errorf("Of = %v, want 1.5", got)
	}
	if Microseconds.String() != "us" {
		t.Errorf("String() = %q", Microseconds.String())
	}
}

// ============================================================================
// CONFIG
// ============================================================================

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	want := Config{
		Mode:        All,
		TimeUnit:    Microseconds,
		Warmup:      IterationSpec{Iterations: 2, Time: time.Second, BatchSize: 1},
		Measurement: IterationSpec{Iterations: 2, Time: time.Second, BatchSize: 1_000_000},
		Threads:     2,
		Forks:       1,
		FailOnError: true,
		ForceGC:     true,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("DefaultConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := DefaultConfig()
	c.Mode = 0
	c.Measurement.Iterations = 0
	c.Warmup.BatchSize = 0
	c.Threads = 0
	c.Forks = -1

	err := c.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error %v does not wrap ErrInvalidConfig", err)
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("error %T is not a multierror", err)
	}
	if len(merr.Errors) != 5 {
		t.Errorf("got %d problems, want 5:\n%v", len(merr.Errors), err)
	}
}

func TestValidateAcceptsZeroWarmup(t *testing.T) {
	c := DefaultConfig()
	c.Warmup.Iterations = 0
	c.Measurement.Time = 0
	if err := c.Validate(); err != nil {
		t.Errorf("zero warmup and untimed measurement must validate: %v", err)
	}
}

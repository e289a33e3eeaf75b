package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cimapbench/bench"
	"cimapbench/constants"
	"cimapbench/debug"
	"cimapbench/kv"
	"cimapbench/report"
	"cimapbench/store"

	"github.com/mitchellh/go-homedir"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("main")

// RunCommand measures implementations. Unset flags keep the value from the
// config file, or the default.
type RunCommand struct {
	Mode        string         `short:"m" long:"mode" description:"benchmark modes, comma separated [thrpt, avgt, sample, ss, all]"`
	TimeUnit    string         `long:"tu" description:"score time unit [ns, us, ms, s, min]"`
	WarmupIters *int           `long:"wi" description:"warmup iterations"`
	WarmupTime  *time.Duration `short:"w" long:"warmup-time" description:"time budget of one warmup iteration"`
	Iterations  *int           `short:"i" long:"iterations" description:"measurement iterations"`
	Time        *time.Duration `short:"r" long:"time" description:"time budget of one measurement iteration"`
	BatchSize   *int           `long:"bs" description:"script repetitions per measurement batch"`
	WarmupBatch *int           `long:"wbs" description:"script repetitions per warmup batch"`
	Threads     *int           `short:"t" long:"threads" description:"worker threads per trial"`
	Forks       *int           `short:"f" long:"forks" description:"child processes per trial, 0 runs in-process"`
	FailOnError bool           `long:"foe" description:"abort the run on the first failure"`
	NoFailOnErr bool           `long:"no-foe" description:"keep running after failures"`
	ForceGC     bool           `long:"gc" description:"force a full collection between iterations"`
	NoForceGC   bool           `long:"no-gc" description:"never force collections"`
	Pin         bool           `long:"pin" description:"pin worker threads to CPUs"`
	Impl        []string       `long:"impl" description:"implementations to run, comma separated or repeated (default: all)"`
	Config      string         `long:"config" description:"JSON config file applied before flags"`
	JSON        string         `long:"json" description:"also write results as JSON to this file, - for stdout"`
	DB          string         `long:"db" description:"results database" default:"~/.cimapbench/results.db"`
	NoStore     bool           `long:"no-store" description:"do not store the run"`
}

// Execute runs the benchmark.
func (x *RunCommand) Execute(args []string) error {
	cfg, err := x.config()
	if err != nil {
		return err
	}
	factories, err := kv.Lookup(cfg.Implementations...)
	if err != nil {
		return err
	}

	opts := []bench.Option{bench.WithProgress(func(r bench.Result) {
		if r.Failed {
			log.Errorf("%s %s failed: %s", r.Benchmark, r.Mode, r.Error)
			return
		}
		log.Noticef("%s %s: %.3f %s (%d iterations)", r.Benchmark, r.Mode, r.Stats.Mean, r.Unit, r.Stats.N)
	})}
	if cfg.Forks > 0 {
		exe, err := os.Executable()
		if err != nil {
			return err
		}
		opts = append(opts, bench.WithForker(&bench.ExecForker{
			Path: exe,
			Args: []string{"--log-level", options.LogLevel, "fork"},
		}))
	}
	runner, err := bench.NewRunner(cfg, factories, opts...)
	if err != nil {
		return err
	}

	debug.DropMessage("RUN", strconv.Itoa(len(factories))+" implementations, mode "+cfg.Mode.String()+
		", "+strconv.Itoa(cfg.Threads)+" threads, "+strconv.Itoa(cfg.Forks)+" forks")
	startedAt := time.Now()
	results, runErr := runner.Run(context.Background())

	if err := report.WriteText(os.Stdout, results); err != nil {
		return err
	}
	if x.JSON != "" {
		if err := writeJSON(x.JSON, results); err != nil {
			return err
		}
	}
	if !x.NoStore && len(results) > 0 {
		id, err := saveRun(x.DB, cfg, startedAt, results)
		if err != nil {
			debug.DropError("STORE", err)
		} else {
			debug.DropMessage("STORE", "saved run "+strconv.FormatInt(id, 10))
		}
	}
	debug.DropMessage("RUN", "sunk "+strconv.FormatUint(bench.Sunk(), 10)+" values in-process")
	return runErr
}

// config layers defaults, the config file and explicit flags.
func (x *RunCommand) config() (bench.Config, error) {
	cfg := bench.DefaultConfig()
	if x.Config != "" {
		if err := loadConfigFile(&cfg, x.Config); err != nil {
			return cfg, err
		}
	}
	if x.Mode != "" {
		m, err := bench.ParseMode(x.Mode)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = m
	}
	if x.TimeUnit != "" {
		u, err := bench.ParseTimeUnit(x.TimeUnit)
		if err != nil {
			return cfg, err
		}
		cfg.TimeUnit = u
	}
	setIf(&cfg.Warmup.Iterations, x.WarmupIters)
	setIf(&cfg.Warmup.Time, x.WarmupTime)
	setIf(&cfg.Warmup.BatchSize, x.WarmupBatch)
	setIf(&cfg.Measurement.Iterations, x.Iterations)
	setIf(&cfg.Measurement.Time, x.Time)
	setIf(&cfg.Measurement.BatchSize, x.BatchSize)
	setIf(&cfg.Threads, x.Threads)
	setIf(&cfg.Forks, x.Forks)

	switch {
	case x.FailOnError && x.NoFailOnErr:
		return cfg, fmt.Errorf("%w: --foe and --no-foe are exclusive", bench.ErrInvalidConfig)
	case x.FailOnError:
		cfg.FailOnError = true
	case x.NoFailOnErr:
		cfg.FailOnError = false
	}
	switch {
	case x.ForceGC && x.NoForceGC:
		return cfg, fmt.Errorf("%w: --gc and --no-gc are exclusive", bench.ErrInvalidConfig)
	case x.ForceGC:
		cfg.ForceGC = true
	case x.NoForceGC:
		cfg.ForceGC = false
	}
	if x.Pin {
		cfg.PinThreads = true
	}
	if len(x.Impl) > 0 {
		cfg.Implementations = splitNames(x.Impl)
	}
	return cfg, cfg.Validate()
}

func writeJSON(path string, results []bench.Result) error {
	if path == "-" {
		return report.WriteJSON(os.Stdout, results)
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	f, err := os.Create(expanded)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// openStore opens the results database at path, with ~ expanded.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		path = filepath.Join(constants.StoreDir, constants.StoreFile)
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	return store.Open(expanded)
}

func saveRun(path string, cfg bench.Config, startedAt time.Time, results []bench.Result) (int64, error) {
	st, err := openStore(path)
	if err != nil {
		return 0, err
	}
	defer st.Close()
	return st.SaveRun(cfg, startedAt, results)
}

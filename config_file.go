package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"cimapbench/bench"

	"github.com/mitchellh/go-homedir"
	"github.com/sugawarayuuta/sonnet"
)

// fileSpec is an IterationSpec as written in a config file. Absent fields
// keep their previous value.
type fileSpec struct {
	Iterations *int   `json:"iterations"`
	Time       string `json:"time"`
	BatchSize  *int   `json:"batchSize"`
}

// fileConfig is the JSON config file layout. Durations use time.ParseDuration
// syntax ("500ms", "2s").
type fileConfig struct {
	Mode            string    `json:"mode"`
	TimeUnit        string    `json:"timeUnit"`
	Warmup          *fileSpec `json:"warmup"`
	Measurement     *fileSpec `json:"measurement"`
	Threads         *int      `json:"threads"`
	Forks           *int      `json:"forks"`
	FailOnError     *bool     `json:"failOnError"`
	ForceGC         *bool     `json:"forceGC"`
	PinThreads      *bool     `json:"pinThreads"`
	Implementations []string  `json:"implementations"`
}

// loadConfigFile overlays the config file at path onto cfg.
func loadConfigFile(cfg *bench.Config, path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := sonnet.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return fc.apply(cfg)
}

func (fc *fileConfig) apply(cfg *bench.Config) error {
	if fc.Mode != "" {
		m, err := bench.ParseMode(fc.Mode)
		if err != nil {
			return err
		}
		cfg.Mode = m
	}
	if fc.TimeUnit != "" {
		u, err := bench.ParseTimeUnit(fc.TimeUnit)
		if err != nil {
			return err
		}
		cfg.TimeUnit = u
	}
	if err := fc.Warmup.apply(&cfg.Warmup); err != nil {
		return fmt.Errorf("warmup: %w", err)
	}
	if err := fc.Measurement.apply(&cfg.Measurement); err != nil {
		return fmt.Errorf("measurement: %w", err)
	}
	setIf(&cfg.Threads, fc.Threads)
	setIf(&cfg.Forks, fc.Forks)
	setIf(&cfg.FailOnError, fc.FailOnError)
	setIf(&cfg.ForceGC, fc.ForceGC)
	setIf(&cfg.PinThreads, fc.PinThreads)
	if len(fc.Implementations) > 0 {
		cfg.Implementations = splitNames(fc.Implementations)
	}
	return nil
}

func (fs *fileSpec) apply(spec *bench.IterationSpec) error {
	if fs == nil {
		return nil
	}
	setIf(&spec.Iterations, fs.Iterations)
	setIf(&spec.BatchSize, fs.BatchSize)
	if fs.Time != "" {
		d, err := time.ParseDuration(fs.Time)
		if err != nil {
			return err
		}
		spec.Time = d
	}
	return nil
}

// setIf stores *src into dst when src is set.
func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// splitNames flattens comma-separated name lists.
func splitNames(in []string) []string {
	var out []string
	for _, s := range in {
		for _, name := range strings.Split(s, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

package bench

import "testing"

func TestPhaseTransitions(t *testing.T) {
	legal := map[[2]Phase]bool{
		{PhaseSetup, PhaseWarmup}:   true,
		{PhaseWarmup, PhaseMeasure}: true,
		{PhaseMeasure, PhaseDone}:   true,
		{PhaseSetup, PhaseFailed}:   true,
		{PhaseWarmup, PhaseFailed}:  true,
		{PhaseMeasure, PhaseFailed}: true,
	}
	all := []Phase{PhaseSetup, PhaseWarmup, PhaseMeasure, PhaseDone, PhaseFailed}
	for _, from := range all {
		for _, to := range all {
			if got := from.CanAdvance(to); got != legal[[2]Phase{from, to}] {
				t.Errorf("%s -> %s: CanAdvance = %v", from, to, got)
			}
		}
	}
}

func TestPhaseTrackerRejectsSkips(t *testing.T) {
	var pt phaseTracker
	if err := pt.advance(PhaseMeasure); err == nil {
		t.Error("SETUP -> MEASURE must be rejected")
	}
	for _, next := range []Phase{PhaseWarmup, PhaseMeasure, PhaseDone} {
		if err := pt.advance(next); err != nil {
			t.Fatal(err)
		}
	}
	if err := pt.advance(PhaseFailed); err == nil {
		t.Error("DONE is terminal")
	}
	if pt.phase.String() != "DONE" {
		t.Errorf("phase = %s", pt.phase)
	}
}

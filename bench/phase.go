package bench

import "fmt"

// Phase is the lifecycle position of one trial.
type Phase uint8

const (
	PhaseSetup Phase = iota
	PhaseWarmup
	PhaseMeasure
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "SETUP"
	case PhaseWarmup:
		return "WARMUP"
	case PhaseMeasure:
		return "MEASURE"
	case PhaseDone:
		return "DONE"
	case PhaseFailed:
		return "FAILED"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Terminal reports whether no transition leaves p.
func (p Phase) Terminal() bool { return p == PhaseDone || p == PhaseFailed }

// CanAdvance reports whether p → next is legal. Phases only move forward
// one step at a time, and FAILED is reachable from any non-terminal phase.
func (p Phase) CanAdvance(next Phase) bool {
	if p.Terminal() {
		return false
	}
	return next == PhaseFailed || next == p+1
}

// phaseTracker records a trial's phase and rejects illegal transitions.
type phaseTracker struct {
	phase Phase
}

func (t *phaseTracker) advance(next Phase) error {
	if !t.phase.CanAdvance(next) {
		return fmt.Errorf("illegal phase transition %s -> %s", t.phase, next)
	}
	t.phase = next
	return nil
}

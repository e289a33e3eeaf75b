package bench

import (
	"errors"
	"fmt"

	"cimapbench/constants"
	"cimapbench/kv"
)

// ErrVerification is wrapped when an implementation's observed results
// contradict its declared case sensitivity.
var ErrVerification = errors.New("verification failed")

// OpKind is a script operation.
type OpKind uint8

const (
	OpPut OpKind = iota
	OpGet
)

func (k OpKind) String() string {
	if k == OpPut {
		return "put"
	}
	return "get"
}

// Op is one step of a script.
type Op struct {
	Kind OpKind
	Key  string
	// Value is boxed once when the script is built so timed puts do not
	// allocate.
	Value any
	// CaseVariant marks a get whose key differs only in case from the
	// stored casing. It hits only on case-insensitive implementations.
	CaseVariant bool
}

// Script is a fixed sequence of operations replayed identically against
// every implementation.
type Script struct {
	Ops []Op
}

// CaseVariantScript inserts two keys and looks each up under its own
// casing and under a different one.
func CaseVariantScript() Script {
	return Script{Ops: []Op{
		{Kind: OpPut, Key: constants.FirstKey, Value: constants.FirstValue},
		{Kind: OpGet, Key: "foo", Value: constants.FirstValue},
		{Kind: OpGet, Key: "FOO", Value: constants.FirstValue, CaseVariant: true},
		{Kind: OpPut, Key: constants.SecondKey, Value: constants.SecondValue},
		{Kind: OpGet, Key: "bar", Value: constants.SecondValue, CaseVariant: true},
		{Kind: OpGet, Key: "BAR", Value: constants.SecondValue},
	}}
}

// Run replays the script once against m, sinking every result into bh.
func (s *Script) Run(m kv.Map, bh *Blackhole) {
	for i := range s.Ops {
		op := &s.Ops[i]
		if op.Kind == OpPut {
			bh.Consume(m.Put(op.Key, op.Value))
		} else {
			bh.Consume(m.Get(op.Key))
		}
	}
}

// Verify replays the script once against a fresh m and checks every get:
// case variants must hit iff caseInsensitive, every other get must hit.
func (s *Script) Verify(m kv.Map, caseInsensitive bool) error {
	for i, op := range s.Ops {
		if op.Kind == OpPut {
			m.Put(op.Key, op.Value)
			continue
		}
		v, ok := m.Get(op.Key)
		wantHit := !op.CaseVariant || caseInsensitive
		switch {
		case wantHit && !ok:
			return fmt.Errorf("%w: op %d get %q: absent, want %v", ErrVerification, i, op.Key, op.Value)
		case wantHit && v != op.Value:
			return fmt.Errorf("%w: op %d get %q: got %v, want %v", ErrVerification, i, op.Key, v, op.Value)
		case !wantHit && ok:
			return fmt.Errorf("%w: op %d get %q: got %v on a case-sensitive map", ErrVerification, i, op.Key, v)
		}
	}
	return nil
}

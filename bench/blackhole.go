package bench

import "sync/atomic"

// sunk accumulates every consumed value across all finished trials.
var sunk atomic.Uint64

// Sunk returns the number of values consumed by flushed blackholes.
func Sunk() uint64 { return sunk.Load() }

// sinkCell lives on the heap; stores through it cannot be proven dead.
type sinkCell struct {
	v  any
	ok bool
}

// Blackhole consumes values so the compiler cannot discard the operations
// that produced them. One Blackhole belongs to one worker thread.
type Blackhole struct {
	cell  *sinkCell
	count uint64
}

// NewBlackhole returns an empty sink.
func NewBlackhole() *Blackhole {
	return &Blackhole{cell: new(sinkCell)}
}

// Consume sinks one observed result.
//
//go:nosplit
//go:inline
func (b *Blackhole) Consume(v any, ok bool) {
	b.cell.v = v
	b.cell.ok = ok
	b.count++
}

// Count returns the values consumed since the last Flush.
func (b *Blackhole) Count() uint64 { return b.count }

// Flush folds the local count into the process-wide counter and returns it.
func (b *Blackhole) Flush() uint64 {
	n := b.count
	sunk.Add(n)
	b.count = 0
	b.cell.v = nil
	return n
}

// affinity_stub.go - CPU affinity no-op for platforms without sched_setaffinity(2)

//go:build !linux

package bench

// pinToCPU is a no-op; threads stay locked but unpinned.
func pinToCPU(cpu int) error { return nil }

// affinity_linux.go - Linux CPU affinity via sched_setaffinity(2)

//go:build linux

package bench

import "golang.org/x/sys/unix"

// pinToCPU pins the calling OS thread to cpu. The caller must hold
// runtime.LockOSThread.
func pinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

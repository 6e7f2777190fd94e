// Package assert collects small debug-only invariant checks that are cheap
// enough to leave compiled in but that should never affect emulated
// behaviour. GetGoRoutineID in particular suits a single-owner check on the
// bus: the concurrency model in the core's design is single-threaded
// cooperative (one logical thread walks both CPUs and drains the
// scheduler), and a second goroutine touching the bus is a programmer
// error, not a guest behaviour. No package in this tree calls it, so the
// bus performs no such check.
package assert

import (
	"bytes"
	"runtime"
	"strconv"
)

// GetGoRoutineID returns an identifier for the calling goroutine: different
// between goroutines, consistent for a given goroutine for its lifetime.
// Parses the runtime's own debug stack dump, so it should only be used for
// debugging or testing purposes, never as part of normal control flow.
func GetGoRoutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

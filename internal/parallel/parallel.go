// Package parallel provides the deterministic range-partitioned
// worker pool used by every component that fans an output index space
// out across goroutines (spec §5, component J).
//
// Grounded on internal/pool.go's WorkerPool: a fixed number of workers,
// no task stealing, a single join point, and the first captured error
// rethrown to the caller after all workers finish. Unlike pool.go this
// package statically partitions a contiguous range instead of queuing
// arbitrary tasks, because every caller here already knows the output
// size up front and needs the bit-exact, worker-count-independent
// output spec §5 and §8 require: each output element must be computed
// by exactly one worker with the same arithmetic sequence regardless
// of how many workers ran.
package parallel

import "sync"

// Range partitions [0, n) into workers contiguous, non-overlapping
// slices and runs body(lo, hi) for each slice in its own goroutine.
// workers <= 1 (after config.ResolveWorkers) runs body synchronously
// on the whole range, with no goroutine overhead.
//
// Range blocks until every worker has returned, then returns the
// first non-nil error encountered, if any. Go has no global
// interpreter lock to release before the numerical loop; the
// goroutine-per-slice structure is this module's analogue of spec
// §5's "release the lock before entering numerical loops".
func Range(n, workers int, body func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 1 {
		return body(0, n)
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= n {
			break
		}
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(idx, lo, hi int) {
			defer wg.Done()
			errs[idx] = body(lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

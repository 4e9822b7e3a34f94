package copac

import "sync"

// forEachRowRange splits the rows [0, n) into contiguous ranges and runs fn
// on each range from its own goroutine. Ranges never overlap, so fn may
// write to disjoint row-indexed regions without synchronization. With
// workers <= 1 everything runs on the calling goroutine; the results are
// identical either way.
func forEachRowRange(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= 1 {
		fn(0, n)
		return
	}

	rowsPerWorker := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > n {
			end = n
		}
		if start >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}

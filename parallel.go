package hdrpeak

import (
	"runtime"
	"sync"
)

type span struct {
	start, end int
}

// splitRows partitions [0, total) into at most workers contiguous spans.
func splitRows(total, workers int) []span {
	if total <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}
	step := (total + workers - 1) / workers
	spans := make([]span, 0, workers)
	for start := 0; start < total; start += step {
		end := start + step
		if end > total {
			end = total
		}
		spans = append(spans, span{start: start, end: end})
	}
	return spans
}

// parallelFor runs fn once per span, concurrently when there is more than one.
func parallelFor(spans []span, fn func(part int, s span)) {
	if len(spans) == 1 {
		fn(0, spans[0])
		return
	}
	var wg sync.WaitGroup
	for i, s := range spans {
		wg.Add(1)
		go func(i int, s span) {
			defer wg.Done()
			fn(i, s)
		}(i, s)
	}
	wg.Wait()
}

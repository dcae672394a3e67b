package normalize

import "sync"

// parallelMap applies fn to every element of in using a fixed worker pool.
// Results are written back by index, so output order always matches input
// order regardless of scheduling. fn must be a pure function of its input.
func parallelMap[T, R any](workers int, in []T, fn func(T) R) []R {
	out := make([]R, len(in))

	if workers <= 1 || len(in) < workers*2 {
		for i, v := range in {
			out[i] = fn(v)
		}

		return out
	}

	idx := make(chan int, workers)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range idx {
				out[i] = fn(in[i])
			}
		}()
	}

	for i := range in {
		idx <- i
	}

	close(idx)
	wg.Wait()

	return out
}

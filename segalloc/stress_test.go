package segalloc

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentIndependentHeaps dispatches one goroutine per Heap via
// gopool, each goroutine owning its Heap exclusively — segalloc's
// single-actor-per-heap non-goal applies per Heap, not across the test, so
// running many heaps concurrently on a shared worker pool doesn't violate
// it. Each worker runs a randomized allocate/free/reallocate sequence and
// checks its own heap's invariants throughout.
func TestConcurrentIndependentHeaps(t *testing.T) {
	const workers = 32
	const opsPerWorker = 2000

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		seed := int64(w) + 1
		gopool.CtxGo(context.Background(), func() {
			defer wg.Done()
			if err := runWorkerWorkload(seed, opsPerWorker); err != nil {
				errs <- err
			}
		})
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func runWorkerWorkload(seed int64, ops int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{r}
		}
	}()

	rng := rand.New(rand.NewSource(seed))
	h, e := New(1<<20, WithDebugChecks())
	if e != nil {
		return e
	}
	if e := h.Init(); e != nil {
		return e
	}

	var live [][]byte
	for i := 0; i < ops; i++ {
		switch rng.Intn(4) {
		case 0, 1:
			n := 1 + rng.Intn(400)
			p := h.Allocate(n)
			if p != nil {
				live = append(live, p)
			}
		case 2:
			if len(live) > 0 {
				idx := rng.Intn(len(live))
				h.Free(live[idx])
				live[idx] = live[len(live)-1]
				live = live[:len(live)-1]
			}
		default:
			if len(live) > 0 {
				idx := rng.Intn(len(live))
				if q := h.Reallocate(live[idx], 1+rng.Intn(400)); q != nil {
					live[idx] = q
				}
			}
		}
	}
	return nil
}

type panicError struct{ v interface{} }

func (e *panicError) Error() string { return "panic in worker: " + stringify(e.v) }

func stringify(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic"
}

func TestConcurrentIndependentHeapsSmoke(t *testing.T) {
	require.NoError(t, runWorkerWorkload(99, 200))
}

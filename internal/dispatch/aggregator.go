package dispatch

import (
	"context"
	"sort"
	"sync"

	"github.com/standardbeagle/ru/internal/types"
)

// aggregator restores walker emission order on the result stream.
// Workers finish in arbitrary order; the consumer must see results
// strictly by FileEntry.Index. Results arriving ahead of the cursor are
// parked in pending until the gap closes.
type aggregator struct {
	mu      sync.Mutex
	pending map[int]types.FileResult
	next    int
	out     chan<- types.FileResult
}

func newAggregator(out chan<- types.FileResult) *aggregator {
	return &aggregator{
		pending: make(map[int]types.FileResult),
		out:     out,
	}
}

// submit hands over one result. If it is the next expected index it is
// emitted immediately, along with any parked successors; otherwise it
// waits in pending. The lock is held across the channel sends so emitted
// order can never interleave.
func (a *aggregator) submit(ctx context.Context, res types.FileResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if res.Entry.Index != a.next {
		a.pending[res.Entry.Index] = res
		return nil
	}

	if err := a.emit(ctx, res); err != nil {
		return err
	}
	for {
		queued, ok := a.pending[a.next]
		if !ok {
			return nil
		}
		delete(a.pending, a.next)
		if err := a.emit(ctx, queued); err != nil {
			return err
		}
	}
}

// flush releases everything still parked, in ascending index order. On a
// cancelled run the walker may never have produced the indices that
// would close the gaps, so the cursor is ignored here.
func (a *aggregator) flush(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.pending) == 0 {
		return
	}
	indices := make([]int, 0, len(a.pending))
	for idx := range a.pending {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		if err := a.emit(ctx, a.pending[idx]); err != nil {
			break
		}
		delete(a.pending, idx)
	}
}

func (a *aggregator) emit(ctx context.Context, res types.FileResult) error {
	select {
	case a.out <- res:
		a.next = res.Entry.Index + 1
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

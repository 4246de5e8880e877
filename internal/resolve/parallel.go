package resolve

import (
	"context"
	"runtime"
	"sync"

	"github.com/inodb/spliceai-lookup/internal/vcf"
)

// Params are the scoring parameters shared by a batch of variants.
type Params struct {
	GenomeVersion string
	Distance      int
	Mask          int
}

// WorkItem holds a parsed variant ready for resolution.
type WorkItem struct {
	Seq     int
	Variant *vcf.Variant
}

// WorkResult holds the resolution output for a single variant.
type WorkResult struct {
	Seq     int
	Variant *vcf.Variant
	Result  *Result
}

// ParallelResolve resolves work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (r *Resolver) ParallelResolve(ctx context.Context, items <-chan WorkItem, p Params, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				res := r.Resolve(ctx, item.Variant.String(), p.GenomeVersion, p.Distance, p.Mask)
				results <- WorkResult{
					Seq:     item.Seq,
					Variant: item.Variant,
					Result:  res,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

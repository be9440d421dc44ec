package query

import (
	"context"
	"sync"

	"github.com/eaip-lib/eaip"
)

// AirfieldResult is one element of an airfield stream: either a parsed
// airfield or the error that stopped its materialization. Per-airfield
// failures do not terminate the stream; the remaining index entries still
// arrive.
type AirfieldResult struct {
	// Index is the position in the edition's index.
	Index int

	// ICAO is the code from the index entry. Empty only when the stream
	// failed before the index was available.
	ICAO string

	// Airfield is the parsed entity; nil when Err is set.
	Airfield *eaip.Airfield

	// Err carries the failure for this element.
	Err error
}

// AirfieldStream lazily yields every airfield of the selected edition, one
// element per index entry, in index listing order regardless of fetch
// completion order.
//
// Each call re-resolves the selector and walks the index afresh; no iterator
// state is shared between calls. Detail documents are fetched by a small
// worker pool, so consuming the stream warms the cache concurrently while
// emission order stays deterministic. Cancel ctx to abandon the stream; the
// cache never holds partial documents, so abandonment is always safe.
func (c *Client) AirfieldStream(ctx context.Context, sel eaip.DateSelector) <-chan AirfieldResult {
	out := make(chan AirfieldResult)

	go func() {
		defer close(out)

		r, err := c.repository(ctx, sel)
		if err != nil {
			emit(ctx, out, AirfieldResult{Index: -1, Err: err})
			return
		}
		codes, err := r.Codes(ctx)
		if err != nil {
			emit(ctx, out, AirfieldResult{Index: -1, Err: err})
			return
		}

		type job struct {
			index int
			icao  string
		}
		jobs := make(chan job)
		results := make(chan AirfieldResult, c.opts.StreamWorkers)

		var wg sync.WaitGroup
		for i := 0; i < c.opts.StreamWorkers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range jobs {
					a, err := r.Airfield(ctx, j.icao)
					res := AirfieldResult{Index: j.index, ICAO: j.icao, Airfield: a, Err: err}
					select {
					case results <- res:
					case <-ctx.Done():
						return
					}
				}
			}()
		}

		go func() {
			defer close(jobs)
			for i, icao := range codes {
				select {
				case jobs <- job{index: i, icao: icao}:
				case <-ctx.Done():
					return
				}
			}
		}()

		go func() {
			wg.Wait()
			close(results)
		}()

		// Workers finish out of order; buffer ahead-of-turn results and
		// emit strictly in index order.
		pending := make(map[int]AirfieldResult, len(codes))
		next := 0
		for res := range results {
			pending[res.Index] = res
			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				if !emit(ctx, out, ready) {
					// Consumer is gone; drain workers and stop.
					for range results {
					}
					return
				}
				next++
			}
		}
	}()

	return out
}

// emit sends res unless the context is done. Reports whether the send
// happened.
func emit(ctx context.Context, out chan<- AirfieldResult, res AirfieldResult) bool {
	select {
	case out <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

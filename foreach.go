package parseq

import (
	"context"
	"errors"
	"iter"
	"runtime"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/featherbread/parseq/internal/pool"
)

// ForEach invokes action once per element of seq, dispatching invocations
// across up to [runtime.GOMAXPROCS] concurrent workers. There is no ordering
// guarantee among invocations, and no synchronization of any state the action
// itself touches.
//
// ForEach returns after action has returned for every element, with the
// non-nil errors among the invocations combined by [errors.Join]. It does not
// recover panics; a panicking action crashes the program.
//
// If seq is a [Partitioned] view, prefer [Partitioned.ForEach], which
// respects the existing partitioning when dispatching.
func ForEach[T any](seq iter.Seq[T], action func(T) error) error {
	return forEach(context.Background(), seq, action)
}

// forEach dispatches action over seq through a bounded pool, halting dispatch
// of further elements once ctx is done. Elements never dispatched due to
// cancellation contribute ctx's error to the combined result.
func forEach[T any](ctx context.Context, seq iter.Seq[T], action func(T) error) error {
	var (
		errs = NewBag[error]()
		p    = pool.New(runtime.GOMAXPROCS(0), func(v T) {
			if err := action(v); err != nil {
				errs.Add(err)
			}
		})
	)

	var dispatchErr error
	for v := range seq {
		if err := ctx.Err(); err != nil {
			dispatchErr = err
			break
		}
		p.Dispatch(v)
	}
	p.Wait()

	return errors.Join(append(errs.ToSlice(), dispatchErr)...)
}

// ForEach invokes action once per element of p, dispatching one worker per
// partition rather than through the generic data-parallel facility. Ordering
// and failure semantics otherwise match the package-level [ForEach].
func (p Partitioned[T]) ForEach(action func(T) error) error {
	var (
		errs = NewBag[error]()
		wg   sync.WaitGroup
	)
	for _, part := range p {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, v := range part {
				if err := action(v); err != nil {
					errs.Add(err)
				}
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs.ToSlice()...)
}

// Collect returns a new [Bag] populated with every element of seq, added
// concurrently as if by [ForEach]. The multiset of the bag's contents equals
// the multiset of seq's elements; their order is unspecified. The caller owns
// the returned bag.
func Collect[T any](seq iter.Seq[T]) *Bag[T] {
	bag := NewBag[T]()
	ForEach(seq, func(v T) error {
		bag.Add(v)
		return nil
	})
	return bag
}

// CollectSet returns a thread-safe set populated with the distinct elements
// of seq, added concurrently as if by [ForEach]. Unlike [Collect], duplicate
// elements coalesce.
func CollectSet[T comparable](seq iter.Seq[T]) mapset.Set[T] {
	set := mapset.NewSet[T]()
	ForEach(seq, func(v T) error {
		set.Add(v)
		return nil
	})
	return set
}

// Package pool provides a dispatcher that runs a handler function over
// submitted items with a limit on the number of concurrent handler calls.
package pool

import (
	"math"
	"sync"

	"github.com/gammazero/deque"
)

// Pool runs a handler function once per dispatched item in a goroutine,
// limiting the number of handler calls in flight at once.
//
// Concurrency is controlled with "work grants": an abstract resource that
// both permits and obligates the goroutine holding it to run the pool's
// handler for pending items. Work grants are issued (incrementing grants),
// retired (decrementing grants), and transferred between goroutines to
// maintain the following invariants:
//
//   - Exactly one work grant is outstanding for every unhandled item known to
//     the pool, up to the pool's limit.
//   - No goroutine holds more than one work grant.
//   - Any goroutine holding a work grant is either running the handler for an
//     unhandled item or maintaining these invariants.
//
// Items dispatched while the pool is at its limit wait in a queue for an
// existing grant holder. The pool does not recover panics; a handler panic
// crashes the program.
type Pool[T any] struct {
	handle func(T)

	state   state[T]
	stateMu sync.Mutex

	wg sync.WaitGroup
}

type state[T any] struct {
	grants     int
	grantLimit int
	items      deque.Deque[T]
}

// New creates a pool that runs handle over dispatched items. If limit > 0,
// the pool runs at most that many handler calls concurrently. Otherwise, the
// number of concurrent handler calls is effectively unlimited ([math.MaxInt]).
func New[T any](limit int, handle func(T)) *Pool[T] {
	if limit <= 0 {
		limit = math.MaxInt
	}
	return &Pool[T]{
		handle: handle,
		state:  state[T]{grantLimit: limit},
	}
}

// Dispatch submits items for handling, spawning new worker goroutines as the
// concurrency limit allows. It queues items rather than block on the handler.
func (p *Pool[T]) Dispatch(items ...T) {
	if len(items) == 0 {
		return
	}
	p.wg.Add(len(items))

	var immediate []T
	func() {
		p.stateMu.Lock()
		defer p.stateMu.Unlock()

		// Issue as many new work grants as the limit allows. The remaining
		// items wait for an existing grant holder to pick them up.
		newGrants := max(0, min(p.state.grantLimit-p.state.grants, len(items)))
		p.state.grants += newGrants

		var queued []T
		immediate, queued = items[:newGrants], items[newGrants:]
		for _, item := range queued {
			p.state.items.PushBack(item)
		}
	}()

	// Transfer our issued work grants to fresh workers, to discharge our own
	// responsibility and restore the invariant that no goroutine holds more
	// than one.
	for _, item := range immediate {
		go p.work(&item)
	}
}

// Wait blocks until the handler has returned for every dispatched item.
func (p *Pool[T]) Wait() {
	p.wg.Wait()
}

// work, when invoked in a new goroutine, accepts ownership of a work grant
// and fulfills all duties associated with it. If provided with an initial
// item, it handles that item before taking queued work.
func (p *Pool[T]) work(initial *T) {
	for {
		var (
			item T
			ok   bool
		)
		if initial != nil {
			item, initial = *initial, nil
		} else if item, ok = p.tryGetQueuedItem(); !ok {
			return // We no longer have a work grant; see tryGetQueuedItem.
		}
		p.handle(item)
		p.wg.Done()
	}
}

// tryGetQueuedItem, when called with a work grant held, either returns an
// item (ok == true) that the caller must handle, or retires the work grant
// (ok == false).
func (p *Pool[T]) tryGetQueuedItem() (item T, ok bool) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.state.items.Len() == 0 {
		// With no queued items there is no pending work, and we must retire
		// the work grant.
		p.state.grants -= 1
		return
	}
	return p.state.items.PopFront(), true
}

package parseq

import (
	"context"
	"errors"
	"iter"

	"github.com/featherbread/parseq/internal/catch"
)

// ErrOpGoexit is panicked by [Task.Wait] when a fanned-out operation
// terminated by calling [runtime.Goexit].
var ErrOpGoexit = errors.New("parseq: operation executed runtime.Goexit")

// Task represents the eventual completion of a group of concurrently running
// operations. A Task resolves exactly once, to success, failure, or
// cancellation, and its result may be retrieved any number of times.
type Task struct {
	done   chan struct{}
	result catch.Result[NoValue]
}

// NoValue is the value type of operations that produce only an error.
type NoValue = struct{}

// Wait blocks until every operation in the group has resolved, then returns
// the combined outcome: nil if every operation succeeded, or the operations'
// errors combined by [errors.Join]. A task cancelled before all of its
// operations were launched fails with an error satisfying
// errors.Is(err, [context.Canceled]) or [context.DeadlineExceeded].
//
// If an operation panicked, Wait re-raises the panic with its original value.
// If an operation called runtime.Goexit, Wait panics with [ErrOpGoexit].
func (t *Task) Wait() error {
	<-t.done
	_, err := t.result.Unwrap()
	return err
}

// ForAll launches op for every element of seq in its own goroutine,
// dispatching the launches themselves with data-parallelism, and returns a
// [Task] that resolves once every launched operation has resolved. Operations
// run concurrently with each other and with the caller; there is no ordering
// guarantee.
func ForAll[T any](seq iter.Seq[T], op func(T) error) *Task {
	return forAll(context.Background(), seq, func(_ context.Context, v T) error {
		return op(v)
	})
}

// ForAllShared behaves like [ForAll], but additionally forwards a single
// caller-supplied state value, unchanged, to every operation. parseq performs
// no synchronization or lifecycle management of the value; operations that
// mutate it must synchronize themselves.
func ForAllShared[T, S any](seq iter.Seq[T], state S, op func(T, S) error) *Task {
	return forAll(context.Background(), seq, func(_ context.Context, v T) error {
		return op(v, state)
	})
}

// ForAllContext behaves like [ForAll] with cooperative cancellation: ctx is
// consulted before each launch, and once it is done no further operations are
// launched and the task fails with ctx's error. Operations already launched
// are still awaited before the task resolves; they receive ctx and must honor
// it themselves to stop promptly, as ForAllContext never forcibly aborts an
// operation in flight.
//
// seq must not carry its own independent cancellation wiring, as
// ForAllContext installs ctx as the cancellation signal for the whole group.
func ForAllContext[T any](ctx context.Context, seq iter.Seq[T], op func(context.Context, T) error) *Task {
	return forAll(ctx, seq, op)
}

func forAll[T any](ctx context.Context, seq iter.Seq[T], op func(context.Context, T) error) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)

		pending := NewBag[*operation]()
		dispatchErr := forEach(ctx, seq, func(v T) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pending.Add(launch(func() error { return op(ctx, v) }))
			return nil
		})

		t.result = join(pending, dispatchErr)
	}()
	return t
}

// join awaits every launched operation and coalesces the outcomes into a
// single result. Panics take precedence over Goexits, which take precedence
// over errors; among multiple panics the choice is arbitrary.
func join(pending *Bag[*operation], dispatchErr error) catch.Result[NoValue] {
	var (
		errs     []error
		panicked bool
		panicval any
		goexited bool
	)
	if dispatchErr != nil {
		errs = append(errs, dispatchErr)
	}
	for o := range pending.All() {
		r := o.wait()
		switch {
		case r.Panicked():
			if !panicked {
				panicked, panicval = true, r.Recovered()
			}
		case r.Goexited():
			goexited = true
		default:
			if _, err := r.Unwrap(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	switch {
	case panicked:
		return catch.Panic[NoValue](panicval)
	case goexited:
		return catch.Panic[NoValue](ErrOpGoexit)
	default:
		return catch.Return(NoValue{}, errors.Join(errs...))
	}
}

// operation is the pending-completion handle for a single launched operation.
type operation struct {
	done   chan struct{}
	result catch.Result[NoValue]
}

func launch(op func() error) *operation {
	o := &operation{done: make(chan struct{})}
	go func() {
		defer close(o.done)
		o.result = catch.Goexit[NoValue]() // Remains in place if op Goexits.
		o.result = catch.Run(func() (NoValue, error) {
			return NoValue{}, op()
		})
	}()
	return o
}

func (o *operation) wait() catch.Result[NoValue] {
	<-o.done
	return o.result
}

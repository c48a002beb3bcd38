// Package catch captures the exit behavior of a function, so that panics and
// [runtime.Goexit] calls can be examined or replayed in another goroutine.
package catch

import (
	"runtime"
	"sync"
)

// Run executes fn in the current goroutine and captures a normal return or a
// panic. Unlike [Isolated], it propagates [runtime.Goexit] without returning.
func Run[T any](fn func() (T, error)) (r Result[T]) {
	r.started = true
	func() {
		defer func() { r.panicval = recover() }()
		r.value, r.err = fn()
		r.returned = true
	}()
	r.recovered = true
	return
}

// Isolated executes fn in an independent goroutine and captures its exit
// behavior, shielding the caller from any panic or [runtime.Goexit].
func Isolated[T any](fn func() (T, error)) (r Result[T]) {
	r = Goexit[T]()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r = Run(fn)
	}()
	wg.Wait()
	return
}

// Goexit constructs a synthetic result that captures [runtime.Goexit].
func Goexit[T any]() Result[T] {
	return Result[T]{
		started:   true,
		returned:  false,
		recovered: false,
	}
}

// Panic constructs a synthetic result that captures "panic(panicval)".
func Panic[T any](panicval any) Result[T] {
	return Result[T]{
		started:   true,
		returned:  false,
		recovered: true,
		panicval:  panicval,
	}
}

// Return constructs a synthetic result that captures "return value, err".
func Return[T any](value T, err error) Result[T] {
	return Result[T]{
		started:   true,
		returned:  true,
		recovered: true,
		value:     value,
		err:       err,
	}
}

// Result captures the exit behavior of a captured function: a normal return,
// a panic, or a [runtime.Goexit]. The zero Result behaves as if capturing the
// return of a zero T and nil error.
type Result[T any] struct {
	started   bool
	returned  bool
	recovered bool
	value     T
	err       error
	panicval  any
}

// Unwrap replays the captured exit behavior in the current goroutine:
// returning the captured values, panicking, or calling [runtime.Goexit].
// It is guaranteed to return, rather than panic or Goexit, if and only if
// [Result.Returned] is true.
//
// Unwrap is the only accessor for the value and error of a captured return.
// There is deliberately no accessor that returns in all cases, as that would
// make it easy to drop abnormal exits rather than handle them.
func (r Result[T]) Unwrap() (T, error) {
	switch {
	case !r.started || r.returned:
		return r.value, r.err
	case r.recovered:
		panic(r.panicval)
	default:
		runtime.Goexit()
		panic("continued after runtime.Goexit")
	}
}

// Goexited is true if this result captures [runtime.Goexit].
func (r Result[T]) Goexited() bool {
	return r.started && !r.returned && !r.recovered
}

// Panicked is true if this result captures a panic.
func (r Result[T]) Panicked() bool {
	return r.started && !r.returned && r.recovered
}

// Returned is true if this result captures a normal return.
func (r Result[T]) Returned() bool {
	return !r.started || r.returned
}

// Recovered returns any panic value captured by this result.
//
// If the GODEBUG panicnil=1 setting is enabled, a nil Recovered value may
// represent a true "panic(nil)". [Result.Panicked] distinguishes nil panics
// from non-panic results.
func (r Result[T]) Recovered() any {
	return r.panicval
}

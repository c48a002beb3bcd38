// Package parseq provides generic helpers over sequences: lazy collectors
// that drop absent values or failed conversions, and parallel for-each and
// asynchronous fan-out over a sequence's elements.
//
// Sequences are represented as [iter.Seq]. The collectors are lazy and
// preserve source order; the parallel operations provide no ordering
// guarantee at all, and leave the synchronization of any state shared by
// caller-supplied functions to the caller.
package parseq

import "iter"

// TryFunc attempts to convert an input element to an output value, reporting
// whether the conversion succeeded. By contract, out is meaningful if and
// only if ok is true.
type TryFunc[In, Out any] func(in In) (out Out, ok bool)

// Present returns the sub-sequence of values present in seq: every non-nil
// element, dereferenced, in source order. The returned sequence is lazy, and
// is restartable if seq is restartable.
func Present[T any](seq iter.Seq[*T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if v != nil && !yield(*v) {
				return
			}
		}
	}
}

// TryMap returns the sequence of successful conversions of seq's elements:
// try is applied to each element in source order, and elements for which it
// reports failure are skipped. The returned sequence is lazy, and is
// restartable if seq is restartable.
//
// TryMap trusts try's contract, and never observes an output value reported
// alongside ok == false.
func TryMap[In, Out any](seq iter.Seq[In], try TryFunc[In, Out]) iter.Seq[Out] {
	return func(yield func(Out) bool) {
		for in := range seq {
			if out, ok := try(in); ok && !yield(out) {
				return
			}
		}
	}
}

// Partitioned is a sequence already divided for concurrent consumption.
// Parallel operations on a Partitioned respect its existing partitioning,
// dispatching one worker per partition rather than falling back to generic
// data-parallel iteration. Callers may construct a Partitioned directly, or
// split an existing sequence with [Partition].
type Partitioned[T any] [][]T

// Partition consumes seq and divides its elements round-robin into at most n
// partitions of near-equal size, dropping any empty partitions. It panics if
// n < 1.
func Partition[T any](seq iter.Seq[T], n int) Partitioned[T] {
	if n < 1 {
		panic("parseq: partition count must be at least 1")
	}
	parts := make(Partitioned[T], n)
	var i int
	for v := range seq {
		parts[i%n] = append(parts[i%n], v)
		i++
	}
	// Round-robin fills partitions in order, so only the tail can be empty.
	for len(parts) > 0 && parts[len(parts)-1] == nil {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// Seq returns the flattened sequential view of p, yielding every element of
// every partition in order.
func (p Partitioned[T]) Seq() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, part := range p {
			for _, v := range part {
				if !yield(v) {
					return
				}
			}
		}
	}
}

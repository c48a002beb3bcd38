package parseq

import (
	"iter"
	"sync/atomic"
)

// Bag is an unordered collection supporting concurrent insertion without
// external locking. It makes no ordering or uniqueness guarantees: values
// come back in an unspecified order, and duplicates are retained.
//
// The zero Bag is empty and ready for use.
type Bag[T any] struct {
	head atomic.Pointer[bagNode[T]]
	size atomic.Int64
}

type bagNode[T any] struct {
	value T
	next  *bagNode[T]
}

// NewBag returns a new empty [Bag].
func NewBag[T any]() *Bag[T] {
	return new(Bag[T])
}

// Add inserts value into the bag. It is safe for concurrent use and does not
// block other inserters.
func (b *Bag[T]) Add(value T) {
	node := &bagNode[T]{value: value}
	for {
		node.next = b.head.Load()
		if b.head.CompareAndSwap(node.next, node) {
			b.size.Add(1)
			return
		}
	}
}

// Len returns the number of values in the bag.
func (b *Bag[T]) Len() int {
	return int(b.size.Load())
}

// ToSlice returns the bag's values in a new slice, in no particular order.
func (b *Bag[T]) ToSlice() []T {
	values := make([]T, 0, b.Len())
	for v := range b.All() {
		values = append(values, v)
	}
	return values
}

// All returns a sequence over a snapshot of the bag, in no particular order.
// Values added after the call to All may or may not be included.
func (b *Bag[T]) All() iter.Seq[T] {
	head := b.head.Load()
	return func(yield func(T) bool) {
		for node := head; node != nil; node = node.next {
			if !yield(node.value) {
				return
			}
		}
	}
}

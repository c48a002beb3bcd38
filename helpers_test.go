package parseq_test

import (
	"iter"
	"runtime"
	"slices"
	"testing"
	"time"
)

func makeIntSeq(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range n {
			if !yield(i) {
				return
			}
		}
	}
}

// countingSeq yields the elements of values while tracking how many the
// consumer has pulled, to assert on the laziness of sequence adapters.
func countingSeq[T any](values []T, pulled *int) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range values {
			*pulled++
			if !yield(v) {
				return
			}
		}
	}
}

func sorted[T int | string](values []T) []T {
	values = slices.Clone(values)
	slices.Sort(values)
	return values
}

// assertBlocked asserts that wait does not return before cleanup is called,
// and returns a cleanup function that waits for it to finish.
func assertBlocked(t *testing.T, wait func()) (cleanup func()) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	forceRuntimeProgress()

	select {
	case <-done:
		t.Errorf("wait returned before it should have been unblocked")
	default:
	}

	return func() {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("wait did not return after being unblocked")
		}
	}
}

// forceRuntimeProgress attempts to force the Go runtime to make progress on
// every other live goroutine before resuming the current one.
//
// In scenarios where all live goroutines other than the current one are
// expected to eventually block, this function tries to force those goroutines
// to execute up to that eventual state so that assertions can be made about
// it. It operates on a best-effort basis.
func forceRuntimeProgress() {
	gomaxprocs := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(gomaxprocs)
	n := runtime.NumGoroutine()
	for range n {
		runtime.Gosched()
	}
}

// Package snapshot provides the fixed-capacity, newest-first rolling history
// used for one-step-back crossover math.
package snapshot

import (
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

// MinLineCapacity is the smallest line window that supports crossover detection.
const MinLineCapacity = 2

// Window is a fixed-capacity ring of values ordered newest first.
// It is not safe for concurrent use; each window has exactly one owner.
type Window[T any] struct {
	buf  []T
	head int // slot of the newest value
	size int
}

// New creates an empty window holding at most capacity values.
func New[T any](capacity int) (*Window[T], error) {
	if capacity < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidCapacity, "window capacity must be at least 1, got %d", capacity)
	}

	return &Window[T]{
		buf:  make([]T, capacity),
		head: -1,
	}, nil
}

// NewLineWindow creates a window of line samples suitable for crossover detection.
func NewLineWindow(capacity int) (*Window[types.LineSample], error) {
	if capacity < MinLineCapacity {
		return nil, errors.Newf(errors.ErrCodeInvalidCapacity, "line window capacity must be at least %d, got %d", MinLineCapacity, capacity)
	}

	return New[types.LineSample](capacity)
}

// Push inserts v as the newest value, evicting the oldest when full.
func (w *Window[T]) Push(v T) {
	w.head = (w.head + 1) % len(w.buf)
	w.buf[w.head] = v

	if w.size < len(w.buf) {
		w.size++
	}
}

// At returns the value k steps back, 0 being the newest.
func (w *Window[T]) At(k int) (T, error) {
	var zero T

	if k < 0 || k >= w.size {
		return zero, errors.Newf(errors.ErrCodeOutOfRange, "lookback %d out of range for window of length %d (capacity %d)", k, w.size, len(w.buf))
	}

	idx := (w.head - k + len(w.buf)) % len(w.buf)

	return w.buf[idx], nil
}

// IsReady reports whether the window has been filled to capacity.
func (w *Window[T]) IsReady() bool {
	return w.size == len(w.buf)
}

func (w *Window[T]) Len() int {
	return w.size
}

func (w *Window[T]) Cap() int {
	return len(w.buf)
}

// Values returns a newest-first copy of the stored values.
func (w *Window[T]) Values() []T {
	out := make([]T, w.size)
	for k := range w.size {
		out[k] = w.buf[(w.head-k+len(w.buf))%len(w.buf)]
	}

	return out
}

// Reset drops every stored value. Capacity is unchanged.
func (w *Window[T]) Reset() {
	clear(w.buf)
	w.head = -1
	w.size = 0
}

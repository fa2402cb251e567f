// Package lazy provides memoized accessors for values that are expensive to
// materialize, such as arrays decoded from a shared metadata buffer.
package lazy

import (
	"fmt"
	"sync"
)

// Value holds a T computed on first Get and cached afterwards.
type Value[T any] struct {
	once sync.Once
	load func() T
	v    T
}

// New returns a Value that calls load on first access
func New[T any](load func() T) *Value[T] {
	return &Value[T]{load: load}
}

// Of returns an already materialized Value
func Of[T any](v T) *Value[T] {
	val := &Value[T]{v: v}
	val.once.Do(func() {})
	return val
}

// Get returns the value, loading it if necessary
func (v *Value[T]) Get() T {
	v.once.Do(func() {
		v.v = v.load()
		v.load = nil
	})
	return v.v
}

// List is a fixed-length sequence whose elements are loaded independently
// on first access. Load errors are cached with the element.
type List[T any] struct {
	load  func(i int) (T, error)
	slots []slot[T]
}

type slot[T any] struct {
	once sync.Once
	v    T
	err  error
}

// NewList returns a List of n elements produced by load
func NewList[T any](n int, load func(i int) (T, error)) *List[T] {
	return &List[T]{load: load, slots: make([]slot[T], n)}
}

// FromSlice returns a List over already materialized items
func FromSlice[T any](items []T) *List[T] {
	l := &List[T]{slots: make([]slot[T], len(items))}
	for i := range items {
		l.slots[i].v = items[i]
		l.slots[i].once.Do(func() {})
	}
	return l
}

// Len returns the number of elements
func (l *List[T]) Len() int {
	return len(l.slots)
}

// Get returns element i, loading it on first access
func (l *List[T]) Get(i int) (T, error) {
	if i < 0 || i >= len(l.slots) {
		var zero T
		return zero, fmt.Errorf("index %d out of range [0, %d)", i, len(l.slots))
	}
	s := &l.slots[i]
	s.once.Do(func() {
		s.v, s.err = l.load(i)
	})
	return s.v, s.err
}

// All loads and returns every element, stopping at the first error
func (l *List[T]) All() ([]T, error) {
	out := make([]T, len(l.slots))
	for i := range l.slots {
		v, err := l.Get(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

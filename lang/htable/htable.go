// Package htable implements the generic hash-table primitive used throughout
// the core for globals, the string intern pool, instance fields, and class
// method tables, per spec.md's data model. It is a thin wrapper over a
// swiss-table implementation, reused for every one of those roles instead of
// hand-rolling a table per use site.
package htable

import "github.com/dolthub/swiss"

// Table maps string keys to values of type V, backed by a swiss table.
type Table[V any] struct {
	m *swiss.Map[string, V]
}

// New returns a table with initial capacity for at least size entries.
func New[V any](size int) *Table[V] {
	if size < 1 {
		size = 1
	}
	return &Table[V]{m: swiss.NewMap[string, V](uint32(size))}
}

// Get returns the value associated with key, and whether it was present.
func (t *Table[V]) Get(key string) (V, bool) {
	return t.m.Get(key)
}

// Has reports whether key is present in the table.
func (t *Table[V]) Has(key string) bool {
	_, ok := t.m.Get(key)
	return ok
}

// Set associates key with v, overwriting any previous value.
func (t *Table[V]) Set(key string, v V) {
	t.m.Put(key, v)
}

// Delete removes key from the table, reporting whether it was present.
func (t *Table[V]) Delete(key string) bool {
	return t.m.Delete(key)
}

// Len returns the number of entries in the table.
func (t *Table[V]) Len() int {
	return int(t.m.Count())
}

// Each calls fn for every entry in the table, in unspecified order. If fn
// returns false, iteration stops early.
func (t *Table[V]) Each(fn func(key string, v V) bool) {
	t.m.Iter(func(key string, v V) bool {
		return !fn(key, v)
	})
}

// CopyInto copies every entry of t into dst, overwriting existing keys. Used
// to implement INHERIT, which copies a superclass's method table into a
// subclass's.
func (t *Table[V]) CopyInto(dst *Table[V]) {
	t.Each(func(key string, v V) bool {
		dst.Set(key, v)
		return true
	})
}

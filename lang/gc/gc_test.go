package gc_test

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/gc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRoots lets a test pin an exact set of values as GC roots.
type fixedRoots struct{ values []chunk.Value }

func (r *fixedRoots) MarkRoots(mark func(chunk.Value)) {
	for _, v := range r.values {
		mark(v)
	}
}

func TestInternStringIdentity(t *testing.T) {
	h := gc.New(1<<30, gc.DefaultGrowFactor)
	a := h.InternString("hello")
	b := h.InternString("hello")
	assert.Same(t, a, b, "equal contents must intern to the same object")

	c := h.InternString("world")
	assert.NotSame(t, a, c)
}

func TestCollectFreesUnreachableObjects(t *testing.T) {
	h := gc.New(1<<30, gc.DefaultGrowFactor)
	roots := &fixedRoots{}
	h.AddRootSource(roots)

	kept := h.InternString("kept")
	roots.values = []chunk.Value{chunk.FromObj(kept)}

	h.InternString("garbage-one")
	h.InternString("garbage-two")
	require.Equal(t, 3, h.Count(), "heap dump: %s", spew.Sdump(h))

	h.Collect()

	require.Equal(t, 1, h.Count())
	_, stillInterned := lookupIntern(h, "garbage-one")
	assert.False(t, stillInterned)
}

func TestCollectTracesObjectGraph(t *testing.T) {
	h := gc.New(1<<30, gc.DefaultGrowFactor)
	roots := &fixedRoots{}
	h.AddRootSource(roots)

	fn := h.NewFunction()
	fn.Name = h.InternString("f")
	closure := h.NewClosure(fn)
	roots.values = []chunk.Value{chunk.FromObj(closure)}

	before := h.Count()
	h.Collect()
	assert.Equal(t, before, h.Count(), "everything reachable from the closure must survive")
}

func TestStressModeCollectsEveryAllocation(t *testing.T) {
	h := gc.New(1<<30, gc.DefaultGrowFactor)
	h.Stress = true
	var log strings.Builder
	h.Log = &log

	h.InternString("a")
	h.InternString("b")

	assert.Contains(t, log.String(), "gc begin")
}

func TestNextGCMonotone(t *testing.T) {
	h := gc.New(64, gc.DefaultGrowFactor)
	roots := &fixedRoots{}
	h.AddRootSource(roots)

	last := h.NextGC()
	for i := 0; i < 50; i++ {
		h.InternString(strings.Repeat("x", i+1))
		require.GreaterOrEqual(t, h.NextGC(), last, "next_gc must never shrink across a collection")
		last = h.NextGC()
	}
}

func lookupIntern(h *gc.Heap, s string) (*chunk.ObjString, bool) {
	var found *chunk.ObjString
	h.Each(func(o chunk.Obj) bool {
		if str, ok := o.(*chunk.ObjString); ok && str.Chars == s {
			found = str
			return false
		}
		return true
	})
	return found, found != nil
}

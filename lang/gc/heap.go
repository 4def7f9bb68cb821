// Package gc implements the heap and tracing garbage collector: object
// allocation, a heap-size-threshold-triggered tri-color mark/sweep, weak
// string interning, and heap-growth policy (spec.md §4.4). It is the
// "Heap & GC" component from spec.md §2, grounded on
// _examples/original_source/memory.c and object.c, with the hash-table
// primitive (spec.md §1's out-of-scope collaborator) supplied by
// lang/htable, which wraps the same dolthub/swiss table the teacher uses
// for its own Map value.
package gc

import (
	"fmt"
	"io"

	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/htable"
)

// DefaultGrowFactor is the multiplier applied to the live heap size after a
// collection to compute the next collection threshold.
const DefaultGrowFactor = 2

// RootSource is implemented by anything that owns references the collector
// must treat as roots: the VM (value stack, call frames, open upvalues,
// globals) and, during compilation, the compiler (its in-progress
// functions). MarkRoots must call mark once for every Value the source
// considers live.
type RootSource interface {
	MarkRoots(mark func(chunk.Value))
}

// Heap owns every runtime object: it allocates them, threads them onto a
// single intrusive all-objects list, and reclaims them via tracing
// collection.
type Heap struct {
	all    chunk.Obj // head of the intrusive all-objects list
	intern *htable.Table[*chunk.ObjString]

	bytesAllocated int64
	nextGC         int64
	growFactor     int64

	gray       []chunk.Obj
	protected  []chunk.Obj // transient GC roots, pushed by compiler/VM
	roots      []RootSource
	initString *chunk.ObjString

	// Stress forces a collection on every allocation, the equivalent of
	// clox's DEBUG_STRESS_GC, for shaking out premature-collection bugs in
	// tests.
	Stress bool
	// Log, if non-nil, receives one line per collection phase, the
	// equivalent of clox's DEBUG_LOG_GC.
	Log io.Writer
}

// New returns a Heap whose first collection will not trigger until
// bytesAllocated exceeds initialThreshold. growFactor must be > 1; values
// <= 1 are treated as DefaultGrowFactor.
func New(initialThreshold int64, growFactor int64) *Heap {
	if growFactor <= 1 {
		growFactor = DefaultGrowFactor
	}
	return &Heap{
		intern:     htable.New[*chunk.ObjString](64),
		nextGC:     initialThreshold,
		growFactor: growFactor,
	}
}

// AddRootSource registers r to be consulted on every collection.
func (h *Heap) AddRootSource(r RootSource) {
	h.roots = append(h.roots, r)
}

// BytesAllocated returns the heap's current estimated live size.
func (h *Heap) BytesAllocated() int64 { return h.bytesAllocated }

// NextGC returns the byte threshold that will trigger the next collection.
func (h *Heap) NextGC() int64 { return h.nextGC }

// PushProtected roots o until the matching PopProtected, protecting a
// transient value (not yet reachable from the stack or globals) across any
// allocation that might run a collection in between. This is the "GC safety
// points" discipline spec.md §4.4 requires of addConstant, string
// concatenation, and closure construction.
func (h *Heap) PushProtected(o chunk.Obj) {
	if o != nil {
		h.protected = append(h.protected, o)
	}
}

// PopProtected undoes the most recent PushProtected call that actually
// pushed something (a nil Obj is a no-op pair).
func (h *Heap) PopProtected(o chunk.Obj) {
	if o == nil {
		return
	}
	h.protected = h.protected[:len(h.protected)-1]
}

// track links o onto the all-objects list and accounts for size bytes,
// triggering a collection first if the new total would exceed the
// threshold (or Stress is set). The check happens before o is linked in, so
// a collection can never see (and free) the object currently being
// allocated — mirroring the order of operations in
// original_source/memory.c, where reallocate's GC check runs before
// allocateObject links the new object into vm.objects.
func (h *Heap) track(o chunk.Obj, size int64) {
	h.bytesAllocated += size
	if h.Stress || h.bytesAllocated > h.nextGC {
		h.Collect()
	}
	o.ObjHeader().Next = h.all
	h.all = o
}

// InitString returns the interned "init" string, computing and caching it on
// first use. It is always treated as a GC root once created, per spec.md §3.
func (h *Heap) InitString() *chunk.ObjString {
	if h.initString == nil {
		h.initString = h.InternString("init")
	}
	return h.initString
}

// Each calls fn for every live object in unspecified order. If fn returns
// false, iteration stops early. Intended for tests and introspection only.
func (h *Heap) Each(fn func(chunk.Obj) bool) {
	for o := h.all; o != nil; o = o.ObjHeader().Next {
		if !fn(o) {
			return
		}
	}
}

// Count returns the number of live objects currently on the all-objects
// list.
func (h *Heap) Count() int {
	n := 0
	h.Each(func(chunk.Obj) bool { n++; return true })
	return n
}

func (h *Heap) logf(format string, args ...interface{}) {
	if h.Log != nil {
		fmt.Fprintf(h.Log, format, args...)
	}
}

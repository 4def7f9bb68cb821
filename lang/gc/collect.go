package gc

import (
	"github.com/mna/loxvm/lang/chunk"
	"golang.org/x/exp/slices"
)

// Collect runs one full mark-sweep cycle: mark every root, trace the gray
// worklist to blacken everything reachable, weakly sweep the string intern
// table, sweep the all-objects list, then grow the next collection
// threshold. Grounded on original_source/memory.c's collectGarbage.
func (h *Heap) Collect() {
	h.logf("-- gc begin\n")

	h.markRoots()
	h.traceReferences()
	h.sweepIntern()
	freed := h.sweep()

	h.nextGC = h.bytesAllocated * h.growFactor

	h.logf("-- gc end: freed %d objects, %d bytes allocated, next at %d\n", freed, h.bytesAllocated, h.nextGC)
}

func (h *Heap) markRoots() {
	for _, r := range h.roots {
		r.MarkRoots(h.markValue)
	}
	for _, o := range h.protected {
		h.markObject(o)
	}
	if h.initString != nil {
		h.markObject(h.initString)
	}
}

func (h *Heap) markValue(v chunk.Value) {
	if v.IsObj() {
		h.markObject(v.AsObj())
	}
}

func (h *Heap) markObject(o chunk.Obj) {
	if o == nil {
		return
	}
	hdr := o.ObjHeader()
	if hdr.Marked {
		return
	}
	hdr.Marked = true
	h.gray = append(h.gray, o)
}

func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		o := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(o)
	}
}

// blacken marks every object directly referenced by o, per spec.md §4.4's
// per-kind rules.
func (h *Heap) blacken(o chunk.Obj) {
	switch v := o.(type) {
	case *chunk.ObjFunction:
		h.markObject(v.Name)
		for _, c := range v.Chunk.Constants {
			h.markValue(c)
		}
	case *chunk.ObjClosure:
		h.markObject(v.Function)
		for _, uv := range v.Upvalues {
			h.markObject(uv)
		}
	case *chunk.ObjUpvalue:
		if !v.IsOpen() {
			h.markValue(v.Closed)
		}
	case *chunk.ObjClass:
		h.markObject(v.Name)
		v.Methods.Each(func(_ string, mv chunk.Value) bool {
			h.markValue(mv)
			return true
		})
	case *chunk.ObjInstance:
		h.markObject(v.Class)
		v.Fields.Each(func(_ string, fv chunk.Value) bool {
			h.markValue(fv)
			return true
		})
	case *chunk.ObjBoundMethod:
		h.markValue(v.Receiver)
		h.markObject(v.Method)
	case *chunk.ObjString, *chunk.ObjNative:
		// no outgoing references
	}
}

// sweepIntern removes every entry of the intern table whose key string did
// not survive marking, so that the general sweep below is free to reclaim
// it. This is spec.md §4.4's weak-intern-sweep step, and the mechanism by
// which the intern table's keys are "weakly held" (spec.md §3).
func (h *Heap) sweepIntern() {
	var dead []string
	h.intern.Each(func(key string, s *chunk.ObjString) bool {
		if !s.Marked {
			dead = append(dead, key)
		}
		return true
	})
	// Sorted purely so -- gc log output lists removed strings in a
	// deterministic order; table iteration order itself is not.
	slices.Sort(dead)
	for _, k := range dead {
		h.intern.Delete(k)
		h.logf("-- sweep intern %q\n", k)
	}
}

// sweep walks the all-objects intrusive list, unlinking and discarding every
// unmarked object and clearing the mark bit of every survivor. It returns
// the number of objects discarded. Go's own garbage collector reclaims the
// discarded objects' memory once nothing (including this heap) references
// them any longer; this sweep's job is to enforce spec.md §8's "every
// object reachable from roots is present in all_objects; every object not
// reachable is freed" property, not to manage memory directly.
func (h *Heap) sweep() int {
	freed := 0
	var prev chunk.Obj
	obj := h.all
	for obj != nil {
		hdr := obj.ObjHeader()
		next := hdr.Next
		if hdr.Marked {
			hdr.Marked = false
			prev = obj
		} else {
			freed++
			if prev != nil {
				prev.ObjHeader().Next = next
			} else {
				h.all = next
			}
		}
		obj = next
	}
	return freed
}

package gc

import "github.com/mna/loxvm/lang/chunk"

// sizeof-ish byte estimates used purely to drive the heap-growth policy; they
// need not be exact, only monotone with an object's real footprint (see
// spec.md §8's "next_gc is strictly monotone non-decreasing" property).
const (
	sizeofString      = 24
	sizeofFunction     = 96
	sizeofNative       = 32
	sizeofClosure      = 48
	sizeofUpvalue      = 40
	sizeofClass        = 48
	sizeofInstance     = 40
	sizeofBoundMethod  = 32
)

// InternString returns the canonical ObjString for s, allocating and
// interning a new one only if no live string with the same contents already
// exists. This is the heap's half of spec.md §3's interning invariant: equal
// contents always share identity.
func (h *Heap) InternString(s string) *chunk.ObjString {
	if existing, ok := h.intern.Get(s); ok {
		return existing
	}
	str := &chunk.ObjString{Chars: s, Hash: chunk.HashString(s)}
	h.track(str, sizeofString+int64(len(s)))
	h.intern.Set(s, str)
	return str
}

// NewFunction allocates a fresh, empty ObjFunction with its own Chunk.
func (h *Heap) NewFunction() *chunk.ObjFunction {
	fn := &chunk.ObjFunction{Chunk: &chunk.Chunk{}}
	h.track(fn, sizeofFunction)
	return fn
}

// NewNative allocates an ObjNative wrapping fn.
func (h *Heap) NewNative(name string, fn chunk.NativeFn) *chunk.ObjNative {
	n := &chunk.ObjNative{Name: name, Fn: fn}
	h.track(n, sizeofNative)
	return n
}

// NewClosure allocates an ObjClosure over function, with an empty upvalue
// slice sized to function.UpvalueCount. The caller is responsible for
// wiring each upvalue slot (see spec.md §4.3's CLOSURE opcode semantics)
// before the closure is used; until then, nil entries are tolerated by the
// collector (blacken skips nil upvalues).
func (h *Heap) NewClosure(function *chunk.ObjFunction) *chunk.ObjClosure {
	c := &chunk.ObjClosure{Function: function, Upvalues: make([]*chunk.ObjUpvalue, function.UpvalueCount)}
	h.track(c, sizeofClosure)
	return c
}

// NewUpvalue allocates an open ObjUpvalue pointing at location.
func (h *Heap) NewUpvalue(location *chunk.Value) *chunk.ObjUpvalue {
	u := &chunk.ObjUpvalue{Location: location}
	h.track(u, sizeofUpvalue)
	return u
}

// NewClass allocates an empty ObjClass named name.
func (h *Heap) NewClass(name *chunk.ObjString) *chunk.ObjClass {
	c := chunk.NewClass(name)
	h.track(c, sizeofClass)
	return c
}

// NewInstance allocates a field-less ObjInstance of class.
func (h *Heap) NewInstance(class *chunk.ObjClass) *chunk.ObjInstance {
	i := chunk.NewInstance(class)
	h.track(i, sizeofInstance)
	return i
}

// NewBoundMethod allocates an ObjBoundMethod pairing receiver with method.
func (h *Heap) NewBoundMethod(receiver chunk.Value, method *chunk.ObjClosure) *chunk.ObjBoundMethod {
	b := &chunk.ObjBoundMethod{Receiver: receiver, Method: method}
	h.track(b, sizeofBoundMethod)
	return b
}

package chunk

// ObjKind discriminates the case of a heap object (an Obj).
type ObjKind uint8

const (
	KindStringObj ObjKind = iota
	KindFunctionObj
	KindNativeObj
	KindClosureObj
	KindUpvalueObj
	KindClassObj
	KindInstanceObj
	KindBoundMethodObj
)

func (k ObjKind) String() string {
	switch k {
	case KindStringObj:
		return "string"
	case KindFunctionObj:
		return "function"
	case KindNativeObj:
		return "native"
	case KindClosureObj:
		return "closure"
	case KindUpvalueObj:
		return "upvalue"
	case KindClassObj:
		return "class"
	case KindInstanceObj:
		return "instance"
	case KindBoundMethodObj:
		return "bound method"
	default:
		return "unknown object"
	}
}

// Header is the common header every heap object carries: whether it survived
// the current mark phase, and the intrusive link to the next object
// allocated by the same heap. Every concrete Obj kind embeds a Header.
type Header struct {
	Marked bool
	Next   Obj
}

// Obj is the interface implemented by every heap-allocated object kind:
// ObjString, ObjFunction, ObjNative, ObjClosure, ObjUpvalue, ObjClass,
// ObjInstance, and ObjBoundMethod. The interpreter switches on Kind()
// instead of using virtual dispatch, per spec.md's design notes.
type Obj interface {
	Kind() ObjKind
	// ObjHeader returns a pointer to the object's embedded Header, letting the
	// garbage collector thread every live object into a single intrusive list
	// and flip its mark bit without a type switch.
	ObjHeader() *Header
	// String renders the object the way PRINT and the REPL do.
	String() string
}

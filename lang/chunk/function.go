package chunk

// ObjFunction is the compiled form of a function body: its arity, the number
// of upvalues its closures must capture, an optional name (nil for the
// synthesized top-level script function), and its own Chunk. A Function is
// built once by the compiler and never mutated once the compiler's
// function() call that produced it returns; it is never directly callable —
// the VM always wraps it in an ObjClosure before calling it.
type ObjFunction struct {
	Header
	Arity        int
	UpvalueCount int
	Name         *ObjString // nil for the top-level script
	Chunk        *Chunk
}

func (f *ObjFunction) Kind() ObjKind      { return KindFunctionObj }
func (f *ObjFunction) ObjHeader() *Header { return &f.Header }

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Chars + ">"
}

// NativeFn is the signature of a host-provided native function.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a host function pointer so it can be called like any other
// loxvm callable.
type ObjNative struct {
	Header
	Name string
	Fn   NativeFn
}

func (n *ObjNative) Kind() ObjKind      { return KindNativeObj }
func (n *ObjNative) ObjHeader() *Header { return &n.Header }
func (n *ObjNative) String() string     { return "<native fn>" }

// ObjUpvalue is the indirection that lets a closure reference a variable
// whose stack slot has, or will, become invalid. While open, Location points
// into the VM's value stack; once closed, Location points at the upvalue's
// own embedded Closed slot, which holds the value going forward. NextOpen
// threads every still-open upvalue into the VM's open-upvalue list, sorted by
// strictly decreasing Location address.
type ObjUpvalue struct {
	Header
	Location *Value
	Closed   Value
	NextOpen *ObjUpvalue

	// Slot is the stack index Location refers to while the upvalue is open.
	// Go pointers support no ordered comparison or arithmetic (unlike C's
	// Location-based list ordering in the original clox), so the VM keeps
	// this explicit index to sort and search the open-upvalue list.
	Slot int
}

func (u *ObjUpvalue) Kind() ObjKind      { return KindUpvalueObj }
func (u *ObjUpvalue) ObjHeader() *Header { return &u.Header }
func (u *ObjUpvalue) String() string     { return "upvalue" }

// IsOpen reports whether the upvalue still refers into the live stack.
func (u *ObjUpvalue) IsOpen() bool { return u.Location != &u.Closed }

// Close copies the current value into the upvalue's own storage and
// repoints Location at it, transitioning the upvalue from open to closed.
// This transition never reverses.
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// ObjClosure pairs a Function with the concrete Upvalue objects it captured
// at creation time.
type ObjClosure struct {
	Header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) Kind() ObjKind      { return KindClosureObj }
func (c *ObjClosure) ObjHeader() *Header { return &c.Header }
func (c *ObjClosure) String() string     { return c.Function.String() }

package chunk

import "github.com/mna/loxvm/lang/htable"

// ObjClass is a user-defined class: its name and a table mapping method
// names to the ObjClosure implementing them, stored as Values wrapping
// *ObjClosure.
type ObjClass struct {
	Header
	Name    *ObjString
	Methods *htable.Table[Value]
}

// NewClass returns an empty class named name.
func NewClass(name *ObjString) *ObjClass {
	return &ObjClass{Name: name, Methods: htable.New[Value](8)}
}

func (c *ObjClass) Kind() ObjKind      { return KindClassObj }
func (c *ObjClass) ObjHeader() *Header { return &c.Header }
func (c *ObjClass) String() string     { return "class " + c.Name.Chars }

// ObjInstance is an instance of an ObjClass, with its own field table
// (distinct from, and overlaying, its class's method table at property
// lookup time).
type ObjInstance struct {
	Header
	Class  *ObjClass
	Fields *htable.Table[Value]
}

// NewInstance returns a new, field-less instance of class.
func NewInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{Class: class, Fields: htable.New[Value](4)}
}

func (i *ObjInstance) Kind() ObjKind      { return KindInstanceObj }
func (i *ObjInstance) ObjHeader() *Header { return &i.Header }
func (i *ObjInstance) String() string     { return i.Class.Name.Chars + " instance" }

// ObjBoundMethod pairs a receiver value with the closure it was looked up
// from, so that `obj.method` can be passed around and later called with
// `this` already bound, without re-resolving the lookup.
type ObjBoundMethod struct {
	Header
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) Kind() ObjKind      { return KindBoundMethodObj }
func (b *ObjBoundMethod) ObjHeader() *Header { return &b.Header }
func (b *ObjBoundMethod) String() string     { return b.Method.String() }

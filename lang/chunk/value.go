// Package chunk implements the Chunk/Value model: the linear bytecode buffer
// with its parallel source-line map and constant pool, the tagged runtime
// Value, the heap-object header every Obj kind shares, and the opcode table
// and disassembler that read it. This is "Chunk / Value model" from
// spec.md §2, plus the object kinds from §3 that a Value of kind Obj may
// reference (kept in the same package because Go, unlike C, cannot let two
// packages reference each other's types; clox's chunk.h/value.h/object.h
// split does exactly this via forward declarations).
package chunk

import (
	"math"
	"strconv"
)

// Kind discriminates the case of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is a tagged variant holding a nil, a boolean, an IEEE-754 double, or
// a reference to a heap object. The zero Value is nil.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	obj     Obj
}

// Nil is the singleton nil value.
var Nil = Value{kind: KindNil}

// True and False are the singleton boolean values.
var (
	True  = Value{kind: KindBool, boolean: true}
	False = Value{kind: KindBool, boolean: false}
)

// Bool returns the singleton boolean Value for b.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Number returns a Value wrapping the float64 f.
func Number(f float64) Value {
	return Value{kind: KindNumber, number: f}
}

// FromObj returns a Value wrapping the heap object o. o must not be nil.
func FromObj(o Obj) Value {
	return Value{kind: KindObj, obj: o}
}

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObj() bool    { return v.kind == KindObj }

func (v Value) AsBool() bool     { return v.boolean }
func (v Value) AsNumber() float64 { return v.number }
func (v Value) AsObj() Obj        { return v.obj }

// ObjKind returns the kind of the underlying object, and false if v does not
// hold an object.
func (v Value) ObjKind() (ObjKind, bool) {
	if v.kind != KindObj {
		return 0, false
	}
	return v.obj.Kind(), true
}

// IsObjKind reports whether v holds an object of the given kind.
func (v Value) IsObjKind(k ObjKind) bool {
	return v.kind == KindObj && v.obj.Kind() == k
}

// IsFalsey implements the language's truthiness rule: nil and false are
// falsey, everything else is truthy.
func (v Value) IsFalsey() bool {
	return v.kind == KindNil || (v.kind == KindBool && !v.boolean)
}

// Equal implements strict-type value equality: numbers compare by IEEE
// equality, strings by interned identity (which is just pointer identity
// here, since identical contents are always the same *ObjString), and every
// other object kind by reference identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.boolean == o.boolean
	case KindNumber:
		return v.number == o.number
	case KindObj:
		return v.obj == o.obj
	default:
		return false
	}
}

// TypeName returns a short description of v's type, for error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObj:
		switch v.obj.Kind() {
		case KindStringObj:
			return "string"
		case KindFunctionObj:
			return "function"
		case KindNativeObj:
			return "native function"
		case KindClosureObj:
			return "function"
		case KindUpvalueObj:
			return "upvalue"
		case KindClassObj:
			return "class"
		case KindInstanceObj:
			return "instance"
		case KindBoundMethodObj:
			return "method"
		}
	}
	return "unknown"
}

// String renders v the way PRINT and the REPL do: numbers in their shortest
// round-trip decimal form, booleans as true/false, nil as nil, and objects
// per their own String method.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.number)
	case KindObj:
		return v.obj.String()
	default:
		return "<invalid value>"
	}
}

func formatNumber(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

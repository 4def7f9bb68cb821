package vm

import (
	"fmt"

	"github.com/mna/loxvm/lang/chunk"
)

// run executes bytecode starting at the current top call frame until the
// frame stack empties (the initial script frame returns), or a runtime
// fault occurs.
func (v *VM) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(stackOverflow); ok {
				err = v.runtimeError("Stack overflow.")
				return
			}
			panic(r)
		}
	}()

	for {
		fr := &v.frames[len(v.frames)-1]
		code := fr.closure.Function.Chunk.Code

		if v.Trace {
			v.printTrace(fr)
		}

		op := chunk.Opcode(code[fr.ip])
		fr.ip++

		switch op {
		case chunk.CONSTANT:
			idx := code[fr.ip]
			fr.ip++
			v.push(fr.closure.Function.Chunk.Constants[idx])

		case chunk.NIL:
			v.push(chunk.Nil)
		case chunk.TRUE:
			v.push(chunk.True)
		case chunk.FALSE:
			v.push(chunk.False)
		case chunk.POP:
			v.pop()

		case chunk.GET_LOCAL:
			slot := code[fr.ip]
			fr.ip++
			v.push(v.stack[fr.base+int(slot)])
		case chunk.SET_LOCAL:
			slot := code[fr.ip]
			fr.ip++
			v.stack[fr.base+int(slot)] = v.peek(0)

		case chunk.GET_GLOBAL:
			name := v.constantString(fr, code[fr.ip])
			fr.ip++
			val, ok := v.globals.Get(name)
			if !ok {
				return v.runtimeError("Undefined variable '%s'.", name)
			}
			v.push(val)
		case chunk.DEFINE_GLOBAL:
			name := v.constantString(fr, code[fr.ip])
			fr.ip++
			v.globals.Set(name, v.peek(0))
			v.pop()
		case chunk.SET_GLOBAL:
			name := v.constantString(fr, code[fr.ip])
			fr.ip++
			if !v.globals.Has(name) {
				return v.runtimeError("Undefined variable '%s'.", name)
			}
			v.globals.Set(name, v.peek(0))

		case chunk.GET_UPVALUE:
			slot := code[fr.ip]
			fr.ip++
			v.push(*fr.closure.Upvalues[slot].Location)
		case chunk.SET_UPVALUE:
			slot := code[fr.ip]
			fr.ip++
			*fr.closure.Upvalues[slot].Location = v.peek(0)

		case chunk.GET_PROPERTY:
			name := v.constantString(fr, code[fr.ip])
			fr.ip++
			if err := v.getProperty(name); err != nil {
				return err
			}
		case chunk.SET_PROPERTY:
			name := v.constantString(fr, code[fr.ip])
			fr.ip++
			inst, ok := v.peek(1).AsObj().(*chunk.ObjInstance)
			if !ok || !v.peek(1).IsObj() {
				return v.runtimeError("Only instances have fields.")
			}
			inst.Fields.Set(name, v.peek(0))
			val := v.pop()
			v.pop()
			v.push(val)
		case chunk.GET_SUPER:
			name := v.constantString(fr, code[fr.ip])
			fr.ip++
			super := v.pop().AsObj().(*chunk.ObjClass)
			if err := v.bindMethod(super, name); err != nil {
				return err
			}

		case chunk.EQUAL:
			b, a := v.pop(), v.pop()
			v.push(chunk.Bool(a.Equal(b)))
		case chunk.GREATER, chunk.LESS:
			if err := v.binaryCompare(op); err != nil {
				return err
			}
		case chunk.ADD:
			if err := v.add(); err != nil {
				return err
			}
		case chunk.SUBTRACT, chunk.MULTIPLY, chunk.DIVIDE:
			if err := v.binaryArith(op); err != nil {
				return err
			}
		case chunk.NOT:
			v.push(chunk.Bool(v.pop().IsFalsey()))
		case chunk.NEGATE:
			if !v.peek(0).IsNumber() {
				return v.runtimeError("Operand must be a number.")
			}
			v.push(chunk.Number(-v.pop().AsNumber()))

		case chunk.PRINT:
			fmt.Fprintln(v.Stdout, v.pop().String())

		case chunk.JUMP:
			offset := chunk.ReadU16(code, fr.ip)
			fr.ip += 2 + int(offset)
		case chunk.JUMP_IF_FALSE:
			offset := chunk.ReadU16(code, fr.ip)
			fr.ip += 2
			if v.peek(0).IsFalsey() {
				fr.ip += int(offset)
			}
		case chunk.LOOP:
			offset := chunk.ReadU16(code, fr.ip)
			fr.ip += 2 - int(offset)

		case chunk.CALL:
			argc := int(code[fr.ip])
			fr.ip++
			if err := v.callValue(v.peek(argc), argc); err != nil {
				return err
			}
		case chunk.INVOKE:
			name := v.constantString(fr, code[fr.ip])
			argc := int(code[fr.ip+1])
			fr.ip += 2
			if err := v.invoke(name, argc); err != nil {
				return err
			}
		case chunk.SUPER_INVOKE:
			name := v.constantString(fr, code[fr.ip])
			argc := int(code[fr.ip+1])
			fr.ip += 2
			super := v.pop().AsObj().(*chunk.ObjClass)
			if err := v.invokeFromClass(super, name, argc); err != nil {
				return err
			}

		case chunk.CLOSURE:
			idx := code[fr.ip]
			fr.ip++
			fn := fr.closure.Function.Chunk.Constants[idx].AsObj().(*chunk.ObjFunction)
			closure := v.heap.NewClosure(fn)
			v.push(chunk.FromObj(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := code[fr.ip]
				index := code[fr.ip+1]
				fr.ip += 2
				if isLocal != 0 {
					closure.Upvalues[i] = v.captureUpvalue(fr.base + int(index))
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}
		case chunk.CLOSE_UPVALUE:
			v.closeUpvalues(len(v.stack) - 1)
			v.pop()

		case chunk.RETURN:
			result := v.pop()
			v.closeUpvalues(fr.base)
			returnBase := fr.base
			v.frames = v.frames[:len(v.frames)-1]
			if len(v.frames) == 0 {
				v.pop() // the top-level script's own closure
				return nil
			}
			v.stack = v.stack[:returnBase]
			v.push(result)

		case chunk.CLASS:
			name := v.constantString(fr, code[fr.ip])
			fr.ip++
			v.push(chunk.FromObj(v.heap.NewClass(v.heap.InternString(name))))
		case chunk.INHERIT:
			super, ok := v.peek(1).AsObj().(*chunk.ObjClass)
			if !ok || !v.peek(1).IsObj() {
				return v.runtimeError("Superclass must be a class.")
			}
			sub := v.peek(0).AsObj().(*chunk.ObjClass)
			super.Methods.Each(func(k string, val chunk.Value) bool {
				sub.Methods.Set(k, val)
				return true
			})
			v.pop() // the subclass
		case chunk.METHOD:
			name := v.constantString(fr, code[fr.ip])
			fr.ip++
			v.defineMethod(name)

		default:
			return v.runtimeError("Unknown opcode %d.", op)
		}
	}
}

// printTrace writes the operand stack, bottom to top, followed by the
// disassembly of the instruction fr is about to execute, mirroring clox's
// DEBUG_TRACE_EXECUTION output in debug.c.
func (v *VM) printTrace(fr *callFrame) {
	fmt.Fprint(v.Stderr, "          ")
	for _, val := range v.stack {
		fmt.Fprintf(v.Stderr, "[ %s ]", val.String())
	}
	fmt.Fprintln(v.Stderr)
	chunk.DisassembleInstruction(v.Stderr, fr.closure.Function.Chunk, fr.ip)
}

func (v *VM) constantString(fr *callFrame, idx byte) string {
	return fr.closure.Function.Chunk.Constants[idx].AsObj().(*chunk.ObjString).Chars
}

func (v *VM) getProperty(name string) error {
	receiver := v.peek(0)
	inst, ok := receiver.AsObj().(*chunk.ObjInstance)
	if !ok || !receiver.IsObj() {
		return v.runtimeError("Only instances have properties.")
	}
	if val, ok := inst.Fields.Get(name); ok {
		v.pop()
		v.push(val)
		return nil
	}
	v.pop()
	v.push(receiver)
	return v.bindMethod(inst.Class, name)
}

func (v *VM) defineMethod(name string) {
	method := v.peek(0)
	class := v.peek(1).AsObj().(*chunk.ObjClass)
	class.Methods.Set(name, method)
	v.pop()
}

func (v *VM) binaryCompare(op chunk.Opcode) error {
	if !v.peek(0).IsNumber() || !v.peek(1).IsNumber() {
		return v.runtimeError("Operands must be numbers.")
	}
	b, a := v.pop().AsNumber(), v.pop().AsNumber()
	switch op {
	case chunk.GREATER:
		v.push(chunk.Bool(a > b))
	case chunk.LESS:
		v.push(chunk.Bool(a < b))
	}
	return nil
}

func (v *VM) binaryArith(op chunk.Opcode) error {
	if !v.peek(0).IsNumber() || !v.peek(1).IsNumber() {
		return v.runtimeError("Operands must be numbers.")
	}
	b, a := v.pop().AsNumber(), v.pop().AsNumber()
	switch op {
	case chunk.SUBTRACT:
		v.push(chunk.Number(a - b))
	case chunk.MULTIPLY:
		v.push(chunk.Number(a * b))
	case chunk.DIVIDE:
		v.push(chunk.Number(a / b))
	}
	return nil
}

// add implements the polymorphic '+': numeric addition, or string
// concatenation when both operands are strings. The operands are left on
// the stack (peeked, not popped) across InternString, which allocates and
// so may trigger a collection; only once the interned result exists are the
// operands popped and the result pushed in their place, so they stay rooted
// on the stack for the entire allocation instead of becoming unreachable
// garbage right before the collector might run.
func (v *VM) add() error {
	bIsStr := v.peek(0).IsObjKind(chunk.KindStringObj)
	aIsStr := v.peek(1).IsObjKind(chunk.KindStringObj)
	switch {
	case aIsStr && bIsStr:
		aStr := v.peek(1).AsObj().(*chunk.ObjString).Chars
		bStr := v.peek(0).AsObj().(*chunk.ObjString).Chars
		result := v.heap.InternString(aStr + bStr)
		v.pop()
		v.pop()
		v.push(chunk.FromObj(result))
		return nil
	case v.peek(0).IsNumber() && v.peek(1).IsNumber():
		b, a := v.pop().AsNumber(), v.pop().AsNumber()
		v.push(chunk.Number(a + b))
		return nil
	default:
		return v.runtimeError("Operands must be two numbers or two strings.")
	}
}

package vm

import "github.com/mna/loxvm/lang/chunk"

// call pushes a new call frame for closure, checking its arity and the
// frame-stack depth limit.
func (v *VM) call(closure *chunk.ObjClosure, argc int) error {
	if argc != closure.Function.Arity {
		return v.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
	}
	if len(v.frames) >= v.framesMax {
		return v.runtimeError("Stack overflow.")
	}
	v.frames = append(v.frames, callFrame{
		closure: closure,
		base:    len(v.stack) - argc - 1,
	})
	return nil
}

// callValue dispatches a CALL instruction's callee, which may be a closure,
// a native function, a bound method, or a class (construction).
func (v *VM) callValue(callee chunk.Value, argc int) error {
	if !callee.IsObj() {
		return v.runtimeError("Can only call functions and classes.")
	}
	switch obj := callee.AsObj().(type) {
	case *chunk.ObjClosure:
		return v.call(obj, argc)
	case *chunk.ObjNative:
		args := v.stack[len(v.stack)-argc:]
		result, err := obj.Fn(args)
		if err != nil {
			return v.runtimeError("%s", err.Error())
		}
		v.stack = v.stack[:len(v.stack)-argc-1]
		v.push(result)
		return nil
	case *chunk.ObjClass:
		inst := v.heap.NewInstance(obj)
		v.stack[len(v.stack)-argc-1] = chunk.FromObj(inst)
		if initVal, ok := obj.Methods.Get(v.heap.InitString().Chars); ok {
			return v.call(initVal.AsObj().(*chunk.ObjClosure), argc)
		} else if argc != 0 {
			return v.runtimeError("Expected 0 arguments but got %d.", argc)
		}
		return nil
	case *chunk.ObjBoundMethod:
		v.stack[len(v.stack)-argc-1] = obj.Receiver
		return v.call(obj.Method, argc)
	default:
		return v.runtimeError("Can only call functions and classes.")
	}
}

// invoke resolves name on the instance/class receiver at stack depth argc
// and calls it directly, without first materializing a bound method
// object, per spec.md's INVOKE fast path.
func (v *VM) invoke(name string, argc int) error {
	receiver := v.peek(argc)
	if !receiver.IsObj() {
		return v.runtimeError("Only instances have methods.")
	}
	inst, ok := receiver.AsObj().(*chunk.ObjInstance)
	if !ok {
		return v.runtimeError("Only instances have methods.")
	}

	if field, ok := inst.Fields.Get(name); ok {
		v.stack[len(v.stack)-argc-1] = field
		return v.callValue(field, argc)
	}

	method, ok := inst.Class.Methods.Get(name)
	if !ok {
		return v.runtimeError("Undefined property '%s'.", name)
	}
	return v.call(method.AsObj().(*chunk.ObjClosure), argc)
}

// invokeFromClass resolves name directly on class (used by SUPER_INVOKE,
// which bypasses the receiver's own class to look the method up on its
// superclass instead).
func (v *VM) invokeFromClass(class *chunk.ObjClass, name string, argc int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return v.runtimeError("Undefined property '%s'.", name)
	}
	return v.call(method.AsObj().(*chunk.ObjClosure), argc)
}

// bindMethod looks name up on class, wraps it with receiver into a bound
// method, and replaces the top of the stack (the receiver) with it.
func (v *VM) bindMethod(class *chunk.ObjClass, name string) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return v.runtimeError("Undefined property '%s'.", name)
	}
	bound := v.heap.NewBoundMethod(v.peek(0), method.AsObj().(*chunk.ObjClosure))
	v.pop()
	v.push(chunk.FromObj(bound))
	return nil
}

// captureUpvalue returns the open upvalue for the stack slot at local,
// creating and threading in a new one (in descending-index order) if none
// already exists for that slot.
func (v *VM) captureUpvalue(local int) *chunk.ObjUpvalue {
	var prev *chunk.ObjUpvalue
	uv := v.openUpvalues
	for uv != nil && uv.Slot > local {
		prev = uv
		uv = uv.NextOpen
	}
	if uv != nil && uv.Slot == local {
		return uv
	}

	created := v.heap.NewUpvalue(&v.stack[local])
	created.Slot = local
	created.NextOpen = uv
	if prev == nil {
		v.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue pointing at a stack slot >= last,
// copying its value out of the stack into the upvalue itself so it survives
// the frame being popped.
func (v *VM) closeUpvalues(last int) {
	for v.openUpvalues != nil && v.openUpvalues.Slot >= last {
		uv := v.openUpvalues
		uv.Close()
		v.openUpvalues = uv.NextOpen
	}
}

package compiler

import "github.com/mna/loxvm/lang/chunk"

func (c *Compiler) emitByte(b byte) {
	c.currentChunk().Write(b, c.prev.Line)
}

func (c *Compiler) emitOp(op chunk.Opcode) {
	c.currentChunk().WriteOp(op, c.prev.Line)
}

func (c *Compiler) emitOpByte(op chunk.Opcode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

// emitJump emits op followed by a two-byte placeholder offset and returns
// the index of the placeholder's first byte, for later patchJump.
func (c *Compiler) emitJump(op chunk.Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

// patchJump backfills the placeholder at offset with the distance from just
// past the placeholder to the current code position.
func (c *Compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
		return
	}
	chunk.PatchU16(c.currentChunk().Code, offset, uint16(jump))
}

// emitLoop emits a LOOP instruction that jumps backward to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(chunk.LOOP)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

// makeConstant appends v to the current chunk's constant pool, returning its
// index. If v holds a heap object, it is pushed as a protected root around
// the append so that a GC triggered by some other allocation racing with
// this one (not possible today, but by the same discipline compiler-wide)
// can never collect it before the constant pool holds the only reference.
func (c *Compiler) makeConstant(v chunk.Value) byte {
	if len(c.currentChunk().Constants) >= chunk.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	if v.IsObj() {
		c.heap.PushProtected(v.AsObj())
		defer c.heap.PopProtected(v.AsObj())
	}
	idx := c.currentChunk().AddConstant(v)
	return byte(idx)
}

func (c *Compiler) emitConstant(v chunk.Value) {
	c.emitOpByte(chunk.CONSTANT, c.makeConstant(v))
}

// identifierConstant interns name and stores it as a string constant,
// returning its index. Used for every opcode that names a global, property,
// or method by constant index rather than by stack slot.
func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(chunk.FromObj(c.heap.InternString(name)))
}

// endFunction emits the implicit `nil; return` (`this; return` in an
// initializer) every function body falls into if it runs off the end
// without an explicit return, then pops this
// fnState and returns the finished ObjFunction.
func (c *Compiler) endFunction() *chunk.ObjFunction {
	c.emitReturn()
	fn := c.fn.fn
	c.fn = c.fn.enclosing
	return fn
}

func (c *Compiler) emitReturn() {
	if c.fn.kind == fkInitializer {
		c.emitOpByte(chunk.GET_LOCAL, 0)
	} else {
		c.emitOp(chunk.NIL)
	}
	c.emitOp(chunk.RETURN)
}

package chunk

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of every instruction in c to
// w, labeled with name. It is a read-only observer: it never mutates c.
func Disassemble(w io.Writer, c *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

// DisassembleInstruction writes the single instruction at offset to w and
// returns the offset of the next instruction.
func DisassembleInstruction(w io.Writer, c *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := Opcode(c.Code[offset])
	switch op {
	case NIL, TRUE, FALSE, POP, EQUAL, LESS, GREATER, ADD, SUBTRACT, MULTIPLY,
		DIVIDE, NOT, NEGATE, PRINT, CLOSE_UPVALUE, RETURN, INHERIT:
		return simpleInstruction(w, op, offset)
	case CONSTANT, DEFINE_GLOBAL, GET_GLOBAL, SET_GLOBAL, CLASS, METHOD:
		return constantInstruction(w, op, c, offset)
	case GET_LOCAL, SET_LOCAL, GET_UPVALUE, SET_UPVALUE, CALL:
		return byteInstruction(w, op, c, offset)
	case GET_PROPERTY, SET_PROPERTY, GET_SUPER:
		return constantInstruction(w, op, c, offset)
	case JUMP, JUMP_IF_FALSE:
		return jumpInstruction(w, op, 1, c, offset)
	case LOOP:
		return jumpInstruction(w, op, -1, c, offset)
	case INVOKE, SUPER_INVOKE:
		return invokeInstruction(w, op, c, offset)
	case CLOSURE:
		return closureInstruction(w, c, offset)
	default:
		fmt.Fprintf(w, "unknown opcode %d\n", op)
		return offset + 1
	}
}

func simpleInstruction(w io.Writer, op Opcode, offset int) int {
	fmt.Fprintf(w, "%s\n", op)
	return offset + 1
}

func byteInstruction(w io.Writer, op Opcode, c *Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func constantInstruction(w io.Writer, op Opcode, c *Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, c.Constants[idx].String())
	return offset + 2
}

func jumpInstruction(w io.Writer, op Opcode, sign int, c *Chunk, offset int) int {
	jump := int(ReadU16(c.Code, offset+1))
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

func invokeInstruction(w io.Writer, op Opcode, c *Chunk, offset int) int {
	nameIdx := c.Code[offset+1]
	argc := c.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op, argc, nameIdx, c.Constants[nameIdx].String())
	return offset + 3
}

func closureInstruction(w io.Writer, c *Chunk, offset int) int {
	fnIdx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", CLOSURE, fnIdx, c.Constants[fnIdx].String())
	offset += 2

	fn, _ := c.Constants[fnIdx].AsObj().(*ObjFunction)
	if fn == nil {
		return offset
	}
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := c.Code[offset]
		idx := c.Code[offset+1]
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset, kind, idx)
		offset += 2
	}
	return offset
}

package compiler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/gc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *chunk.ObjFunction {
	t.Helper()
	h := gc.New(1<<30, gc.DefaultGrowFactor)
	fn, err := compiler.Compile(h, src)
	require.NoError(t, err)
	return fn
}

func disasm(fn *chunk.ObjFunction) string {
	var buf bytes.Buffer
	chunk.Disassemble(&buf, fn.Chunk, "test")
	return buf.String()
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	fn := compile(t, `print 1 + 2 * 3;`)
	out := disasm(fn)
	// multiplication must be emitted before the addition it feeds.
	assert.Less(t, strings.Index(out, "multiply"), strings.Index(out, "add"))
}

func TestCompileLocalsUseSlotsNotConstants(t *testing.T) {
	fn := compile(t, `{ var a = 1; print a; }`)
	out := disasm(fn)
	assert.Contains(t, out, "get_local")
	assert.NotContains(t, out, "get_global")
}

func TestCompileGlobalsUseNameConstant(t *testing.T) {
	fn := compile(t, `var a = 1; print a;`)
	out := disasm(fn)
	assert.Contains(t, out, "define_global")
	assert.Contains(t, out, "get_global")
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	fn := compile(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	out := disasm(fn)
	assert.Contains(t, out, "closure")

	// outer's own CLOSURE for inner must capture outer's local slot 1 (x).
	var outer *chunk.ObjFunction
	for _, k := range fn.Chunk.Constants {
		if f, ok := k.AsObj().(*chunk.ObjFunction); ok {
			outer = f
		}
	}
	require.NotNil(t, outer)
	assert.Contains(t, disasm(outer), "local 1")
}

func TestCompileClassEmitsMethodAndInherit(t *testing.T) {
	fn := compile(t, `
		class Base { greet() { return "hi"; } }
		class Sub < Base {}
	`)
	out := disasm(fn)
	assert.Contains(t, out, "class")
	assert.Contains(t, out, "method")
	assert.Contains(t, out, "inherit")
}

func TestCompileBreakAndContinueJumpsAreBackpatched(t *testing.T) {
	// a hanging OP_JUMP with an unpatched 0xffff offset would indicate a
	// forgotten backpatch; just assert the program compiles and contains
	// both loop exit and loop jump instructions.
	fn := compile(t, `
		for (var i = 0; i < 3; i = i + 1) {
			if (i == 1) continue;
			if (i == 2) break;
		}
	`)
	out := disasm(fn)
	assert.Contains(t, out, "jump")
	assert.Contains(t, out, "loop")
}

func TestCompileErrorsReportLine(t *testing.T) {
	h := gc.New(1<<30, gc.DefaultGrowFactor)
	_, err := compiler.Compile(h, "var ;\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[line 1]")
}

func TestCompileSynchronizeRecoversAfterError(t *testing.T) {
	// the first statement is malformed; the second is valid. A single-pass
	// compiler without error recovery would report a cascade of spurious
	// errors past the first one; synchronize() should limit it to one.
	h := gc.New(1<<30, gc.DefaultGrowFactor)
	_, err := compiler.Compile(h, "var ;\nprint 1;\n")
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(err.Error(), "[line"))
}

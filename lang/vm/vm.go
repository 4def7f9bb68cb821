// Package vm implements the stack-based bytecode interpreter: a fixed-size
// value stack, a bounded call-frame stack, a globals table, and the open
// upvalue list the closure machinery threads through both. It is the
// "Virtual machine" component, grounded in overall shape on
// _examples/other_examples/9abc9064_xirelogy-go-flux__internal-vm-vm.go.go's
// VM/frame/Run split, adapted to the tagged Value and heap-object model of
// lang/chunk and the GC discipline of lang/gc.
package vm

import (
	"fmt"
	"io"
	"time"

	"github.com/mna/loxvm/internal/config"
	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/gc"
	"github.com/mna/loxvm/lang/htable"
)

const (
	// DefaultStackMax matches clox's FRAMES_MAX * UINT8_COUNT: generous enough
	// that DefaultFramesMax call frames, each with up to 256 locals, never
	// forces the stack slice to grow past its preallocated capacity. Growing
	// it would reallocate the backing array and invalidate every open
	// upvalue's Location pointer into it.
	DefaultStackMax  = 256 * 256
	DefaultFramesMax = 256
)

type callFrame struct {
	closure *chunk.ObjClosure
	ip      int
	base    int // index into vm.stack of this frame's slot 0
}

// VM owns one program's runtime state: the value stack, call frames,
// globals, and the heap it allocates from. Create one with New per program
// run; it is not safe to reuse across unrelated programs because globals
// and the heap accumulate state.
type VM struct {
	heap *gc.Heap

	stack   []chunk.Value
	frames  []callFrame
	globals *htable.Table[chunk.Value]

	openUpvalues *chunk.ObjUpvalue // sorted by descending stack index

	stackMax  int
	framesMax int

	Stdout io.Writer
	Stderr io.Writer

	// Trace, when set, makes run print the operand stack and the next
	// instruction to Stderr before executing it, the Go equivalent of clox's
	// compile-time DEBUG_TRACE_EXECUTION switch.
	Trace bool
}

// New returns a VM ready to Interpret programs, with its own heap and
// string-intern table. stackMax and framesMax of 0 fall back to the
// defaults above.
func New(stackMax, framesMax int) *VM {
	return newVM(stackMax, framesMax, 1024*1024, gc.DefaultGrowFactor, false, nil)
}

// NewFromConfig builds a VM honoring every knob in cfg, wiring its GC stress
// and log switches straight through to the heap.
func NewFromConfig(cfg config.VM, log io.Writer) *VM {
	var gcLog io.Writer
	if cfg.GCLog {
		gcLog = log
	}
	v := newVM(cfg.StackMax, cfg.FramesMax, cfg.GCInitialThreshold, cfg.GCGrowFactor, cfg.GCStress, gcLog)
	v.Trace = cfg.TraceExecution
	return v
}

func newVM(stackMax, framesMax int, gcThreshold, gcGrowFactor int64, gcStress bool, gcLog io.Writer) *VM {
	if stackMax <= 0 {
		stackMax = DefaultStackMax
	}
	if framesMax <= 0 {
		framesMax = DefaultFramesMax
	}
	v := &VM{
		heap:      gc.New(gcThreshold, gcGrowFactor),
		globals:   htable.New[chunk.Value](64),
		stack:     make([]chunk.Value, 0, stackMax),
		stackMax:  stackMax,
		framesMax: framesMax,
		Stdout:    io.Discard,
		Stderr:    io.Discard,
	}
	v.heap.Stress = gcStress
	v.heap.Log = gcLog
	v.heap.AddRootSource(v)
	v.defineNatives()
	return v
}

// Heap exposes the VM's heap so a caller (typically the compiler driving a
// single combined run) can allocate interned constants with the same heap
// the VM will later trace.
func (v *VM) Heap() *gc.Heap { return v.heap }

// DefineGlobal binds name to value directly, bypassing the DEFINE_GLOBAL
// opcode. Used to install natives and, in tests, fixture globals.
func (v *VM) DefineGlobal(name string, value chunk.Value) {
	v.globals.Set(name, value)
}

func (v *VM) defineNatives() {
	v.DefineGlobal("clock", chunk.FromObj(v.heap.NewNative("clock", func(args []chunk.Value) (chunk.Value, error) {
		return chunk.Number(float64(time.Now().UnixNano()) / 1e9), nil
	})))
}

// Interpret compiles and runs source to completion, printing via PRINT
// statements to v.Stdout. It returns a *RuntimeError for a runtime fault,
// or a plain error for a compile fault (see lang/compiler.Compile).
func (v *VM) Interpret(source string, compile func(*gc.Heap, string) (*chunk.ObjFunction, error)) error {
	fn, err := compile(v.heap, source)
	if err != nil {
		return err
	}

	v.stack = v.stack[:0]
	v.frames = v.frames[:0]
	v.openUpvalues = nil

	closure := v.heap.NewClosure(fn)
	v.push(chunk.FromObj(closure))
	if err := v.call(closure, 0); err != nil {
		return err
	}
	return v.run()
}

// --- stack management ---

// stackOverflow is panicked by push when the stack slice would have to grow
// past its preallocated capacity, and recovered in run(). A silent
// reallocation there would move the backing array and leave every open
// upvalue's Location dangling into the old one.
type stackOverflow struct{}

func (v *VM) push(val chunk.Value) {
	if len(v.stack) == cap(v.stack) {
		panic(stackOverflow{})
	}
	v.stack = append(v.stack, val)
}

func (v *VM) pop() chunk.Value {
	n := len(v.stack) - 1
	val := v.stack[n]
	v.stack = v.stack[:n]
	return val
}

func (v *VM) peek(distance int) chunk.Value {
	return v.stack[len(v.stack)-1-distance]
}

// MarkRoots implements gc.RootSource: every live value on the operand
// stack, every closure and its captured cells referenced by an active call
// frame, every open upvalue, and every global is a root.
func (v *VM) MarkRoots(mark func(chunk.Value)) {
	for _, val := range v.stack {
		mark(val)
	}
	for _, fr := range v.frames {
		mark(chunk.FromObj(fr.closure))
	}
	for uv := v.openUpvalues; uv != nil; uv = uv.NextOpen {
		mark(chunk.FromObj(uv))
	}
	v.globals.Each(func(_ string, val chunk.Value) bool {
		mark(val)
		return true
	})
}

// RuntimeError is returned by Interpret when a fault occurs while running
// (as opposed to compiling) the program. It carries the formatted message
// together with a frame-by-frame trace, innermost first, matching clox's
// runtimeError stack unwind.
type RuntimeError struct {
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string {
	s := e.Message
	for _, line := range e.Trace {
		s += "\n" + line
	}
	return s
}

func (v *VM) runtimeError(format string, args ...interface{}) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	trace := make([]string, 0, len(v.frames))
	for i := len(v.frames) - 1; i >= 0; i-- {
		fr := v.frames[i]
		fn := fr.closure.Function
		line := fn.Chunk.Lines[fr.ip-1]
		name := "<script>"
		if fn.Name != nil {
			name = fn.Name.Chars + "()"
		}
		trace = append(trace, fmt.Sprintf("[line %d] in %s", line, name))
	}
	return &RuntimeError{Message: msg, Trace: trace}
}

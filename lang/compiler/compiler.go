// Package compiler implements a single-pass Pratt parser that emits bytecode
// directly into a lang/chunk.Chunk as it parses: there is no intermediate
// AST. It is the "Compiler" component, grounded in shape on
// _examples/other_examples/e90b07c6_estevaofon-noxy__internal-compiler-compiler.go.go's
// Local/Loop bookkeeping and makeConstant/emitByte naming, adapted from a
// tree-walking compile(ast.Node) shape to a recursive-descent one driven
// directly off the token stream.
package compiler

import (
	"fmt"

	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/gc"
	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
)

const maxLocals = 256
const maxUpvalues = 256
const maxParams = 255

// funcKind distinguishes the handful of function-compilation contexts that
// need slightly different prologues (an implicit "this" slot 0 for methods;
// for initializers, an implicit return of "this" and a compile error on
// returning a value).
type funcKind uint8

const (
	fkScript funcKind = iota
	fkFunction
	fkMethod
	fkInitializer
)

type local struct {
	name       string
	depth      int // -1 while uninitialized
	isCaptured bool
}

type upvalueRef struct {
	index   uint8
	isLocal bool
}

type loop struct {
	start       int
	scopeDepth  int
	breaks      []int // indices of JUMP placeholders to patch to loop exit
	continues   []int // indices of JUMP placeholders to patch to the loop's increment/condition
	continuePos int    // not read or set: every continue is a forward JUMP recorded in continues
}

// classState tracks nested class-body compilation, needed to validate `this`
// and `super` and to know whether the enclosing class has a superclass.
type classState struct {
	enclosing   *classState
	hasSuperclass bool
}

// fnState is the per-function compiler: one is pushed per fun/method body
// and per top-level script, mirroring call-frame nesting at compile time.
type fnState struct {
	enclosing *fnState

	fn   *chunk.ObjFunction
	kind funcKind

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int

	loops []*loop
}

// Compiler holds the whole-parse state: the token stream, the current
// function being compiled, and the current class nesting (if any). A
// Compiler instance is single-use: create one per call to Compile.
type Compiler struct {
	heap *gc.Heap
	scan *scanner.Scanner

	prev, cur token.Token
	hadError  bool
	panicking bool
	errs      []error

	fn    *fnState
	class *classState
}

// Compile parses source in its entirety and, on success, returns the
// top-level script as an ObjFunction whose Chunk contains the compiled
// program; its implicit name is nil and its arity is 0. On failure, it
// returns every syntax error accumulated via panic-mode recovery, joined one
// per line (see joinErrors).
func Compile(heap *gc.Heap, source string) (*chunk.ObjFunction, error) {
	var sc scanner.Scanner
	sc.Init(source)

	c := &Compiler{heap: heap, scan: &sc}
	c.fn = &fnState{kind: fkScript, fn: heap.NewFunction()}
	c.fn.locals = append(c.fn.locals, local{name: "", depth: 0})

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endFunction()

	if c.hadError {
		return nil, joinErrors(c.errs)
	}
	return fn, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := ""
	for i, e := range errs {
		if i > 0 {
			msg += "\n"
		}
		msg += e.Error()
	}
	return fmt.Errorf("%s", msg)
}

func (c *Compiler) currentChunk() *chunk.Chunk { return c.fn.fn.Chunk }

// --- token stream plumbing ---

func (c *Compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.scan.Scan()
		if c.cur.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.cur.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.cur.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.cur.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.cur, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.prev, msg) }

func (c *Compiler) errorAt(t token.Token, msg string) {
	if c.panicking {
		return
	}
	c.panicking = true
	c.hadError = true
	where := ""
	switch t.Kind {
	case token.EOF:
		where = " at end"
	case token.ILLEGAL:
	default:
		where = fmt.Sprintf(" at '%s'", t.Lexeme)
	}
	c.errs = append(c.errs, fmt.Errorf("[line %d] error%s: %s", t.Line, where, msg))
}

// synchronize discards tokens after a parse error until it reaches a
// plausible statement boundary, so a single syntax error does not cascade
// into a wall of spurious follow-on errors.
func (c *Compiler) synchronize() {
	c.panicking = false
	for c.cur.Kind != token.EOF {
		if c.prev.Kind == token.SEMI {
			return
		}
		switch c.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

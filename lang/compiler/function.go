package compiler

import (
	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/token"
)

func (c *Compiler) funDecl() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(fkFunction, c.prev.Lexeme)
	c.defineVariable(global)
}

// function compiles a fun body (or method body) into its own ObjFunction,
// pushing a fresh fnState as the current compiler target and emitting a
// CLOSURE instruction (plus its upvalue capture descriptors) into the
// enclosing function once done.
func (c *Compiler) function(kind funcKind, name string) {
	enclosing := c.fn
	c.fn = &fnState{enclosing: enclosing, kind: kind, fn: c.heap.NewFunction()}
	c.fn.fn.Name = c.heap.InternString(name)

	slot0 := ""
	if kind == fkMethod || kind == fkInitializer {
		slot0 = "this"
	}
	c.fn.locals = append(c.fn.locals, local{name: slot0, depth: 0})

	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.fn.fn.Arity++
			if c.fn.fn.Arity > maxParams {
				c.error("Can't have more than 255 parameters.")
			}
			constant := c.parseVariable("Expect parameter name.")
			c.defineVariable(constant)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	upvalues := c.fn.upvalues
	fn := c.endFunction()

	idx := c.makeConstant(chunk.FromObj(fn))
	c.emitOp(chunk.CLOSURE)
	c.emitByte(idx)
	for _, u := range upvalues {
		if u.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(u.index)
	}
}

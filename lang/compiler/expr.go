package compiler

import (
	"strconv"

	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/token"
)

func (c *Compiler) number(canAssign bool) {
	n, err := strconv.ParseFloat(c.prev.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(chunk.Number(n))
}

func (c *Compiler) stringLit(canAssign bool) {
	// Lexeme includes the surrounding quotes; the scanner does not unescape.
	raw := c.prev.Lexeme
	s := raw[1 : len(raw)-1]
	str := c.heap.InternString(s)
	c.emitConstant(chunk.FromObj(str))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.prev.Kind {
	case token.FALSE:
		c.emitOp(chunk.FALSE)
	case token.TRUE:
		c.emitOp(chunk.TRUE)
	case token.NIL:
		c.emitOp(chunk.NIL)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	op := c.prev.Kind
	c.parsePrecedence(precUnary)
	switch op {
	case token.MINUS:
		c.emitOp(chunk.NEGATE)
	case token.BANG:
		c.emitOp(chunk.NOT)
	}
}

func (c *Compiler) binary(canAssign bool) {
	op := c.prev.Kind
	r := rule(op)
	c.parsePrecedence(r.precedence + 1)
	switch op {
	case token.BANG_EQ:
		c.emitOp(chunk.EQUAL)
		c.emitOp(chunk.NOT)
	case token.EQ_EQ:
		c.emitOp(chunk.EQUAL)
	case token.GT:
		c.emitOp(chunk.GREATER)
	case token.GT_EQ:
		c.emitOp(chunk.LESS)
		c.emitOp(chunk.NOT)
	case token.LT:
		c.emitOp(chunk.LESS)
	case token.LT_EQ:
		c.emitOp(chunk.GREATER)
		c.emitOp(chunk.NOT)
	case token.PLUS:
		c.emitOp(chunk.ADD)
	case token.MINUS:
		c.emitOp(chunk.SUBTRACT)
	case token.STAR:
		c.emitOp(chunk.MULTIPLY)
	case token.SLASH:
		c.emitOp(chunk.DIVIDE)
	}
}

// and/or short-circuit: both leave their operand's value on the stack when
// it determines the result, only evaluating the right side otherwise.
func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(chunk.JUMP_IF_FALSE)
	c.emitOp(chunk.POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(chunk.JUMP_IF_FALSE)
	endJump := c.emitJump(chunk.JUMP)
	c.patchJump(elseJump)
	c.emitOp(chunk.POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(canAssign bool) {
	argc := c.argumentList()
	c.emitOpByte(chunk.CALL, argc)
}

func (c *Compiler) argumentList() byte {
	var argc int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argc == maxParams {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(argc)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.identifierConstant(c.prev.Lexeme)

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOpByte(chunk.SET_PROPERTY, name)
	case c.match(token.LPAREN):
		argc := c.argumentList()
		c.emitOp(chunk.INVOKE)
		c.emitByte(name)
		c.emitByte(argc)
	default:
		c.emitOpByte(chunk.GET_PROPERTY, name)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.prev.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp chunk.Opcode
	arg := c.resolveLocal(c.fn, name)
	if arg != -1 {
		getOp, setOp = chunk.GET_LOCAL, chunk.SET_LOCAL
	} else if arg = c.resolveUpvalue(c.fn, name); arg != -1 {
		getOp, setOp = chunk.GET_UPVALUE, chunk.SET_UPVALUE
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = chunk.GET_GLOBAL, chunk.SET_GLOBAL
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

func (c *Compiler) this(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}
	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENT, "Expect superclass method name.")
	name := c.identifierConstant(c.prev.Lexeme)

	c.namedVariableRaw("this")
	if c.match(token.LPAREN) {
		argc := c.argumentList()
		c.namedVariableRaw("super")
		c.emitOp(chunk.SUPER_INVOKE)
		c.emitByte(name)
		c.emitByte(argc)
	} else {
		c.namedVariableRaw("super")
		c.emitOpByte(chunk.GET_SUPER, name)
	}
}

// namedVariableRaw emits only the get-side of namedVariable, for pseudo
// variables like "this" and "super" that parsePrecedence never sees
// directly as a token.
func (c *Compiler) namedVariableRaw(name string) {
	var getOp chunk.Opcode
	arg := c.resolveLocal(c.fn, name)
	if arg != -1 {
		getOp = chunk.GET_LOCAL
	} else if arg = c.resolveUpvalue(c.fn, name); arg != -1 {
		getOp = chunk.GET_UPVALUE
	} else {
		arg = int(c.identifierConstant(name))
		getOp = chunk.GET_GLOBAL
	}
	c.emitOpByte(getOp, byte(arg))
}

package compiler

import (
	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/token"
)

func (c *Compiler) classDecl() {
	c.consume(token.IDENT, "Expect class name.")
	className := c.prev.Lexeme
	nameConstant := c.identifierConstant(className)
	c.declareVariable(className)

	c.emitOpByte(chunk.CLASS, nameConstant)
	c.defineVariable(nameConstant)

	c.class = &classState{enclosing: c.class}
	defer func() { c.class = c.class.enclosing }()

	if c.match(token.LT) {
		c.consume(token.IDENT, "Expect superclass name.")
		c.variable(false)
		if c.prev.Lexeme == className {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal("super")
		c.markInitialized()

		c.namedVariableRaw(className)
		c.emitOp(chunk.INHERIT)
		c.class.hasSuperclass = true
	}

	c.namedVariableRaw(className)
	c.consume(token.LBRACE, "Expect '{' before class body.")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "Expect '}' after class body.")
	c.emitOp(chunk.POP) // pop the class itself, pushed by namedVariableRaw above

	if c.class.hasSuperclass {
		c.endScope()
	}
}

func (c *Compiler) method() {
	c.consume(token.IDENT, "Expect method name.")
	name := c.prev.Lexeme
	nameConstant := c.identifierConstant(name)

	kind := fkMethod
	if name == "init" {
		kind = fkInitializer
	}
	c.function(kind, name)
	c.emitOpByte(chunk.METHOD, nameConstant)
}

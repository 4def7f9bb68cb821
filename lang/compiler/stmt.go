package compiler

import (
	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/token"
)

func (c *Compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDecl()
	case c.match(token.FUN):
		c.funDecl()
	case c.match(token.VAR):
		c.varDecl()
	default:
		c.statement()
	}
	if c.panicking {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStmt()
	case c.match(token.IF):
		c.ifStmt()
	case c.match(token.RETURN):
		c.returnStmt()
	case c.match(token.WHILE):
		c.whileStmt()
	case c.match(token.FOR):
		c.forStmt()
	case c.match(token.BREAK):
		c.breakStmt()
	case c.match(token.CONTINUE):
		c.continueStmt()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStmt()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) printStmt() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after value.")
	c.emitOp(chunk.PRINT)
}

func (c *Compiler) expressionStmt() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after expression.")
	c.emitOp(chunk.POP)
}

func (c *Compiler) varDecl() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(chunk.NIL)
	}
	c.consume(token.SEMI, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

// parseVariable consumes the variable's name, declaring it as a local if
// inside a scope, and returns the constant-pool index to later pass to
// defineVariable for a global (unused, but returned for uniformity, when
// local).
func (c *Compiler) parseVariable(msg string) byte {
	c.consume(token.IDENT, msg)
	c.declareVariable(c.prev.Lexeme)
	if c.fn.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.prev.Lexeme)
}

func (c *Compiler) defineVariable(global byte) {
	if c.fn.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(chunk.DEFINE_GLOBAL, global)
}

func (c *Compiler) ifStmt() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(chunk.JUMP_IF_FALSE)
	c.emitOp(chunk.POP)
	c.statement()

	elseJump := c.emitJump(chunk.JUMP)
	c.patchJump(thenJump)
	c.emitOp(chunk.POP)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) returnStmt() {
	if c.fn.kind == fkScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMI) {
		c.emitReturn()
		return
	}
	if c.fn.kind == fkInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMI, "Expect ';' after return value.")
	c.emitOp(chunk.RETURN)
}

// --- loops: break/continue ---

func (c *Compiler) pushLoop(start int) *loop {
	l := &loop{start: start, scopeDepth: c.fn.scopeDepth}
	c.fn.loops = append(c.fn.loops, l)
	return l
}

func (c *Compiler) popLoop() {
	c.fn.loops = c.fn.loops[:len(c.fn.loops)-1]
}

func (c *Compiler) currentLoop() *loop {
	if len(c.fn.loops) == 0 {
		return nil
	}
	return c.fn.loops[len(c.fn.loops)-1]
}

// closeLoopLocals emits, without touching scope bookkeeping, the same
// per-local CLOSE_UPVALUE-or-POP cleanup as endScope for every local
// declared since the loop's own scope depth, so a break/continue jump can
// leave the loop's block scope correctly regardless of how many nested
// scopes it jumps out of, without leaving a captured local's upvalue open
// over a stack slot that's about to be reused.
func (c *Compiler) closeLoopLocals(l *loop) {
	for i := len(c.fn.locals) - 1; i >= 0 && c.fn.locals[i].depth > l.scopeDepth; i-- {
		if c.fn.locals[i].isCaptured {
			c.emitOp(chunk.CLOSE_UPVALUE)
		} else {
			c.emitOp(chunk.POP)
		}
	}
}

func (c *Compiler) breakStmt() {
	l := c.currentLoop()
	if l == nil {
		c.error("Can't use 'break' outside of a loop.")
		c.consume(token.SEMI, "Expect ';' after 'break'.")
		return
	}
	c.closeLoopLocals(l)
	l.breaks = append(l.breaks, c.emitJump(chunk.JUMP))
	c.consume(token.SEMI, "Expect ';' after 'break'.")
}

func (c *Compiler) continueStmt() {
	l := c.currentLoop()
	if l == nil {
		c.error("Can't use 'continue' outside of a loop.")
		c.consume(token.SEMI, "Expect ';' after 'continue'.")
		return
	}
	c.closeLoopLocals(l)
	l.continues = append(l.continues, c.emitJump(chunk.JUMP))
	c.consume(token.SEMI, "Expect ';' after 'continue'.")
}

func (c *Compiler) whileStmt() {
	loopStart := len(c.currentChunk().Code)
	l := c.pushLoop(loopStart)

	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(chunk.JUMP_IF_FALSE)
	c.emitOp(chunk.POP)
	c.statement()

	// continue jumps straight back to the condition re-check.
	for _, j := range l.continues {
		c.patchJump(j)
	}
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(chunk.POP)
	for _, j := range l.breaks {
		c.patchJump(j)
	}
	c.popLoop()
}

func (c *Compiler) forStmt() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMI):
		// no initializer
	case c.match(token.VAR):
		c.varDecl()
	default:
		c.expressionStmt()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !c.check(token.SEMI) {
		c.expression()
		c.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = c.emitJump(chunk.JUMP_IF_FALSE)
		c.emitOp(chunk.POP)
	} else {
		c.advance()
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(chunk.JUMP)
		incrStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(chunk.POP)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(bodyJump)
	} else {
		c.advance()
	}

	l := c.pushLoop(loopStart)
	c.statement()

	// continue jumps to the increment clause (or condition, if there is no
	// increment) rather than to the very top of the loop.
	for _, j := range l.continues {
		c.patchJump(j)
	}
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(chunk.POP)
	}
	for _, j := range l.breaks {
		c.patchJump(j)
	}
	c.popLoop()
	c.endScope()
}

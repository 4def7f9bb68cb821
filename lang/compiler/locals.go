package compiler

import "github.com/mna/loxvm/lang/chunk"

func (c *Compiler) beginScope() { c.fn.scopeDepth++ }

// endScope closes the current block scope, popping every local declared in
// it off the value stack (or closing it into an upvalue first, if a nested
// closure captured it) and returning to the enclosing depth.
func (c *Compiler) endScope() {
	c.fn.scopeDepth--
	locals := c.fn.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > c.fn.scopeDepth {
		if locals[len(locals)-1].isCaptured {
			c.emitOp(chunk.CLOSE_UPVALUE)
		} else {
			c.emitOp(chunk.POP)
		}
		locals = locals[:len(locals)-1]
	}
	c.fn.locals = locals
}

// declareVariable registers name as a new local in the current scope (a
// no-op at global scope, where variables are resolved dynamically by name).
// It rejects a second declaration of the same name in the same scope.
func (c *Compiler) declareVariable(name string) {
	if c.fn.scopeDepth == 0 {
		return
	}
	for i := len(c.fn.locals) - 1; i >= 0; i-- {
		l := c.fn.locals[i]
		if l.depth != -1 && l.depth < c.fn.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.fn.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.fn.locals = append(c.fn.locals, local{name: name, depth: -1})
}

// markInitialized promotes the most recently declared local from
// uninitialized (depth -1) to its enclosing scope's real depth, so a
// later reference to it in its own initializer is rejected by resolveLocal
// but references after it succeed. At global scope, it is a no-op: there is
// no local slot 0 to patch.
func (c *Compiler) markInitialized() {
	if c.fn.scopeDepth == 0 {
		return
	}
	c.fn.locals[len(c.fn.locals)-1].depth = c.fn.scopeDepth
}

// resolveLocal returns the stack slot of the innermost local named name
// visible in fn, or -1 if none. Referencing a local still mid-initializer
// (own-name self-reference, e.g. `var a = a;`) is a compile error.
func (c *Compiler) resolveLocal(fn *fnState, name string) int {
	for i := len(fn.locals) - 1; i >= 0; i-- {
		if fn.locals[i].name == name {
			if fn.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue resolves name as a captured variable of some enclosing
// function, recursing outward and threading an upvalue chain through every
// intermediate function so each frame only ever reaches one level up.
// Duplicate captures of the same slot collapse to a single upvalue index,
// mirroring clox's addUpvalue dedup.
func (c *Compiler) resolveUpvalue(fn *fnState, name string) int {
	if fn.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(fn.enclosing, name); local != -1 {
		fn.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(fn, uint8(local), true)
	}
	if up := c.resolveUpvalue(fn.enclosing, name); up != -1 {
		return c.addUpvalue(fn, uint8(up), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(fn *fnState, index uint8, isLocal bool) int {
	for i, u := range fn.upvalues {
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	if len(fn.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fn.upvalues = append(fn.upvalues, upvalueRef{index: index, isLocal: isLocal})
	fn.fn.UpvalueCount = len(fn.upvalues)
	return len(fn.upvalues) - 1
}

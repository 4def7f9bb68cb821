package compiler

import "github.com/mna/loxvm/lang/token"

// precedence orders binary operators from loosest- to tightest-binding;
// parsePrecedence consumes every infix operator whose rule's precedence is
// at least as tight as the level passed in.
type precedence uint8

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules [64]parseRule

func rule(k token.Kind) parseRule { return rules[k] }

func init() {
	rules[token.LPAREN] = parseRule{prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall}
	rules[token.DOT] = parseRule{infix: (*Compiler).dot, precedence: precCall}
	rules[token.MINUS] = parseRule{prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm}
	rules[token.PLUS] = parseRule{infix: (*Compiler).binary, precedence: precTerm}
	rules[token.SLASH] = parseRule{infix: (*Compiler).binary, precedence: precFactor}
	rules[token.STAR] = parseRule{infix: (*Compiler).binary, precedence: precFactor}
	rules[token.BANG] = parseRule{prefix: (*Compiler).unary}
	rules[token.BANG_EQ] = parseRule{infix: (*Compiler).binary, precedence: precEquality}
	rules[token.EQ_EQ] = parseRule{infix: (*Compiler).binary, precedence: precEquality}
	rules[token.GT] = parseRule{infix: (*Compiler).binary, precedence: precComparison}
	rules[token.GT_EQ] = parseRule{infix: (*Compiler).binary, precedence: precComparison}
	rules[token.LT] = parseRule{infix: (*Compiler).binary, precedence: precComparison}
	rules[token.LT_EQ] = parseRule{infix: (*Compiler).binary, precedence: precComparison}
	rules[token.IDENT] = parseRule{prefix: (*Compiler).variable}
	rules[token.STRING] = parseRule{prefix: (*Compiler).stringLit}
	rules[token.NUMBER] = parseRule{prefix: (*Compiler).number}
	rules[token.AND] = parseRule{infix: (*Compiler).and, precedence: precAnd}
	rules[token.OR] = parseRule{infix: (*Compiler).or, precedence: precOr}
	rules[token.FALSE] = parseRule{prefix: (*Compiler).literal}
	rules[token.TRUE] = parseRule{prefix: (*Compiler).literal}
	rules[token.NIL] = parseRule{prefix: (*Compiler).literal}
	rules[token.THIS] = parseRule{prefix: (*Compiler).this}
	rules[token.SUPER] = parseRule{prefix: (*Compiler).super}
}

func (c *Compiler) parsePrecedence(p precedence) {
	c.advance()
	prefix := rule(c.prev.Kind).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := p <= precAssignment
	prefix(c, canAssign)

	for p <= rule(c.cur.Kind).precedence {
		c.advance()
		infix := rule(c.prev.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

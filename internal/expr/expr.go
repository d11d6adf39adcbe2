// Package expr compiles and evaluates conditional-format conditions such as
// "value > 50 and value < 80". The grammar is deliberately tiny: numeric
// comparisons over the single variable value, joined by and/or, with
// parentheses. Nothing else is accepted.
package expr

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnsafeExpression    = errors.New("unsafe expression")
	ErrMalformedExpression = errors.New("malformed expression")
)

// Error describes why an expression was rejected. Pos is a byte offset.
type Error struct {
	Expr string
	Pos  int
	Msg  string
	Kind error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s at offset %d in %q", e.Kind, e.Msg, e.Pos, e.Expr)
}

func (e *Error) Unwrap() error { return e.Kind }

func unsafe(src string, pos int, format string, args ...any) error {
	return &Error{Expr: src, Pos: pos, Msg: fmt.Sprintf(format, args...), Kind: ErrUnsafeExpression}
}

func malformed(src string, pos int, format string, args ...any) error {
	return &Error{Expr: src, Pos: pos, Msg: fmt.Sprintf(format, args...), Kind: ErrMalformedExpression}
}

// Expr is a compiled condition. It is immutable and safe for concurrent use.
type Expr struct {
	src  string
	root node
}

// Compile parses src into a reusable condition.
func Compile(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		if tok.kind == tokRParen {
			return nil, malformed(src, tok.pos, "unbalanced )")
		}
		return nil, malformed(src, tok.pos, "unexpected %s", tok.kind)
	}
	if err := p.requireBool(root, 0); err != nil {
		return nil, err
	}
	return &Expr{src: src, root: root}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Evaluate compiles src and evaluates it against value in one step.
func Evaluate(src string, value float64) (bool, error) {
	e, err := Compile(src)
	if err != nil {
		return false, err
	}
	return e.Eval(value), nil
}

// Eval reports whether the condition holds for value. A NaN value makes
// every comparison false.
func (e *Expr) Eval(value float64) bool {
	return e.root.(boolNode).eval(value)
}

func (e *Expr) String() string { return e.src }

type node interface{ isNode() }

type boolNode interface {
	node
	eval(v float64) bool
}

type operand interface {
	node
	get(v float64) float64
}

type numberNode struct{ v float64 }
type valueNode struct{}

type compareNode struct {
	operands []operand
	ops      []string
}

type andNode struct{ terms []boolNode }
type orNode struct{ terms []boolNode }

func (numberNode) isNode() {}
func (valueNode) isNode() {}
func (compareNode) isNode() {}
func (andNode) isNode() {}
func (orNode) isNode() {}

func (n numberNode) get(float64) float64 { return n.v }
func (valueNode) get(v float64) float64 { return v }

func (n compareNode) eval(v float64) bool {
	for i, op := range n.ops {
		if !compare(n.operands[i].get(v), op, n.operands[i+1].get(v)) {
			return false
		}
	}
	return true
}

func (n andNode) eval(v float64) bool {
	for _, t := range n.terms {
		if !t.eval(v) {
			return false
		}
	}
	return true
}

func (n orNode) eval(v float64) bool {
	for _, t := range n.terms {
		if t.eval(v) {
			return true
		}
	}
	return false
}

func compare(a float64, op string, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "==":
		return a == b
	case "!=":
		return a != b
	}
	return false
}

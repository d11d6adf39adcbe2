package expr

type parser struct {
	src  string
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

// parseOr: and ( "or" and )*
func (p *parser) parseOr() (node, error) {
	start := p.peek().pos
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokOr {
		return first, nil
	}
	if err := p.requireBool(first, start); err != nil {
		return nil, err
	}
	terms := []boolNode{first.(boolNode)}
	for p.peek().kind == tokOr {
		p.next()
		pos := p.peek().pos
		n, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		if err := p.requireBool(n, pos); err != nil {
			return nil, err
		}
		terms = append(terms, n.(boolNode))
	}
	return orNode{terms: terms}, nil
}

// parseAnd: comparison ( "and" comparison )*
func (p *parser) parseAnd() (node, error) {
	start := p.peek().pos
	first, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokAnd {
		return first, nil
	}
	if err := p.requireBool(first, start); err != nil {
		return nil, err
	}
	terms := []boolNode{first.(boolNode)}
	for p.peek().kind == tokAnd {
		p.next()
		pos := p.peek().pos
		n, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if err := p.requireBool(n, pos); err != nil {
			return nil, err
		}
		terms = append(terms, n.(boolNode))
	}
	return andNode{terms: terms}, nil
}

// parseComparison: primary ( op primary )*, where chained operands must
// all be numeric ("50 < value < 80").
func (p *parser) parseComparison() (node, error) {
	start := p.peek().pos
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokCmp {
		return first, nil
	}
	left, ok := first.(operand)
	if !ok {
		return nil, malformed(p.src, start, "comparison of a condition")
	}
	cmp := compareNode{operands: []operand{left}}
	for p.peek().kind == tokCmp {
		op := p.next()
		pos := p.peek().pos
		n, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		right, ok := n.(operand)
		if !ok {
			return nil, malformed(p.src, pos, "comparison of a condition")
		}
		cmp.ops = append(cmp.ops, op.text)
		cmp.operands = append(cmp.operands, right)
	}
	return cmp, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return numberNode{v: tok.num}, nil
	case tokValue:
		return valueNode{}, nil
	case tokLParen:
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, malformed(p.src, closing.pos, "expected ) to close ( at offset %d", tok.pos)
		}
		return n, nil
	case tokEOF:
		return nil, malformed(p.src, tok.pos, "unexpected end of expression")
	}
	return nil, malformed(p.src, tok.pos, "unexpected %s", tok.kind)
}

func (p *parser) requireBool(n node, pos int) error {
	if _, ok := n.(boolNode); !ok {
		return malformed(p.src, pos, "operand is not a comparison")
	}
	return nil
}

package expr

import (
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokValue
	tokAnd
	tokOr
	tokCmp
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "number"
	case tokValue:
		return "value"
	case tokAnd:
		return "and"
	case tokOr:
		return "or"
	case tokCmp:
		return "comparison"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	}
	return "token"
}

type token struct {
	kind tokenKind
	pos  int
	text string
	num  float64
}

// lex tokenizes src in full before any parsing, so anything outside the
// permitted alphabet is reported as unsafe even if the expression is also
// syntactically broken.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			tok, n, err := lexNumber(src, i, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = n

		case c == '+' || c == '-':
			// A sign folds into the literal that follows it; anywhere else
			// it would be arithmetic.
			if signAllowed(toks) && i+1 < len(src) && (isDigit(src[i+1]) || src[i+1] == '.') {
				tok, n, err := lexNumber(src, i, i+1)
				if err != nil {
					return nil, err
				}
				toks = append(toks, tok)
				i = n
				continue
			}
			return nil, unsafe(src, i, "arithmetic operator %q", string(c))

		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			word := src[start:i]
			switch word {
			case "value":
				toks = append(toks, token{kind: tokValue, pos: start, text: word})
			case "and":
				toks = append(toks, token{kind: tokAnd, pos: start, text: word})
			case "or":
				toks = append(toks, token{kind: tokOr, pos: start, text: word})
			default:
				return nil, unsafe(src, start, "identifier %q", word)
			}

		case c == '<' || c == '>':
			op := string(c)
			if i+1 < len(src) && src[i+1] == '=' {
				op += "="
			}
			toks = append(toks, token{kind: tokCmp, pos: i, text: op})
			i += len(op)

		case c == '=' || c == '!':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{kind: tokCmp, pos: i, text: src[i : i+2]})
				i += 2
				continue
			}
			if c == '=' {
				return nil, unsafe(src, i, "assignment")
			}
			return nil, unsafe(src, i, "operator %q", "!")

		case c == '&' || c == '|':
			if i+1 < len(src) && src[i+1] == c {
				kind := tokAnd
				if c == '|' {
					kind = tokOr
				}
				toks = append(toks, token{kind: kind, pos: i, text: src[i : i+2]})
				i += 2
				continue
			}
			return nil, unsafe(src, i, "bitwise operator %q", string(c))

		case c == '(':
			if n := len(toks); n > 0 {
				switch toks[n-1].kind {
				case tokValue, tokNumber, tokRParen:
					return nil, unsafe(src, i, "call")
				}
			}
			toks = append(toks, token{kind: tokLParen, pos: i, text: "("})
			i++

		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i, text: ")"})
			i++

		case c == '.':
			return nil, unsafe(src, i, "attribute access")
		case c == '[' || c == ']':
			return nil, unsafe(src, i, "indexing")
		case c == '"' || c == '\'':
			return nil, unsafe(src, i, "string literal")

		default:
			return nil, unsafe(src, i, "character %q", string(c))
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

// lexNumber scans a decimal or exponent literal whose digits begin at
// digits; start is where the token (including any sign) begins.
func lexNumber(src string, start, digits int) (token, int, error) {
	i := digits
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	text := src[start:i]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, 0, malformed(src, start, "bad number %q", text)
	}
	return token{kind: tokNumber, pos: start, text: text, num: v}, i, nil
}

func signAllowed(toks []token) bool {
	if len(toks) == 0 {
		return true
	}
	switch toks[len(toks)-1].kind {
	case tokCmp, tokAnd, tokOr, tokLParen:
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') || c >= 0x80 }
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

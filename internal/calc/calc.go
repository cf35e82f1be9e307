// Package calc evaluates arithmetic expressions for the calc command.
// Only literals and the five basic operators are accepted; there are no
// identifiers, calls or assignments, so user input cannot reach
// anything beyond float math.
package calc

import (
	"strconv"
	"strings"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
)

const maxExprLen = 256

// Eval evaluates an expression supporting + - * / %, parentheses and
// unary minus.
func Eval(expr string) (float64, error) {
	if len(expr) > maxExprLen {
		return 0, coalerr.InvalidArgument("expression is too long")
	}

	p := &parser{input: expr}
	p.skipSpaces()
	if p.eof() {
		return 0, coalerr.InvalidArgument("empty expression")
	}

	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if !p.eof() {
		return 0, coalerr.InvalidArgument("unexpected %q at position %d", p.peek(), p.pos)
	}
	return v, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpaces() {
	for !p.eof() && p.input[p.pos] == ' ' {
		p.pos++
	}
}

// parseExpr handles + and -.
func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

// parseTerm handles *, / and %.
func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		switch op {
		case '*':
			left *= right
		case '/':
			if right == 0 {
				return 0, coalerr.InvalidArgument("division by zero")
			}
			left /= right
		case '%':
			if right == 0 {
				return 0, coalerr.InvalidArgument("modulo by zero")
			}
			l, r := int64(left), int64(right)
			if float64(l) != left || float64(r) != right {
				return 0, coalerr.InvalidArgument("modulo needs whole numbers")
			}
			left = float64(l % r)
		}
	}
}

// parseFactor handles literals, unary minus and parentheses.
func (p *parser) parseFactor() (float64, error) {
	p.skipSpaces()
	if p.eof() {
		return 0, coalerr.InvalidArgument("expression ends unexpectedly")
	}

	switch c := p.peek(); {
	case c == '-':
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return 0, coalerr.InvalidArgument("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	default:
		return 0, coalerr.InvalidArgument("unexpected %q at position %d", c, p.pos)
	}
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for !p.eof() {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	lit := p.input[start:p.pos]
	if strings.Count(lit, ".") > 1 {
		return 0, coalerr.InvalidArgument("malformed number %q", lit)
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, coalerr.InvalidArgument("malformed number %q", lit)
	}
	return v, nil
}

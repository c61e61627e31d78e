package calculator

import (
	"fmt"
	"math"
	"strconv"

	"github.com/leofalp/calcagent/providers/tool"
)

const (
	maxInputRunes = 512
	maxDepth      = 64
)

type node interface {
	eval() (float64, error)
}

type numberNode struct {
	value float64
}

type unaryNode struct {
	op      tokenKind
	operand node
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

type callNode struct {
	fn  string
	arg node
}

// parser is a recursive-descent parser over the token slice:
//
//	expr    := term (('+'|'-') term)*
//	term    := unary (('*'|'/'|'%') unary)*
//	unary   := ('-'|'+') unary | power
//	power   := primary ('**' unary)?
//	primary := NUMBER | '(' expr ')' | FUNC '(' expr ')'
//
// depth counts nested parentheses as well as chained signs and exponents.
type parser struct {
	tokens []token
	pos    int
	depth  int
}

// parse lexes and parses the whole input before anything is evaluated.
func parse(input string) (node, error) {
	if runeCount(input) > maxInputRunes {
		return nil, fmt.Errorf("%w: la expresión supera %d caracteres", tool.ErrInputRejected, maxInputRunes)
	}
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	if tokens[0].kind == tokEOF {
		return nil, fmt.Errorf("%w: expresión vacía", tool.ErrInputRejected)
	}

	p := &parser{tokens: tokens}
	root, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, unexpected(tok)
	}
	return root, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return fmt.Errorf("%w: anidamiento superior a %d niveles", tool.ErrInputRejected, maxDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokPlus || k == tokMinus; k = p.peek().kind {
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: k, left: left, right: right}
	}
	return left, nil
}

func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokStar || k == tokSlash || k == tokPercent; k = p.peek().kind {
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: k, left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if k := p.peek().kind; k == tokPlus || k == tokMinus {
		p.next()
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: k, operand: operand}, nil
	}
	return p.power()
}

// power binds tighter than unary minus on its left and is right-associative:
// -2**2 is -(2**2) and 2**3**2 is 2**(3**2).
func (p *parser) power() (node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	exponent, err := p.unary()
	if err != nil {
		return nil, err
	}
	return binaryNode{op: tokPow, left: base, right: exponent}, nil
}

func (p *parser) primary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		value, err := strconv.ParseFloat(tok.text, 64)
		if err != nil && !math.IsInf(value, 0) && value != 0 {
			return nil, fmt.Errorf("%w: número inválido '%s'", tool.ErrInputRejected, tok.text)
		}
		if math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: el número '%s' es demasiado grande", tool.ErrNumericOverflow, tok.text)
		}
		return numberNode{value: value}, nil

	case tokLParen:
		return p.group()

	case tokFunc:
		if open := p.next(); open.kind != tokLParen {
			return nil, fmt.Errorf("%w: se esperaba '(' después de %s", tool.ErrInputRejected, tok.text)
		}
		arg, err := p.group()
		if err != nil {
			return nil, err
		}
		return callNode{fn: tok.text, arg: arg}, nil
	}
	return nil, unexpected(tok)
}

// group parses expr ')' after an opening parenthesis has been consumed.
func (p *parser) group() (node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	inner, err := p.expr()
	if err != nil {
		return nil, err
	}
	if closing := p.next(); closing.kind != tokRParen {
		if closing.kind == tokEOF {
			return nil, fmt.Errorf("%w: falta ')'", tool.ErrInputRejected)
		}
		return nil, unexpected(closing)
	}
	return inner, nil
}

func unexpected(tok token) error {
	return fmt.Errorf("%w: símbolo inesperado %s en la posición %d", tool.ErrInputRejected, tok, tok.pos+1)
}

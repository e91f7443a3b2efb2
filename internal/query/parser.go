package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Op is a comparison operator.
type Op string

const (
	OpEq       Op = "=="
	OpNeq      Op = "!="
	OpGt       Op = ">"
	OpGte      Op = ">="
	OpLt       Op = "<"
	OpLte      Op = "<="
	OpContains Op = "contains"
	OpMatches  Op = "matches"
)

// expr is a node of the compiled filter tree.
type expr interface {
	eval(r Resolver) (bool, error)
}

type andExpr struct{ left, right expr }
type orExpr struct{ left, right expr }
type notExpr struct{ inner expr }

// cmpExpr compares a field against a literal.
type cmpExpr struct {
	field []string
	op    Op
	value interface{}
	re    *regexp.Regexp // set for OpMatches
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) keyword(kw string) bool {
	t := p.peek()
	return t.kind == tokIdent && strings.EqualFold(t.val, kw)
}

func parse(src string) (expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("position %d: unexpected %q after expression", t.pos, t.val)
	}
	return e, nil
}

// or = and { "OR" and }
func (p *parser) parseOr() (expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &orExpr{left, right}
	}
	return left, nil
}

// and = unary { "AND" unary }
func (p *parser) parseAnd() (expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &andExpr{left, right}
	}
	return left, nil
}

// unary = "NOT" unary | "(" or ")" | comparison
func (p *parser) parseUnary() (expr, error) {
	if p.keyword("NOT") {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notExpr{inner}, nil
	}
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t := p.next(); t.kind != tokRParen {
			return nil, fmt.Errorf("position %d: expected ')', got %q", t.pos, t.val)
		}
		return inner, nil
	}
	return p.parseComparison()
}

// comparison = field op literal
func (p *parser) parseComparison() (expr, error) {
	ft := p.next()
	if ft.kind != tokIdent {
		return nil, fmt.Errorf("position %d: expected field name, got %q", ft.pos, ft.val)
	}
	field := strings.Split(ft.val, ".")
	if err := checkField(field); err != nil {
		return nil, fmt.Errorf("position %d: %w", ft.pos, err)
	}

	var op Op
	switch t := p.next(); {
	case t.kind == tokCmp:
		op = Op(t.val)
	case t.kind == tokIdent && strings.EqualFold(t.val, "contains"):
		op = OpContains
	case t.kind == tokIdent && strings.EqualFold(t.val, "matches"):
		op = OpMatches
	default:
		return nil, fmt.Errorf("position %d: expected comparison operator, got %q", t.pos, t.val)
	}

	vt := p.next()
	var value interface{}
	switch vt.kind {
	case tokString:
		value = vt.val
	case tokBool:
		value = vt.val == "true"
	case tokNumber:
		f, err := strconv.ParseFloat(vt.val, 64)
		if err != nil {
			return nil, fmt.Errorf("position %d: invalid number %q", vt.pos, vt.val)
		}
		value = f
	default:
		return nil, fmt.Errorf("position %d: expected literal, got %q", vt.pos, vt.val)
	}

	c := &cmpExpr{field: field, op: op, value: value}
	switch op {
	case OpMatches:
		pat, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("position %d: matches needs a string pattern", vt.pos)
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("position %d: invalid pattern %q: %w", vt.pos, pat, err)
		}
		c.re = re
	case OpGt, OpGte, OpLt, OpLte:
		if _, ok := value.(float64); !ok {
			return nil, fmt.Errorf("position %d: %s needs a numeric literal", vt.pos, op)
		}
	}
	return c, nil
}

package lang

import "strconv"

// Parser is a recursive-descent parser over the restricted grammar. It
// never backtracks: every forbidden keyword is rejected as soon as it is
// seen, before any surrounding structure is built.
type Parser struct {
	toks []Token
	pos  int
}

// Parse lexes and parses src, returning the program's Module or the first
// error encountered — a *ForbiddenConstructError, *SyntaxError, or a
// lexer error.
func Parse(src string) (*Module, error) {
	toks, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	return p.parseModule()
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) peek(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *Parser) check(k Kind) bool { return p.cur().Kind == k }
func (p *Parser) checkKeyword(word string) bool {
	return p.cur().Kind == KEYWORD && p.cur().Text == word
}
func (p *Parser) expect(k Kind) (Token, error) {
	if p.cur().Kind != k {
		return Token{}, newSyntaxError(p.cur().Line, "expected token kind %v, got %v", k, p.cur())
	}
	return p.advance(), nil
}

func (p *Parser) skipNewlines() {
	for p.check(NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parseModule() (*Module, error) {
	m := &Module{base: base{Line: 1}}
	p.skipNewlines()
	for !p.check(EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		m.Body = append(m.Body, stmt)
		p.skipNewlines()
	}
	return m, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	if p.cur().Kind == KEYWORD {
		switch p.cur().Text {
		case "if":
			return p.parseIf()
		case "return":
			return p.parseReturn()
		case "import":
			return nil, forbidden(p.cur().Line, "Import")
		case "from":
			return nil, forbidden(p.cur().Line, "ImportFrom")
		case "class":
			return nil, forbidden(p.cur().Line, "ClassDef")
		case "def":
			return nil, forbidden(p.cur().Line, "FunctionDef")
		case "async":
			switch p.peek(1).Text {
			case "def":
				return nil, forbidden(p.cur().Line, "AsyncFunctionDef")
			case "with":
				return nil, forbidden(p.cur().Line, "AsyncWith")
			case "for":
				return nil, forbidden(p.cur().Line, "AsyncFor")
			default:
				return nil, forbidden(p.cur().Line, "Async")
			}
		case "while":
			return nil, forbidden(p.cur().Line, "While")
		case "for":
			return nil, forbidden(p.cur().Line, "For")
		case "try":
			return nil, forbidden(p.cur().Line, "Try")
		case "with":
			return nil, forbidden(p.cur().Line, "With")
		case "global":
			return nil, forbidden(p.cur().Line, "Global")
		case "nonlocal":
			return nil, forbidden(p.cur().Line, "Nonlocal")
		}
	}
	return p.parseSimpleStatement()
}

func (p *Parser) parseSimpleStatement() (Stmt, error) {
	line := p.cur().Line
	if p.check(NAME) && p.peek(1).Kind == ASSIGN {
		name := p.advance().Text
		p.advance() // '='
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.consumeStmtEnd()
		return &Assign{base: base{line}, Target: name, Value: value}, nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.consumeStmtEnd()
	return &ExprStmt{base: base{line}, Value: expr}, nil
}

func (p *Parser) consumeStmtEnd() {
	if p.check(NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parseBlock() ([]Stmt, error) {
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	if _, err := p.expect(NEWLINE); err != nil {
		return nil, err
	}
	if _, err := p.expect(INDENT); err != nil {
		return nil, err
	}
	var body []Stmt
	for !p.check(DEDENT) && !p.check(EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
		p.skipNewlines()
	}
	if _, err := p.expect(DEDENT); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	line := p.cur().Line
	p.advance() // 'if' or 'elif'
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var orelse []Stmt
	if p.checkKeyword("elif") {
		elifStmt, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		orelse = []Stmt{elifStmt}
	} else if p.checkKeyword("else") {
		p.advance()
		orelse, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &If{base: base{line}, Test: test, Body: body, Orelse: orelse}, nil
}

func (p *Parser) parseReturn() (Stmt, error) {
	line := p.cur().Line
	p.advance()
	if p.check(NEWLINE) || p.check(EOF) || p.check(DEDENT) {
		p.consumeStmtEnd()
		return &Return{base: base{line}}, nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.consumeStmtEnd()
	return &Return{base: base{line}, Value: val}, nil
}

// ---- expressions, lowest to highest precedence ----

func (p *Parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if !p.checkKeyword("or") {
		return left, nil
	}
	line := p.cur().Line
	values := []Expr{left}
	for p.checkKeyword("or") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		values = append(values, right)
	}
	return &BoolOp{base: base{line}, Op: "or", Values: values}, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	if !p.checkKeyword("and") {
		return left, nil
	}
	line := p.cur().Line
	values := []Expr{left}
	for p.checkKeyword("and") {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		values = append(values, right)
	}
	return &BoolOp{base: base{line}, Op: "and", Values: values}, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.checkKeyword("not") {
		line := p.cur().Line
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{base: base{line}, Op: "not", Operand: operand}, nil
	}
	return p.parseComparison()
}

func isComparisonOp(t Token) bool {
	switch t.Kind {
	case EQ, NEQ, LT, LTE, GT, GTE:
		return true
	}
	return false
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	var ops []string
	var comparators []Expr
	line := p.cur().Line
	for isComparisonOp(p.cur()) {
		op := p.advance().Text
		right, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		comparators = append(comparators, right)
	}
	if len(ops) == 0 {
		return left, nil
	}
	return &Compare{base: base{line}, Left: left, Ops: ops, Comparators: comparators}, nil
}

func (p *Parser) parseAddSub() (Expr, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		line := p.cur().Line
		op := p.advance().Text
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		left = &BinOp{base: base{line}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMulDiv() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(STAR) || p.check(SLASH) {
		line := p.cur().Line
		op := p.advance().Text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinOp{base: base{line}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.check(PLUS) || p.check(MINUS) {
		line := p.cur().Line
		op := p.advance().Text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{base: base{line}, Op: op, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(DOT):
			p.advance()
			name, err := p.expect(NAME)
			if err != nil {
				return nil, err
			}
			expr = &Attribute{base: base{name.Line}, Value: expr, Attr: name.Text}
		case p.check(LPAREN):
			line := p.cur().Line
			p.advance()
			args, kwargs, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			expr = &Call{base: base{line}, Func: expr, Args: args, Keywords: kwargs}
		case p.check(LBRACKET):
			line := p.cur().Line
			p.advance()
			idx, err := p.parseSubscriptIndex()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			expr = &Subscript{base: base{line}, Value: expr, Index: idx}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallArgs() ([]Expr, []Keyword, error) {
	var args []Expr
	var kwargs []Keyword
	for !p.check(RPAREN) {
		if p.check(NAME) && p.peek(1).Kind == ASSIGN {
			name := p.advance().Text
			p.advance()
			val, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			kwargs = append(kwargs, Keyword{Name: name, Value: val})
		} else {
			val, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, val)
		}
		if p.check(COMMA) {
			p.advance()
			continue
		}
		break
	}
	return args, kwargs, nil
}

func (p *Parser) parseSubscriptIndex() (Expr, error) {
	line := p.cur().Line
	var lower, upper Expr
	var err error
	if !p.check(COLON) {
		lower, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if p.check(COLON) {
		p.advance()
		if !p.check(RBRACKET) {
			upper, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		return &Slice{base: base{line}, Lower: lower, Upper: upper}, nil
	}
	return lower, nil
}

func (p *Parser) parseAtom() (Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case NUMBER:
		p.advance()
		n, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, newSyntaxError(tok.Line, "invalid number literal %q", tok.Text)
		}
		return &Constant{base: base{tok.Line}, ConstKind: ConstNumber, Number: n}, nil
	case STRING:
		p.advance()
		return &Constant{base: base{tok.Line}, ConstKind: ConstString, Str: tok.Text}, nil
	case NAME:
		p.advance()
		return &Name{base: base{tok.Line}, Id: tok.Text}, nil
	case KEYWORD:
		switch tok.Text {
		case "True":
			p.advance()
			return &Constant{base: base{tok.Line}, ConstKind: ConstBool, Bool: true}, nil
		case "False":
			p.advance()
			return &Constant{base: base{tok.Line}, ConstKind: ConstBool, Bool: false}, nil
		case "None":
			p.advance()
			return &Constant{base: base{tok.Line}, ConstKind: ConstNone}, nil
		case "lambda":
			return nil, forbidden(tok.Line, "Lambda")
		case "yield":
			return nil, forbidden(tok.Line, "Yield")
		case "await":
			return nil, forbidden(tok.Line, "Await")
		default:
			return nil, newSyntaxError(tok.Line, "unexpected keyword %q", tok.Text)
		}
	case LPAREN:
		p.advance()
		if p.check(RPAREN) {
			p.advance()
			return &TupleExpr{base: base{tok.Line}}, nil
		}
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.check(COMMA) {
			elts := []Expr{first}
			for p.check(COMMA) {
				p.advance()
				if p.check(RPAREN) {
					break
				}
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				elts = append(elts, e)
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			return &TupleExpr{base: base{tok.Line}, Elts: elts}, nil
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return first, nil
	case LBRACKET:
		p.advance()
		var elts []Expr
		for !p.check(RBRACKET) {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elts = append(elts, e)
			if p.check(COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		return &ListExpr{base: base{tok.Line}, Elts: elts}, nil
	case LBRACE:
		p.advance()
		var keys, values []Expr
		for !p.check(RBRACE) {
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(COLON); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			values = append(values, v)
			if p.check(COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(RBRACE); err != nil {
			return nil, err
		}
		return &DictExpr{base: base{tok.Line}, Keys: keys, Values: values}, nil
	}
	return nil, newSyntaxError(tok.Line, "unexpected token %v", tok)
}

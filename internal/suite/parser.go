package suite

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"go/types"
)

const (
	fieldName     = "name"
	fieldSetup    = "setup"
	fieldTeardown = "teardown"
	testKeyword   = "test"
)

// Parse parses and validates one suite declaration. Positions in errors are
// relative to src and carry filename.
func Parse(filename string, src []byte) (*Suite, error) {
	return ParseBlock(token.Position{Filename: filename, Line: 1, Column: 1}, src)
}

// ParseBlock is like Parse for a block embedded in a larger file starting at start.
// Reported positions are shifted so they point into that file.
func ParseBlock(start token.Position, src []byte) (*Suite, error) {
	if start.Line < 1 {
		start.Line = 1
	}
	if start.Column < 1 {
		start.Column = 1
	}

	p := newParser(start, src)
	s, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

type parser struct {
	src   []byte
	start token.Position
	file  *token.File
	sc    scanner.Scanner

	lexErr *Error

	pos token.Pos
	tok token.Token
	lit string
}

func newParser(start token.Position, src []byte) *parser {
	fset := token.NewFileSet()
	p := &parser{
		src:   src,
		start: start,
		file:  fset.AddFile(start.Filename, -1, len(src)),
	}
	p.sc.Init(p.file, src, func(pos token.Position, msg string) {
		if p.lexErr == nil {
			p.lexErr = errorf(ErrGrammar, shift(p.start, pos), "%s", msg)
		}
	}, 0)
	p.next()
	return p
}

// next advances to the next significant token. Semicolons, including the ones
// the scanner inserts at line ends, only separate declarations and are skipped.
func (p *parser) next() {
	for {
		p.pos, p.tok, p.lit = p.sc.Scan()
		if p.lexErr != nil {
			p.tok = token.ILLEGAL
			return
		}
		if p.tok != token.SEMICOLON {
			return
		}
	}
}

func (p *parser) position(pos token.Pos) token.Position {
	return shift(p.start, p.file.PositionFor(pos, false))
}

func (p *parser) offset(pos token.Pos) int {
	return p.file.Offset(pos)
}

func shift(start, rel token.Position) token.Position {
	out := rel
	out.Filename = start.Filename
	out.Offset = start.Offset + rel.Offset
	if rel.Line == 1 {
		out.Column = start.Column + rel.Column - 1
	}
	out.Line = start.Line + rel.Line - 1
	return out
}

// errorExpected reports an unexpected token. A pending lexical error wins
// because it explains why the token stream went wrong.
func (p *parser) errorExpected(what string) *Error {
	if p.lexErr != nil {
		return p.lexErr
	}
	return errorf(ErrGrammar, p.position(p.pos), "expected %s, found %s", what, p.describe())
}

func (p *parser) describe() string {
	switch {
	case p.tok == token.EOF:
		return "end of block"
	case p.lit != "":
		return fmt.Sprintf("%q", p.lit)
	default:
		return fmt.Sprintf("%q", p.tok.String())
	}
}

func (p *parser) expect(tok token.Token) (token.Pos, error) {
	pos := p.pos
	if p.tok != tok {
		return pos, p.errorExpected(fmt.Sprintf("%q", tok.String()))
	}
	p.next()
	return pos, nil
}

func (p *parser) ident(what string) (string, token.Position, error) {
	if p.tok != token.IDENT {
		return "", token.Position{}, p.errorExpected(what)
	}
	name, pos := p.lit, p.position(p.pos)
	p.next()
	return name, pos, nil
}

func (p *parser) parseSuite() (*Suite, error) {
	s := &Suite{Pos: p.start}
	fields := make(map[string]token.Position)
	inTests := false

	for p.tok != token.EOF {
		if p.tok == token.IDENT && p.lit == testKeyword {
			inTests = true
			t, err := p.parseTest()
			if err != nil {
				return nil, err
			}
			s.Tests = append(s.Tests, t)
			continue
		}

		fieldPos := p.position(p.pos)
		if p.tok == token.SUB {
			p.next()
		}
		if p.tok != token.IDENT {
			return nil, p.errorExpected("suite field or test")
		}
		key := p.lit
		switch key {
		case fieldName, fieldSetup, fieldTeardown:
		default:
			return nil, errorf(ErrGrammar, p.position(p.pos), "unknown suite field %q (want %s, %s or %s)",
				key, fieldName, fieldSetup, fieldTeardown)
		}
		if inTests {
			return nil, errorf(ErrGrammar, fieldPos, "field %q must be declared before the first test", key)
		}
		if prev, ok := fields[key]; ok {
			return nil, &Error{
				Kind: ErrGrammar,
				Pos:  fieldPos,
				Prev: prev,
				Msg:  fmt.Sprintf("field %q is already declared at %s", key, prev),
			}
		}
		fields[key] = fieldPos
		p.next()

		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		if err := p.parseField(s, key); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (p *parser) parseField(s *Suite, key string) error {
	switch key {
	case fieldName:
		name, pos, err := p.ident("suite name")
		if err != nil {
			return err
		}
		s.Name, s.Pos = name, pos
	case fieldSetup:
		callable, err := p.parseCallable()
		if err != nil {
			return err
		}
		if p.tok != token.LPAREN {
			if p.lexErr != nil {
				return p.lexErr
			}
			return errorf(ErrGrammar, p.position(p.pos),
				"setup %s must declare its result types, e.g. \"setup: %s(int)\"", callable.Name, callable.Name)
		}
		results, err := p.parseTypeList(callable)
		if err != nil {
			return err
		}
		s.Setup = &Setup{Callable: callable, ResultTypes: results}
	case fieldTeardown:
		callable, err := p.parseCallable()
		if err != nil {
			return err
		}
		s.Teardown = &callable
	}
	return nil
}

func (p *parser) parseCallable() (Callable, error) {
	name, pos, err := p.ident("function name")
	if err != nil {
		return Callable{}, err
	}
	if p.tok == token.PERIOD {
		p.next()
		sel, _, err := p.ident("function name after \".\"")
		if err != nil {
			return Callable{}, err
		}
		name = name + "." + sel
	}
	return Callable{Name: name, Pos: pos}, nil
}

// parseTypeList reads "(" Type ("," Type)* [","] ")". Types are delimited by
// commas at nesting depth zero, so func, map and generic types may contain
// their own parentheses, brackets and commas.
func (p *parser) parseTypeList(callable Callable) ([]TypeExpr, error) {
	lparen := p.pos
	p.next()

	var list []TypeExpr
	depth := 0
	startOff, endOff := -1, -1
	var startPos token.Pos

	flush := func() error {
		if startOff < 0 {
			return errorf(ErrGrammar, p.position(p.pos), "missing result type in setup %s", callable.Name)
		}
		te, err := parseTypeExpr(string(p.src[startOff:endOff]), p.position(startPos))
		if err != nil {
			return err
		}
		list = append(list, te)
		startOff, endOff = -1, -1
		return nil
	}

	for {
		switch p.tok {
		case token.EOF, token.ILLEGAL:
			if p.lexErr != nil {
				return nil, p.lexErr
			}
			return nil, errorf(ErrGrammar, p.position(lparen), "unterminated result type list of setup %s", callable.Name)
		case token.COMMA:
			if depth == 0 {
				if err := flush(); err != nil {
					return nil, err
				}
				p.next()
				continue
			}
		case token.RPAREN:
			if depth == 0 {
				switch {
				case startOff >= 0:
					if err := flush(); err != nil {
						return nil, err
					}
				case len(list) == 0:
					return nil, errorf(ErrGrammar, p.position(lparen), "setup %s declares no result types", callable.Name)
				}
				// A trailing comma leaves nothing pending.
				p.next()
				return list, nil
			}
			depth--
		case token.RBRACK, token.RBRACE:
			if depth == 0 {
				return nil, p.errorExpected("result type")
			}
			depth--
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		}

		off := p.offset(p.pos)
		if startOff < 0 {
			startOff, startPos = off, p.pos
		}
		endOff = off + len(p.tokenText())
		p.next()
	}
}

func (p *parser) tokenText() string {
	if p.lit != "" {
		return p.lit
	}
	return p.tok.String()
}

func (p *parser) parseTest() (Test, error) {
	t := Test{Pos: p.position(p.pos)}
	p.next()

	name, _, err := p.ident("test name")
	if err != nil {
		return Test{}, err
	}
	t.Name = name

	if p.tok == token.LPAREN {
		params, err := p.parseParams(name)
		if err != nil {
			return Test{}, err
		}
		t.Params = params
	}

	if p.tok != token.LBRACE {
		return Test{}, p.errorExpected(fmt.Sprintf("\"{\" to open the body of test %s", name))
	}
	body, bodyPos, err := p.parseBlock(name)
	if err != nil {
		return Test{}, err
	}
	t.Body, t.BodyPos = body, bodyPos
	return t, nil
}

func (p *parser) parseParams(test string) ([]Param, error) {
	lparen := p.pos
	p.next()

	var params []Param
	for p.tok != token.RPAREN {
		name, pos, err := p.ident("parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: name, Pos: pos})
		if p.tok == token.COMMA {
			p.next()
			continue
		}
		if p.tok != token.RPAREN {
			return nil, p.errorExpected("\",\" or \")\"")
		}
	}
	p.next()

	if len(params) == 0 {
		return nil, errorf(ErrGrammar, p.position(lparen),
			"test %s has an empty parameter list; drop the parentheses for a test without setup values", test)
	}
	return params, nil
}

// parseBlock captures the text between a "{" and its matching "}". Matching is
// done on Go tokens, so braces inside strings, runes and comments are ignored.
func (p *parser) parseBlock(test string) (string, token.Position, error) {
	lbrace := p.pos
	bodyOff := p.offset(lbrace) + 1
	bodyPos := p.position(lbrace)
	bodyPos.Offset++
	bodyPos.Column++

	depth := 1
	for {
		p.next()
		switch p.tok {
		case token.EOF, token.ILLEGAL:
			if p.lexErr != nil {
				return "", token.Position{}, p.lexErr
			}
			return "", token.Position{}, errorf(ErrGrammar, p.position(lbrace), "unterminated body of test %s", test)
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				body := string(p.src[bodyOff:p.offset(p.pos)])
				p.next()
				return body, bodyPos, nil
			}
		}
	}
}

// parseTypeExpr checks that text is a Go type expression and normalizes its spelling.
func parseTypeExpr(text string, pos token.Position) (TypeExpr, error) {
	expr, err := goparser.ParseExpr(text)
	if err != nil || !isTypeExpr(expr) {
		return TypeExpr{}, errorf(ErrGrammar, pos, "%q is not a valid Go type", text)
	}
	return TypeExpr{Text: types.ExprString(expr), Pos: pos}, nil
}

// typeNames lists the names a type expression resolves in the enclosing
// scope: type names, package qualifiers and array length constants. Field,
// method and parameter names are not included.
func typeNames(text string) []string {
	expr, err := goparser.ParseExpr(text)
	if err != nil {
		return nil
	}
	var names []string
	var visit func(ast.Node) bool
	visit = func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			if id, ok := n.X.(*ast.Ident); ok {
				names = append(names, id.Name)
			}
			return false
		case *ast.Field:
			ast.Inspect(n.Type, visit)
			return false
		case *ast.Ident:
			names = append(names, n.Name)
		}
		return true
	}
	ast.Inspect(expr, visit)
	return names
}

func isTypeExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name != "_"
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return isTypeExpr(e.X)
	case *ast.ParenExpr:
		return isTypeExpr(e.X)
	case *ast.IndexExpr:
		return isTypeExpr(e.X) && isTypeExpr(e.Index)
	case *ast.IndexListExpr:
		if !isTypeExpr(e.X) {
			return false
		}
		for _, idx := range e.Indices {
			if !isTypeExpr(idx) {
				return false
			}
		}
		return true
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.StructType, *ast.InterfaceType:
		return true
	}
	return false
}

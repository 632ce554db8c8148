// Package parser implements delbin's recursive-descent parser:
// grammar, operator precedence, and error codes E01001-E01005 exactly
// as the language specification prescribes.
package parser

import (
	"fmt"

	"github.com/delbin-lang/delbin/internal/delbin/ast"
	"github.com/delbin-lang/delbin/internal/delbin/lexer"
	"github.com/delbin-lang/delbin/internal/delbin/position"
	"github.com/delbin-lang/delbin/internal/delbin/types"
)

// ParseError is returned for any malformed schema.
type ParseError struct {
	Code    string
	Message string
	Pos     position.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] %s (at %s)", e.Code, e.Message, e.Pos)
}

func errf(code string, pos position.Position, format string, args ...any) error {
	return &ParseError{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

type parser struct {
	lex *lexer.Lexer
	tok lexer.Token
}

// Parse tokenizes and parses delbin source text into a File AST.
func Parse(src string) (*ast.File, error) {
	p := &parser{lex: lexer.New(src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p.parseFile()
}

func (p *parser) next() error {
	t, err := p.lex.Next()
	if err != nil {
		le := err.(*lexer.LexError)
		return errf(le.Code, le.Pos, "%s", le.Message)
	}
	p.tok = t
	return nil
}

func (p *parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if p.tok.Type != tt {
		return lexer.Token{}, errf("E01001", p.tok.Pos, "expected %s, found %s", tt, p.tok.Type)
	}
	t := p.tok
	return t, p.next()
}

func (p *parser) expectIdentValue(name string) error {
	if p.tok.Type != lexer.TokenIdent || p.tok.Literal != name {
		return errf("E01001", p.tok.Pos, "expected %q, found %q", name, p.tok.Literal)
	}
	return p.next()
}

func (p *parser) parseFile() (*ast.File, error) {
	file := &ast.File{Endian: types.LittleEndian}

	if err := p.expectDirective(file); err != nil {
		return nil, err
	}

	// Optional supplemental directive: @require_engine = "<constraint>";
	for p.tok.Type == lexer.TokenAt {
		if err := p.expectDirective(file); err != nil {
			return nil, err
		}
	}

	sd, err := p.parseStructDef()
	if err != nil {
		return nil, err
	}
	file.Struct = *sd

	if p.tok.Type != lexer.TokenEOF {
		return nil, errf("E01003", p.tok.Pos, "unexpected trailing content after struct definition")
	}

	return file, nil
}

// expectDirective parses one "@name = value;" directive. @require_engine's
// constraint string is only syntax-checked here and stored on
// ast.File.RequireEngine; internal/delbin/schemaver validates it against
// the running engine version.
func (p *parser) expectDirective(file *ast.File) error {
	start := p.tok.Pos
	if _, err := p.expect(lexer.TokenAt); err != nil {
		return err
	}
	if p.tok.Type != lexer.TokenIdent {
		return errf("E01001", p.tok.Pos, "expected directive name")
	}
	name := p.tok.Literal
	if err := p.next(); err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokenEquals); err != nil {
		return err
	}

	switch name {
	case "endian":
		if p.tok.Type != lexer.TokenIdent {
			return errf("E01003", p.tok.Pos, "expected 'little' or 'big'")
		}
		switch p.tok.Literal {
		case "little":
			file.Endian = types.LittleEndian
		case "big":
			file.Endian = types.BigEndian
		default:
			return errf("E01003", p.tok.Pos, "invalid endian value: %s", p.tok.Literal)
		}
		if err := p.next(); err != nil {
			return err
		}
	case "require_engine":
		// Validated by the host (internal/delbin/schemaver), not the
		// parser; the value is still required to be a string literal.
		if p.tok.Type != lexer.TokenString {
			return errf("E01003", p.tok.Pos, "expected a string constraint for @require_engine")
		}
		constraint := p.tok.Literal
		file.RequireEngine = &constraint
		if err := p.next(); err != nil {
			return err
		}
	default:
		return errf("E01003", start, "unknown directive @%s", name)
	}

	_, err := p.expect(lexer.TokenSemi)
	return err
}

func (p *parser) parseStructDef() (*ast.StructDef, error) {
	pos := p.tok.Pos
	if err := p.expectIdentValue("struct"); err != nil {
		return nil, err
	}

	nameTok, err := p.expect(lexer.TokenIdent)
	if err != nil {
		return nil, err
	}

	sd := &ast.StructDef{Name: nameTok.Literal, Pos: pos}

	for p.tok.Type == lexer.TokenAt {
		if err := p.parseStructAttr(sd); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}

	for p.tok.Type != lexer.TokenRBrace {
		if p.tok.Type == lexer.TokenEOF {
			return nil, errf("E01002", p.tok.Pos, "unexpected end of input inside struct body")
		}
		fd, err := p.parseFieldDef()
		if err != nil {
			return nil, err
		}
		sd.Fields = append(sd.Fields, *fd)
	}
	if _, err := p.expect(lexer.TokenRBrace); err != nil {
		return nil, err
	}

	return sd, nil
}

func (p *parser) parseStructAttr(sd *ast.StructDef) error {
	if _, err := p.expect(lexer.TokenAt); err != nil {
		return err
	}
	if p.tok.Type != lexer.TokenIdent {
		return errf("E01001", p.tok.Pos, "expected struct attribute name")
	}
	name := p.tok.Literal
	if err := p.next(); err != nil {
		return err
	}

	switch name {
	case "packed":
		sd.Packed = true
	case "align":
		if _, err := p.expect(lexer.TokenLParen); err != nil {
			return err
		}
		numTok, err := p.expect(lexer.TokenNumber)
		if err != nil {
			return err
		}
		v := numTok.Value
		sd.Align = &v
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return err
		}
	default:
		return errf("E01003", p.tok.Pos, "unknown struct attribute @%s", name)
	}
	return nil
}

func (p *parser) parseFieldDef() (*ast.FieldDef, error) {
	nameTok, err := p.expect(lexer.TokenIdent)
	if err != nil {
		return nil, err
	}
	fd := &ast.FieldDef{Name: nameTok.Literal, Pos: nameTok.Pos}

	if _, err := p.expect(lexer.TokenColon); err != nil {
		return nil, err
	}

	ty, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	fd.Type = ty

	if p.tok.Type == lexer.TokenEquals {
		if err := p.next(); err != nil {
			return nil, err
		}
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fd.Init = init
	}

	if _, err := p.expect(lexer.TokenSemi); err != nil {
		return nil, err
	}

	return fd, nil
}

func (p *parser) parseTypeSpec() (ast.Type, error) {
	if p.tok.Type == lexer.TokenLBracket {
		if err := p.next(); err != nil {
			return nil, err
		}
		elemTok, err := p.expect(lexer.TokenIdent)
		if err != nil {
			return nil, err
		}
		if !types.IsScalarTag(elemTok.Literal) {
			return nil, errf("E01003", elemTok.Pos, "unknown scalar type %q", elemTok.Literal)
		}
		if _, err := p.expect(lexer.TokenSemi); err != nil {
			return nil, err
		}
		lenExpr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRBracket); err != nil {
			return nil, err
		}
		return ast.Array{Elem: types.ScalarTag(elemTok.Literal), Len: lenExpr}, nil
	}

	tok, err := p.expect(lexer.TokenIdent)
	if err != nil {
		return nil, err
	}
	if !types.IsScalarTag(tok.Literal) {
		return nil, errf("E01003", tok.Pos, "unknown scalar type %q", tok.Literal)
	}
	return ast.Scalar{Tag: types.ScalarTag(tok.Literal)}, nil
}

// --- expressions, lowest to highest precedence ---

func (p *parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == lexer.TokenPipe {
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: ast.Or, Left: left, Right: right, Meta: ast.At(pos)}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == lexer.TokenAmp {
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: ast.And, Left: left, Right: right, Meta: ast.At(pos)}
	}
	return left, nil
}

func (p *parser) parseShift() (ast.Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == lexer.TokenShl || p.tok.Type == lexer.TokenShr {
		op := ast.Shl
		if p.tok.Type == lexer.TokenShr {
			op = ast.Shr
		}
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Meta: ast.At(pos)}
	}
	return left, nil
}

func (p *parser) parseAdd() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == lexer.TokenPlus || p.tok.Type == lexer.TokenMinus {
		op := ast.Add
		if p.tok.Type == lexer.TokenMinus {
			op = ast.Sub
		}
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Meta: ast.At(pos)}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.tok.Type == lexer.TokenTilde || p.tok.Type == lexer.TokenMinus {
		op := ast.Not
		if p.tok.Type == lexer.TokenMinus {
			op = ast.Neg
		}
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Operand: operand, Meta: ast.At(pos)}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	pos := p.tok.Pos

	switch p.tok.Type {
	case lexer.TokenNumber:
		v := p.tok.Value
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.NumberLit{Value: v, Meta: ast.At(pos)}, nil

	case lexer.TokenString:
		s := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.StringLit{Value: s, Meta: ast.At(pos)}, nil

	case lexer.TokenLParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil

	case lexer.TokenDollar:
		return p.parseEnvVar()

	case lexer.TokenAt:
		return p.parseAtPrimary()

	case lexer.TokenIdent:
		// Bare identifier: only legal as a section reference inside a
		// builtin argument list (see parseArg), so outside that
		// context treat it as a section reference used in general
		// arithmetic context (spec.md §4.3: "a bare section name
		// appearing where a numeric value is expected yields the
		// section's byte length").
		name := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.SectionRef{Name: name, Meta: ast.At(pos)}, nil

	default:
		return nil, errf("E01001", pos, "unexpected token %s in expression", p.tok.Type)
	}
}

func (p *parser) parseEnvVar() (ast.Expr, error) {
	pos := p.tok.Pos
	if _, err := p.expect(lexer.TokenDollar); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}
	tok, err := p.expect(lexer.TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenRBrace); err != nil {
		return nil, err
	}
	return &ast.EnvRef{Name: tok.Literal, Meta: ast.At(pos)}, nil
}

// parseAtPrimary parses @self, @self[range], or @name(args...).
func (p *parser) parseAtPrimary() (ast.Expr, error) {
	pos := p.tok.Pos
	if _, err := p.expect(lexer.TokenAt); err != nil {
		return nil, err
	}
	if p.tok.Type != lexer.TokenIdent {
		return nil, errf("E01001", p.tok.Pos, "expected identifier after '@'")
	}
	name := p.tok.Literal
	if err := p.next(); err != nil {
		return nil, err
	}

	if name == "self" {
		if p.tok.Type == lexer.TokenLBracket {
			return p.parseRangeSpec(pos)
		}
		return &ast.SelfRef{Meta: ast.At(pos)}, nil
	}

	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if p.tok.Type != lexer.TokenRParen {
		for {
			arg, err := p.parseArg()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.Type != lexer.TokenComma {
				break
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}

	return &ast.BuiltinCall{Name: name, Args: args, Meta: ast.At(pos)}, nil
}

// parseRangeSpec parses the "[range_spec]" suffix after @self.
func (p *parser) parseRangeSpec(selfPos position.Position) (ast.Expr, error) {
	if _, err := p.expect(lexer.TokenLBracket); err != nil {
		return nil, err
	}

	var start ast.Expr
	if p.tok.Type != lexer.TokenDotDot {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		start = e
	}

	if _, err := p.expect(lexer.TokenDotDot); err != nil {
		return nil, err
	}

	endTok, err := p.expect(lexer.TokenIdent)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TokenRBracket); err != nil {
		return nil, err
	}

	return &ast.RangeExpr{Start: start, End: endTok.Literal, Meta: ast.At(selfPos)}, nil
}

// parseArg parses one builtin-call argument: a range expression, a
// section reference, or a general expression, in that resolution
// order (spec.md §9).
func (p *parser) parseArg() (ast.Expr, error) {
	if p.tok.Type == lexer.TokenAt {
		return p.parseExpr()
	}
	if p.tok.Type == lexer.TokenIdent {
		// In argument position a bare identifier is a section
		// reference, per the grammar's arg production. The argument
		// ends at the identifier, so an identifier followed by an
		// operator (e.g. "x + 1") is a syntax error here rather than
		// an arithmetic expression.
		pos := p.tok.Pos
		name := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.SectionRef{Name: name, Meta: ast.At(pos)}, nil
	}
	return p.parseExpr()
}


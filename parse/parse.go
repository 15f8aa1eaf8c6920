package parse

import (
	"fmt"
	"log"

	"github.com/goplus/cdecl/ast"
)

type dbgFlags = int

const (
	DbgParse dbgFlags = 1 << iota
	DbgFlagAll         = DbgParse
)

var (
	debugParse bool
)

func SetDebug(dbgFlags dbgFlags) {
	debugParse = (dbgFlags & DbgParse) != 0
}

// storage classes and qualifiers the declaration subset accepts but
// does not represent.
var skipWords = map[string]bool{
	"extern": true, "static": true, "register": true, "auto": true,
	"const": true, "volatile": true, "inline": true,
}

// primitive specifier words, combinable into one ast.Names list.
var typeWords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true,
}

type parser struct {
	toks     []token
	pos      int
	typedefs map[string]bool
}

// Parse parses one fragment of C declarations. The parser tracks
// typedef names declared earlier in the same fragment, which is why
// callers that split input across fragments must re-declare known
// typedefs up front (C declaration grammar is not context-free in
// this respect).
func Parse(src string) (*ast.File, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, typedefs: make(map[string]bool)}
	file := &ast.File{}
	for p.peek().kind != tkEOF {
		if p.accept(";") {
			continue
		}
		decls, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		file.Decls = append(file.Decls, decls...)
	}
	return file, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tkEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(val string) bool {
	tok := p.peek()
	if tok.kind != tkEOF && tok.val == val && tok.kind != tkNumber {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(val string) error {
	if !p.accept(val) {
		return p.errf("expected %q but got %s", val, p.peek())
	}
	return nil
}

func (p *parser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("line %d: %s", p.peek().line, fmt.Sprintf(format, args...))
}

func (p *parser) logln(args ...interface{}) {
	if debugParse {
		log.Println(args...)
	}
}

// parseDeclaration parses one top-level declaration, possibly with
// several comma-separated declarators. Every declarator's TypeSpec
// shares the one specifier node parsed here, preserving the DAG shape
// that aggregate identity caching depends on.
func (p *parser) parseDeclaration() ([]ast.Decl, error) {
	base, isTypedef, err := p.parseDeclSpecifiers()
	if err != nil {
		return nil, err
	}
	var decls []ast.Decl
	if p.accept(";") {
		// tag-only declaration such as "struct Point;", or a bare
		// "typedef int;" that the registrar rejects as unnamed
		spec := &ast.TypeSpec{Base: base}
		if isTypedef {
			decls = append(decls, &ast.TypedefDecl{Type: spec})
		} else {
			decls = append(decls, &ast.VarDecl{Type: spec})
		}
		return decls, nil
	}
	for {
		name, wrap, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		typ := wrap(&ast.TypeSpec{DeclName: name, Base: base})
		if isTypedef {
			p.logln("parseDeclaration: typedef", name)
			if name != "" {
				p.typedefs[name] = true
			}
			decls = append(decls, &ast.TypedefDecl{Name: name, Type: typ})
		} else {
			p.logln("parseDeclaration: decl", name)
			decls = append(decls, &ast.VarDecl{Name: name, Type: typ})
		}
		if p.accept("=") {
			// tolerated, the initializer value is not represented
			if _, err := p.parseConstExpr(); err != nil {
				return nil, err
			}
		}
		if p.accept(",") {
			continue
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		return decls, nil
	}
}

// parseDeclSpecifiers parses the specifier part shared by all
// declarators of a declaration: storage classes, qualifiers and
// exactly one of a primitive word list, a typedef-name reference, or
// a struct/union/enum specifier.
func (p *parser) parseDeclSpecifiers() (ast.Type, bool, error) {
	var words []string
	var base ast.Type
	isTypedef := false
	for {
		tok := p.peek()
		if tok.kind != tkIdent {
			break
		}
		switch {
		case tok.val == "typedef":
			isTypedef = true
			p.next()
		case skipWords[tok.val]:
			p.next()
		case tok.val == "struct" || tok.val == "union":
			if base != nil || len(words) > 0 {
				return nil, false, p.errf("unexpected %q in declaration specifiers", tok.val)
			}
			p.next()
			kind := ast.Struct
			if tok.val == "union" {
				kind = ast.Union
			}
			rec, err := p.parseRecordSpecifier(kind)
			if err != nil {
				return nil, false, err
			}
			base = rec
		case tok.val == "enum":
			if base != nil || len(words) > 0 {
				return nil, false, p.errf("unexpected \"enum\" in declaration specifiers")
			}
			p.next()
			en, err := p.parseEnumSpecifier()
			if err != nil {
				return nil, false, err
			}
			base = en
		case typeWords[tok.val]:
			if base != nil {
				return nil, false, p.errf("unexpected %q after tagged type", tok.val)
			}
			words = append(words, tok.val)
			p.next()
		case p.typedefs[tok.val] && base == nil && len(words) == 0:
			// a lone typedef-name reference; anything after it
			// belongs to the declarator
			p.next()
			return &ast.Names{List: []string{tok.val}}, isTypedef, nil
		default:
			goto done
		}
	}
done:
	if base != nil {
		return base, isTypedef, nil
	}
	if len(words) > 0 {
		return &ast.Names{List: words}, isTypedef, nil
	}
	return nil, false, p.errf("expected declaration specifiers but got %s", p.peek())
}

func (p *parser) parseRecordSpecifier(kind ast.RecordKind) (*ast.RecordType, error) {
	rec := &ast.RecordType{Kind: kind}
	if tok := p.peek(); tok.kind == tkIdent && !reservedWord(tok.val) {
		rec.Name = tok.val
		p.next()
	}
	if !p.accept("{") {
		if rec.Name == "" {
			return nil, p.errf("anonymous %s without a body", kind)
		}
		return rec, nil
	}
	rec.Fields = []*ast.Field{}
	for !p.accept("}") {
		fields, err := p.parseFieldDeclaration()
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, fields...)
	}
	return rec, nil
}

// parseFieldDeclaration parses one member declaration inside a struct
// or union body, covering bit-fields, unnamed bit-fields and bare
// specifier members such as an elision sentinel.
func (p *parser) parseFieldDeclaration() ([]*ast.Field, error) {
	base, isTypedef, err := p.parseDeclSpecifiers()
	if err != nil {
		return nil, err
	}
	if isTypedef {
		return nil, p.errf("typedef is not allowed inside a field list")
	}
	if p.accept(";") {
		return []*ast.Field{{Type: &ast.TypeSpec{Base: base}}}, nil
	}
	var fields []*ast.Field
	for {
		field := &ast.Field{}
		if p.peek().kind != tkPunct || p.peek().val != ":" {
			name, wrap, err := p.parseDeclarator()
			if err != nil {
				return nil, err
			}
			field.Name = name
			field.Type = wrap(&ast.TypeSpec{DeclName: name, Base: base})
		} else {
			field.Type = &ast.TypeSpec{Base: base}
		}
		if p.accept(":") {
			width, err := p.parseConstExpr()
			if err != nil {
				return nil, err
			}
			field.Bitsize = width
		}
		fields = append(fields, field)
		if p.accept(",") {
			continue
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		return fields, nil
	}
}

func (p *parser) parseEnumSpecifier() (*ast.EnumType, error) {
	en := &ast.EnumType{}
	if tok := p.peek(); tok.kind == tkIdent && !reservedWord(tok.val) {
		en.Name = tok.val
		p.next()
	}
	if !p.accept("{") {
		if en.Name == "" {
			return nil, p.errf("anonymous enum without a body")
		}
		return en, nil
	}
	en.Items = []*ast.EnumItem{}
	for !p.accept("}") {
		tok := p.next()
		if tok.kind != tkIdent {
			return nil, p.errf("expected enumerator name but got %s", tok)
		}
		item := &ast.EnumItem{Name: tok.val}
		if p.accept("=") {
			value, err := p.parseConstExpr()
			if err != nil {
				return nil, err
			}
			item.Value = value
		}
		en.Items = append(en.Items, item)
		if !p.accept(",") {
			if err := p.expect("}"); err != nil {
				return nil, err
			}
			break
		}
	}
	return en, nil
}

// typeWrap rebuilds the declarator's type structure around the
// innermost TypeSpec once the whole declarator has been read.
type typeWrap func(ast.Type) ast.Type

func identityWrap(t ast.Type) ast.Type { return t }

// parseDeclarator reads one (possibly abstract) declarator and returns
// the declared name together with the wrapper that layers pointer,
// array and function derivations over a base type.
func (p *parser) parseDeclarator() (string, typeWrap, error) {
	nptr := 0
	for p.accept("*") {
		nptr++
		for skipWords[p.peek().val] && p.peek().kind == tkIdent {
			p.next()
		}
	}
	name, direct, err := p.parseDirectDeclarator()
	if err != nil {
		return "", nil, err
	}
	wrap := func(t ast.Type) ast.Type {
		for i := 0; i < nptr; i++ {
			t = &ast.PointerType{X: t}
		}
		return direct(t)
	}
	return name, wrap, nil
}

func (p *parser) parseDirectDeclarator() (string, typeWrap, error) {
	name := ""
	inner := identityWrap
	switch tok := p.peek(); {
	case tok.kind == tkPunct && tok.val == "(" && p.groupingParen():
		p.next()
		var err error
		name, inner, err = p.parseDeclarator()
		if err != nil {
			return "", nil, err
		}
		if err := p.expect(")"); err != nil {
			return "", nil, err
		}
	case tok.kind == tkIdent && !reservedWord(tok.val):
		name = tok.val
		p.next()
	}
	suffix, err := p.parseDeclaratorSuffix()
	if err != nil {
		return "", nil, err
	}
	return name, func(t ast.Type) ast.Type { return inner(suffix(t)) }, nil
}

// groupingParen reports whether a '(' at the current position opens a
// grouped declarator rather than a parameter list. A parameter list
// starts with ')', a specifier word or a typedef-name; a grouped
// declarator starts with '*', '(' or a plain identifier.
func (p *parser) groupingParen() bool {
	tok := p.toks[p.pos+1]
	switch tok.kind {
	case tkPunct:
		return tok.val == "*" || tok.val == "("
	case tkIdent:
		return !reservedWord(tok.val) && !p.typedefs[tok.val]
	}
	return false
}

func (p *parser) parseDeclaratorSuffix() (typeWrap, error) {
	type suffix struct {
		array  bool
		length ast.Expr     // arrays
		params []*ast.Field // functions
	}
	var sufs []suffix
	for {
		if p.accept("[") {
			var length ast.Expr
			if !p.accept("]") {
				var err error
				length, err = p.parseConstExpr()
				if err != nil {
					return nil, err
				}
				if err := p.expect("]"); err != nil {
					return nil, err
				}
			}
			sufs = append(sufs, suffix{array: true, length: length})
			continue
		}
		if p.accept("(") {
			params, err := p.parseParamList()
			if err != nil {
				return nil, err
			}
			sufs = append(sufs, suffix{params: params})
			continue
		}
		break
	}
	return func(t ast.Type) ast.Type {
		for i := len(sufs) - 1; i >= 0; i-- {
			if sufs[i].array {
				t = &ast.ArrayType{Elt: t, Len: sufs[i].length}
			} else {
				t = &ast.FuncType{Params: sufs[i].params, Ret: t}
			}
		}
		return t
	}, nil
}

func (p *parser) parseParamList() ([]*ast.Field, error) {
	params := []*ast.Field{}
	if p.accept(")") {
		return params, nil
	}
	for {
		base, isTypedef, err := p.parseDeclSpecifiers()
		if err != nil {
			return nil, err
		}
		if isTypedef {
			return nil, p.errf("typedef is not allowed in a parameter list")
		}
		name, wrap, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Field{
			Name: name,
			Type: wrap(&ast.TypeSpec{DeclName: name, Base: base}),
		})
		if p.accept(",") {
			continue
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return params, nil
	}
}

func (p *parser) parseConstExpr() (ast.Expr, error) {
	tok := p.peek()
	switch {
	case tok.kind == tkPunct && (tok.val == "-" || tok.val == "+" || tok.val == "~" || tok.val == "!"):
		p.next()
		x, err := p.parseConstExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: tok.val, X: x}, nil
	case tok.kind == tkPunct && tok.val == "(":
		p.next()
		x, err := p.parseConstExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return x, nil
	case tok.kind == tkNumber:
		p.next()
		return &ast.IntLit{Value: tok.val}, nil
	}
	return nil, p.errf("expected constant expression but got %s", tok)
}

func reservedWord(s string) bool {
	return s == "typedef" || s == "struct" || s == "union" || s == "enum" ||
		skipWords[s] || typeWords[s]
}

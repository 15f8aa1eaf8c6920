package ast

// Node is implemented by every syntax-tree node produced by the parse
// package.
type Node interface {
	aNode()
}

// =============================================================================
// Expressions

// Expr is a constant expression node: array lengths, bit-field widths
// and explicit enumerator values.
type Expr interface {
	Node
	exprNode()
}

// IntLit is an integer literal. Value keeps the source spelling
// (decimal, octal or hex, without any integer suffix).
type IntLit struct {
	Value string
}

// UnaryExpr is a prefix unary expression, e.g. -16.
type UnaryExpr struct {
	Op string // "-", "+", "~" or "!"
	X  Expr
}

func (*IntLit) exprNode()    {}
func (*UnaryExpr) exprNode() {}

func (*IntLit) aNode()    {}
func (*UnaryExpr) aNode() {}

// =============================================================================
// Types

// Type is a syntax-level type node. It describes how a type was
// spelled, not what it canonically is; resolving it to a canonical
// type is the compiler's job.
type Type interface {
	Node
	typeNode()
}

// TypeSpec wraps the declaration-specifier part of one declarator.
// DeclName is the identifier introduced by the declarator ("" for
// abstract declarators); it is only a naming hint for anonymous
// aggregates. Base is one of *Names, *RecordType or *EnumType and is
// shared between all declarators of a single declaration, so
//
//	typedef struct { int x; } foo_t, *foo_p;
//
// produces two TypeSpecs whose Base is the same *RecordType node.
type TypeSpec struct {
	DeclName string
	Base     Type
}

// Names is a primitive-specifier identifier list such as
// ["unsigned", "long"], or a single typedef-name reference.
type Names struct {
	List []string
}

// PointerType is a pointer declarator applied to X.
type PointerType struct {
	X Type
}

// ArrayType is an array declarator. Len is nil when no length
// expression is present ("int a[]").
type ArrayType struct {
	Elt Type
	Len Expr
}

// FuncType is a function declarator.
type FuncType struct {
	Params []*Field
	Ret    Type
}

// RecordKind distinguishes struct from union tags.
type RecordKind int

const (
	Struct RecordKind = iota
	Union
)

func (k RecordKind) String() string {
	if k == Union {
		return "union"
	}
	return "struct"
}

// RecordType is a struct or union specifier. Name is "" for anonymous
// tags. Fields is nil when the specifier carries no body, which is how
// forward declarations and repeated opaque mentions look.
type RecordType struct {
	Kind   RecordKind
	Name   string
	Fields []*Field
}

// EnumType is an enum specifier. Items is nil when the specifier
// carries no body.
type EnumType struct {
	Name  string
	Items []*EnumItem
}

// EnumItem is one enumerator; Value is nil unless spelled explicitly.
type EnumItem struct {
	Name  string
	Value Expr
}

// Field is a struct/union member or a function parameter. Bitsize is
// nil unless the member is a bit-field.
type Field struct {
	Name    string
	Type    Type
	Bitsize Expr
}

func (*TypeSpec) typeNode()    {}
func (*Names) typeNode()       {}
func (*PointerType) typeNode() {}
func (*ArrayType) typeNode()   {}
func (*FuncType) typeNode()    {}
func (*RecordType) typeNode()  {}
func (*EnumType) typeNode()    {}

func (*TypeSpec) aNode()    {}
func (*Names) aNode()       {}
func (*PointerType) aNode() {}
func (*ArrayType) aNode()   {}
func (*FuncType) aNode()    {}
func (*RecordType) aNode()  {}
func (*EnumType) aNode()    {}
func (*EnumItem) aNode()    {}
func (*Field) aNode()       {}

// =============================================================================
// Declarations

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// VarDecl is a plain (non-typedef) declaration. Name is "" for
// declarations that only introduce a tag, e.g. "struct Point;".
type VarDecl struct {
	Name string
	Type Type
}

// TypedefDecl is one name introduced by a typedef declaration.
type TypedefDecl struct {
	Name string
	Type Type
}

func (*VarDecl) declNode()     {}
func (*TypedefDecl) declNode() {}

func (*VarDecl) aNode()     {}
func (*TypedefDecl) aNode() {}

// File is the parse result of one declaration fragment.
type File struct {
	Decls []Decl
}

func (*File) aNode() {}

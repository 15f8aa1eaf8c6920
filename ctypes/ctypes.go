package ctypes

import (
	"strconv"
	"strings"
)

// Type is a canonical type-graph node. Nodes are deduplicated by the
// compiler: mentioning the same aggregate tag twice yields the same
// *Record, so consumers may compare aggregates by pointer identity.
type Type interface {
	String() string
	typeNode()
}

// VoidType is the type of "void". Use the Void singleton.
type VoidType struct{}

// Void is the unique void type.
var Void Type = &VoidType{}

func (*VoidType) String() string { return "void" }

// Primitive is a builtin arithmetic type under its canonical name,
// e.g. "unsigned char", "long long". Synonym spellings are normalized
// before a Primitive is created, so equal spellings compare equal.
type Primitive struct {
	Name string
}

func (t *Primitive) String() string { return t.Name }

// Pointer points to To. Note that a pointer to a function collapses to
// the Func itself and never appears as Pointer{To: *Func}.
type Pointer struct {
	To Type
}

func (t *Pointer) String() string { return t.To.String() + " *" }

// Array has Len == -1 when the length is unspecified ("int[]").
type Array struct {
	Elt Type
	Len int64
}

func (t *Array) String() string {
	if t.Len < 0 {
		return t.Elt.String() + "[]"
	}
	return t.Elt.String() + "[" + strconv.FormatInt(t.Len, 10) + "]"
}

// Func is a function type. A zero-parameter function has an empty
// Params list; the C spelling "f(void)" is normalized away.
type Func struct {
	Params   []Type
	Ret      Type
	Variadic bool
}

func (t *Func) String() string {
	var sb strings.Builder
	sb.WriteString(t.Ret.String())
	sb.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	if t.Variadic {
		if len(t.Params) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	}
	sb.WriteByte(')')
	return sb.String()
}

// RecordKind distinguishes structs from unions.
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

// Record is a struct or union type. Name is the tag, or a synthetic
// "$N" / "$typedefname" spelling for anonymous aggregates. Fields stay
// nil and Complete false until a defining mention supplies the field
// list; an incomplete Record is a valid pointer target but useless for
// layout.
type Record struct {
	Kind     RecordKind
	Name     string
	Fields   []Field
	Complete bool
}

func (t *Record) String() string { return t.Kind.String() + " " + t.Name }

// Field has Bitsize == -1 when the member is not a bit-field.
type Field struct {
	Name    string
	Type    Type
	Bitsize int64
}

// Enum carries its enumerators and their values as parallel lists.
// An opaque enum has both lists empty.
type Enum struct {
	Name        string
	Enumerators []string
	Values      []int64
}

func (t *Enum) String() string {
	if t.Name == "" {
		return "enum"
	}
	return "enum " + t.Name
}

func (*VoidType) typeNode()  {}
func (*Primitive) typeNode() {}
func (*Pointer) typeNode()   {}
func (*Array) typeNode()     {}
func (*Func) typeNode()      {}
func (*Record) typeNode()    {}
func (*Enum) typeNode()      {}

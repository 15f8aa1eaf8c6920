package cdecl

import (
	"sort"
	"strings"

	"github.com/goplus/cdecl/ast"
	"github.com/goplus/cdecl/ctypes"
	"github.com/goplus/cdecl/parse"
)

// Compiler turns fragments of C declaration text into a canonical,
// deduplicated type graph. Declarations accumulate across calls, so a
// typedef declared in one Declare call resolves in a later one.
//
// A Compiler is not safe for concurrent use: the declaration table,
// the aggregate identity cache and the anonymous-name counter mutate
// in place during resolution. Independent Compiler instances are
// fully isolated from one another.
type Compiler struct {
	decls *declTable
	// records is the aggregate identity cache, keyed on specifier
	// nodes of the fragment being processed. It is cleared when the
	// call ends so syntax trees are not pinned past their fragment.
	records map[*ast.RecordType]*ctypes.Record
	// completed stages the field-list completions of the current call
	// so a failed call can revert them.
	completed   []*ctypes.Record
	anonCounter int
}

func NewCompiler() *Compiler {
	return &Compiler{
		decls:   newDeclTable(),
		records: make(map[*ast.RecordType]*ctypes.Record),
	}
}

// Declare parses one fragment of C declarations and registers
// everything it finds. On error no new qualified names become visible
// and no aggregate completed during the call stays complete.
func (c *Compiler) Declare(src string) error {
	file, err := parse.Parse(c.preprocess(src))
	if err != nil {
		return &UnsupportedConstructError{Msg: "cannot parse declarations", Err: err}
	}
	if err := c.registerDecls(file); err != nil {
		c.rollback()
		return err
	}
	c.commit()
	return nil
}

// ResolveType parses a single bare type expression such as "int[10]"
// or "struct point *" and returns its canonical type. Tag mentions may
// register under their "struct "/"union "/"enum " names, but nothing
// is registered under a "variable " or "function " name.
func (c *Compiler) ResolveType(expr string) (ctypes.Type, error) {
	return c.resolveTypeExpr(expr, false)
}

// ResolveTypePtr is ResolveType with the force-pointer modifier: a
// non-array result is wrapped in a pointer, so the caller can take the
// named type by reference.
func (c *Compiler) ResolveTypePtr(expr string) (ctypes.Type, error) {
	return c.resolveTypeExpr(expr, true)
}

func (c *Compiler) resolveTypeExpr(expr string, forcePtr bool) (ctypes.Type, error) {
	// wrap the expression as the sole parameter of a synthetic
	// function declaration and pull out the resolved parameter type
	file, err := parse.Parse(c.preprocess("void __dummy(" + expr + ");"))
	if err != nil {
		return nil, &UnsupportedConstructError{Msg: "cannot parse type expression", Err: err}
	}
	if len(file.Decls) == 0 {
		return nil, &UnsupportedConstructError{Msg: "empty type expression"}
	}
	decl, ok := file.Decls[len(file.Decls)-1].(*ast.VarDecl)
	if !ok {
		return nil, &UnsupportedConstructError{Msg: "invalid type expression"}
	}
	fn, ok := decl.Type.(*ast.FuncType)
	if !ok || len(fn.Params) != 1 {
		return nil, &UnsupportedConstructError{Msg: "invalid type expression"}
	}
	typ, err := c.resolveType(fn.Params[0].Type, resolveOpts{forcePointer: forcePtr})
	if err != nil {
		c.rollback()
		return nil, err
	}
	c.commit()
	return typ, nil
}

func (c *Compiler) commit() {
	c.decls.commit()
	c.completed = c.completed[:0]
	clear(c.records)
}

// rollback reverts everything the failing call staged: pending names
// and the field lists it filled in, including those of records
// registered by earlier successful calls.
func (c *Compiler) rollback() {
	c.decls.rollback()
	for _, rec := range c.completed {
		rec.Fields = nil
		rec.Complete = false
	}
	c.completed = c.completed[:0]
	clear(c.records)
}

// Lookup queries the declaration table by qualified name, e.g.
// "typedef size_t", "function printf", "variable x", "struct point".
func (c *Compiler) Lookup(qualified string) (ctypes.Type, bool) {
	return c.decls.lookupCommitted(qualified)
}

// Names returns every registered qualified name, sorted.
func (c *Compiler) Names() []string {
	names := make([]string, 0, len(c.decls.decls))
	for name := range c.decls.decls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================

// declTable is the declaration table: qualified name -> canonical
// type, with insert-once semantics. New names go into a pending
// overlay that becomes visible only when the owning call commits, so
// a failed Declare publishes nothing.
type declTable struct {
	decls   map[string]ctypes.Type
	pending map[string]ctypes.Type
}

func newDeclTable() *declTable {
	return &declTable{
		decls:   make(map[string]ctypes.Type),
		pending: make(map[string]ctypes.Type),
	}
}

func (t *declTable) lookup(name string) (ctypes.Type, bool) {
	if tp, ok := t.pending[name]; ok {
		return tp, true
	}
	tp, ok := t.decls[name]
	return tp, ok
}

func (t *declTable) lookupCommitted(name string) (ctypes.Type, bool) {
	tp, ok := t.decls[name]
	return tp, ok
}

func (t *declTable) declare(name string, tp ctypes.Type) error {
	if _, ok := t.lookup(name); ok {
		return &DuplicateDeclError{Name: name}
	}
	t.pending[name] = tp
	return nil
}

func (t *declTable) commit() {
	for name, tp := range t.pending {
		t.decls[name] = tp
	}
	clear(t.pending)
}

func (t *declTable) rollback() {
	clear(t.pending)
}

// typedefNames returns the committed typedef names, sorted, for the
// preprocessor to re-declare.
func (t *declTable) typedefNames() []string {
	var names []string
	for name := range t.decls {
		if rest, ok := strings.CutPrefix(name, "typedef "); ok {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names
}

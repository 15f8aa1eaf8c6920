package cdecl

import (
	"strconv"
	"strings"

	"github.com/goplus/cdecl/ast"
	"github.com/goplus/cdecl/ctypes"
)

type resolveOpts struct {
	// convertArrayToPointer decays a resolved array to a pointer to
	// its element, for function-parameter positions.
	convertArrayToPointer bool
	// forcePointer wraps a non-array result in a pointer, for bare
	// type expressions the caller wants to take by reference.
	forcePointer bool
}

// resolveType maps one syntax-tree type node to a canonical type,
// recursing into nested type positions.
func (c *Compiler) resolveType(node ast.Type, opts resolveOpts) (ctypes.Type, error) {
	// typedef transparency: a bare single-identifier reference to a
	// registered typedef substitutes the already-resolved type
	if spec, ok := node.(*ast.TypeSpec); ok {
		if names, ok := spec.Base.(*ast.Names); ok && len(names.List) == 1 {
			if tp, ok := c.decls.lookup("typedef " + names.List[0]); ok {
				if arr, isArray := tp.(*ctypes.Array); isArray {
					if opts.convertArrayToPointer {
						return &ctypes.Pointer{To: arr.Elt}, nil
					}
				} else if opts.forcePointer {
					return pointerTo(tp), nil
				}
				return tp, nil
			}
		}
	}

	if arr, ok := node.(*ast.ArrayType); ok {
		if opts.convertArrayToPointer {
			elt, err := c.resolveType(arr.Elt, resolveOpts{})
			if err != nil {
				return nil, err
			}
			return pointerTo(elt), nil
		}
		length := int64(-1)
		if arr.Len != nil {
			n, err := c.evalConst(arr.Len)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, &UnsupportedTypeError{Msg: "negative array length"}
			}
			length = n
		}
		elt, err := c.resolveType(arr.Elt, resolveOpts{})
		if err != nil {
			return nil, err
		}
		return &ctypes.Array{Elt: elt, Len: length}, nil
	}

	if opts.forcePointer {
		tp, err := c.resolveType(node, resolveOpts{})
		if err != nil {
			return nil, err
		}
		return &ctypes.Pointer{To: tp}, nil
	}

	if ptr, ok := node.(*ast.PointerType); ok {
		tp, err := c.resolveType(ptr.X, resolveOpts{})
		if err != nil {
			return nil, err
		}
		return pointerTo(tp), nil
	}

	if spec, ok := node.(*ast.TypeSpec); ok {
		switch base := spec.Base.(type) {
		case *ast.Names:
			return resolveNames(base)
		case *ast.RecordType:
			return c.recordType(base, spec)
		case *ast.EnumType:
			return c.enumType(base)
		}
	}

	if fn, ok := node.(*ast.FuncType); ok {
		return c.resolveFuncType(fn)
	}

	return nil, &UnsupportedTypeError{Msg: "bad or unsupported type declaration"}
}

// pointerTo wraps tp in a pointer, except that a pointer to a function
// is the function type itself.
func pointerTo(tp ctypes.Type) ctypes.Type {
	if _, ok := tp.(*ctypes.Func); ok {
		return tp
	}
	return &ctypes.Pointer{To: tp}
}

// resolveNames normalizes a primitive specifier list to its canonical
// spelling: a lone "signed"/"unsigned" gains "int", a leading "signed"
// drops except in "signed char", and a redundant trailing "int" drops
// except in "unsigned int".
func resolveNames(names *ast.Names) (ctypes.Type, error) {
	list := names.List
	if len(list) == 1 && list[0] == dotdotdot {
		return nil, &UnsupportedTypeError{Msg: "'...' is not a type"}
	}
	words := make([]string, len(list))
	copy(words, list)
	if len(words) == 1 && (words[0] == "signed" || words[0] == "unsigned") {
		words = append(words, "int")
	}
	if words[0] == "signed" && !(len(words) == 2 && words[1] == "char") {
		words = words[1:]
	}
	if len(words) > 1 && words[len(words)-1] == "int" &&
		!(len(words) == 2 && words[0] == "unsigned") {
		words = words[:len(words)-1]
	}
	ident := strings.Join(words, " ")
	if ident == "void" {
		return ctypes.Void, nil
	}
	return &ctypes.Primitive{Name: ident}, nil
}

// resolveFuncType resolves a function declarator: a trailing sentinel
// parameter marks the function variadic, a single "void" parameter
// marks it parameter-less, and remaining parameters resolve with
// array-to-pointer decay.
func (c *Compiler) resolveFuncType(fn *ast.FuncType) (ctypes.Type, error) {
	params := fn.Params
	variadic := false
	if n := len(params); n > 0 && isSentinel(params[n-1].Type) {
		params = params[:n-1]
		variadic = true
	}
	if len(params) == 1 && isPlainVoid(params[0].Type) {
		params = nil
	}
	args := make([]ctypes.Type, 0, len(params))
	for _, param := range params {
		tp, err := c.resolveType(param.Type, resolveOpts{convertArrayToPointer: true})
		if err != nil {
			return nil, err
		}
		args = append(args, tp)
	}
	ret, err := c.resolveType(fn.Ret, resolveOpts{})
	if err != nil {
		return nil, err
	}
	return &ctypes.Func{Params: args, Ret: ret, Variadic: variadic}, nil
}

func isSentinel(node ast.Type) bool {
	return isBareName(node, dotdotdot)
}

func isPlainVoid(node ast.Type) bool {
	return isBareName(node, "void")
}

func isBareName(node ast.Type, name string) bool {
	spec, ok := node.(*ast.TypeSpec)
	if !ok {
		return false
	}
	names, ok := spec.Base.(*ast.Names)
	return ok && len(names.List) == 1 && names.List[0] == name
}

// recordType resolves a struct/union specifier through the aggregate
// identity cache, guaranteeing one canonical Record per tag and per
// syntactically shared anonymous specifier.
//
// The cache is keyed on the specifier node itself because the front
// end hands out a DAG, not a tree: the declarators of
// "typedef struct { ... } foo_t, *foo_p;" share one specifier node,
// and without node-identity caching they would allocate two distinct
// records for one aggregate.
func (c *Compiler) recordType(node *ast.RecordType, spec *ast.TypeSpec) (ctypes.Type, error) {
	if tp, ok := c.records[node]; ok {
		// possibly still incomplete; returning it as-is is what lets
		// self-referential field lists terminate
		return tp, nil
	}
	kind := ctypes.Struct
	if node.Kind == ast.Union {
		kind = ctypes.Union
	}
	var tp *ctypes.Record
	if node.Name == "" {
		// anonymous: named after the enclosing declarator when there
		// is one, else after the ever-increasing counter; never
		// registered in the declaration table
		name := ""
		if spec != nil && spec.DeclName != "" {
			name = "$" + spec.DeclName
		} else {
			c.anonCounter++
			name = "$" + strconv.Itoa(c.anonCounter)
		}
		tp = &ctypes.Record{Kind: kind, Name: name}
	} else {
		key := node.Kind.String() + " " + node.Name
		if existing, ok := c.decls.lookup(key); ok {
			tp = existing.(*ctypes.Record)
		} else {
			tp = &ctypes.Record{Kind: kind, Name: node.Name}
			if err := c.decls.declare(key, tp); err != nil {
				return nil, err
			}
		}
	}
	// cache before touching the field list so that fields referring
	// back to this aggregate resolve to the same record
	c.records[node] = tp

	if node.Fields == nil {
		return tp, nil
	}
	if tp.Complete {
		return nil, &DuplicateFieldListError{Name: tp.Kind.String() + " " + tp.Name}
	}
	fields := make([]ctypes.Field, 0, len(node.Fields))
	for _, field := range node.Fields {
		if isSentinel(field.Type) {
			// elided tail marker, not a real member
			continue
		}
		bitsize := int64(-1)
		if field.Bitsize != nil {
			n, err := c.evalConst(field.Bitsize)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, &UnsupportedTypeError{Msg: "negative bit-field width"}
			}
			bitsize = n
		}
		ft, err := c.resolveType(field.Type, resolveOpts{})
		if err != nil {
			return nil, err
		}
		fields = append(fields, ctypes.Field{Name: field.Name, Type: ft, Bitsize: bitsize})
	}
	tp.Fields = fields
	tp.Complete = true
	c.completed = append(c.completed, tp)
	return tp, nil
}

// enumType resolves an enum specifier. A registered tag wins and is
// returned unchanged; otherwise enumerator values follow C's default
// increment rule: a running counter from 0, reset by explicit values.
// Opaque enums are not cached by tag; each opaque mention yields a
// fresh empty enum.
func (c *Compiler) enumType(node *ast.EnumType) (ctypes.Type, error) {
	if node.Name != "" {
		if tp, ok := c.decls.lookup("enum " + node.Name); ok {
			return tp, nil
		}
	}
	if node.Items == nil {
		return &ctypes.Enum{Name: node.Name}, nil
	}
	enumerators := make([]string, 0, len(node.Items))
	values := make([]int64, 0, len(node.Items))
	next := int64(0)
	for _, item := range node.Items {
		if item.Value != nil {
			n, err := c.evalConst(item.Value)
			if err != nil {
				return nil, err
			}
			next = n
		}
		enumerators = append(enumerators, item.Name)
		values = append(values, next)
		next++
	}
	tp := &ctypes.Enum{Name: node.Name, Enumerators: enumerators, Values: values}
	if node.Name != "" {
		if err := c.decls.declare("enum "+node.Name, tp); err != nil {
			return nil, err
		}
	}
	return tp, nil
}

// evalConst evaluates the restricted constant-expression subset used
// for array lengths, bit-field widths and enumerator values: an
// integer literal or the unary negation of one.
func (c *Compiler) evalConst(expr ast.Expr) (int64, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		n, err := strconv.ParseInt(e.Value, 0, 64)
		if err != nil {
			return 0, &NonConstExprError{}
		}
		return n, nil
	case *ast.UnaryExpr:
		if e.Op == "-" {
			n, err := c.evalConst(e.X)
			if err != nil {
				return 0, err
			}
			return -n, nil
		}
	}
	return 0, &NonConstExprError{}
}

package cdecl

import (
	"github.com/goplus/cdecl/ast"
)

// registerDecls walks the top-level declarations of one parsed
// fragment, skipping everything up to and including the sentinel
// typedef the preprocessor injected, and registers the rest.
func (c *Compiler) registerDecls(file *ast.File) error {
	decls := file.Decls
	i := 0
	for ; i < len(decls); i++ {
		if td, ok := decls[i].(*ast.TypedefDecl); ok && td.Name == dotdotdot {
			i++
			break
		}
	}
	for ; i < len(decls); i++ {
		switch decl := decls[i].(type) {
		case *ast.VarDecl:
			if err := c.registerVarDecl(decl); err != nil {
				return err
			}
		case *ast.TypedefDecl:
			if decl.Name == "" {
				return &UnnamedDeclError{Msg: "typedef does not declare any name"}
			}
			tp, err := c.resolveType(decl.Type, resolveOpts{})
			if err != nil {
				return err
			}
			if err := c.decls.declare("typedef "+decl.Name, tp); err != nil {
				return err
			}
		default:
			return &UnsupportedConstructError{Msg: "unrecognized construct"}
		}
	}
	return nil
}

func (c *Compiler) registerVarDecl(decl *ast.VarDecl) error {
	node := decl.Type
	if fn, ok := node.(*ast.FuncType); ok {
		if decl.Name == "" {
			return &UnnamedDeclError{Msg: "construct does not declare any variable"}
		}
		tp, err := c.resolveFuncType(fn)
		if err != nil {
			return err
		}
		return c.decls.declare("function "+decl.Name, tp)
	}
	if decl.Name != "" {
		tp, err := c.resolveType(node, resolveOpts{})
		if err != nil {
			return err
		}
		return c.decls.declare("variable "+decl.Name, tp)
	}
	// no variable introduced: the declaration must at least carry a
	// tag; a defining mention still registers the tag and populates
	// the identity cache as a side effect
	if spec, ok := node.(*ast.TypeSpec); ok {
		switch base := spec.Base.(type) {
		case *ast.RecordType:
			if base.Fields != nil {
				_, err := c.recordType(base, nil)
				return err
			}
			if base.Name != "" {
				return nil
			}
		case *ast.EnumType:
			if base.Items != nil {
				_, err := c.enumType(base)
				return err
			}
			if base.Name != "" {
				return nil
			}
		}
	}
	return &UnnamedDeclError{Msg: "construct does not declare any variable"}
}

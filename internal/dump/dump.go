// Package dump renders canonical types as JSON-friendly values for
// tool output. Aggregates already rendered in the same call appear as
// tag references, so self-referential graphs stay finite.
package dump

import (
	"github.com/goplus/cdecl/ctypes"
)

// Type renders one type tree.
func Type(tp ctypes.Type) interface{} {
	d := &dumper{seen: make(map[*ctypes.Record]bool)}
	return d.typ(tp)
}

// Table renders a qualified-name -> type mapping, sharing one
// reference scope so each aggregate's fields render once.
func Table(names []string, lookup func(string) (ctypes.Type, bool)) map[string]interface{} {
	d := &dumper{seen: make(map[*ctypes.Record]bool)}
	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		if tp, ok := lookup(name); ok {
			out[name] = d.typ(tp)
		}
	}
	return out
}

type dumper struct {
	seen map[*ctypes.Record]bool
}

func (d *dumper) typ(tp ctypes.Type) interface{} {
	switch t := tp.(type) {
	case *ctypes.VoidType:
		return obj{"kind": "void"}
	case *ctypes.Primitive:
		return obj{"kind": "primitive", "name": t.Name}
	case *ctypes.Pointer:
		return obj{"kind": "pointer", "to": d.typ(t.To)}
	case *ctypes.Array:
		o := obj{"kind": "array", "elt": d.typ(t.Elt)}
		if t.Len >= 0 {
			o["len"] = t.Len
		}
		return o
	case *ctypes.Func:
		params := make([]interface{}, 0, len(t.Params))
		for _, p := range t.Params {
			params = append(params, d.typ(p))
		}
		return obj{
			"kind":     "func",
			"params":   params,
			"ret":      d.typ(t.Ret),
			"variadic": t.Variadic,
		}
	case *ctypes.Record:
		o := obj{"kind": t.Kind.String(), "tag": t.Name}
		if d.seen[t] {
			o["ref"] = true
			return o
		}
		d.seen[t] = true
		if !t.Complete {
			o["incomplete"] = true
			return o
		}
		fields := make([]interface{}, 0, len(t.Fields))
		for _, f := range t.Fields {
			fo := obj{"name": f.Name, "type": d.typ(f.Type)}
			if f.Bitsize >= 0 {
				fo["bitsize"] = f.Bitsize
			}
			fields = append(fields, fo)
		}
		o["fields"] = fields
		return o
	case *ctypes.Enum:
		return obj{
			"kind":        "enum",
			"tag":         t.Name,
			"enumerators": t.Enumerators,
			"values":      t.Values,
		}
	}
	return obj{"kind": "unknown"}
}

type obj = map[string]interface{}
